package model

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest — входящий запрос на создание заказа
// теги validate проверяют форму данных на границе сервиса,
// бизнес-правила (активность клиента, принадлежность товара и т.п.)
// проверяются уже в сервисном слое
type CreateOrderRequest struct {
	// OrderUID задаёт клиентский идентификатор заказа
	// поле опционально и нужно для идемпотентных повторов:
	// повтор с тем же UID не создаст второй заказ
	OrderUID        string            `json:"order_uid" validate:"omitempty,uuid"`
	CustomerID      string            `json:"customer_id" validate:"required,uuid"`
	RestaurantID    string            `json:"restaurant_id" validate:"required,uuid"`
	DeliveryAddress string            `json:"delivery_address" validate:"required"`
	Notes           string            `json:"notes"`
	Items           []CreateOrderItem `json:"items" validate:"required,gt=0,dive"`
}

// CreateOrderItem — одна запрошенная позиция
type CreateOrderItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// ChangeStatusRequest — запрос на перевод заказа в новый статус
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateCustomerRequest — запрос на регистрацию клиента
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// CreateRestaurantRequest — запрос на регистрацию ресторана
type CreateRestaurantRequest struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
}

// CreateProductRequest — запрос на добавление товара в каталог ресторана
type CreateProductRequest struct {
	RestaurantID string          `json:"restaurant_id" validate:"required,uuid"`
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"required"`
}

var validate = validator.New()

// Validate проверяет корректность запроса на основе тегов validate
func (r *CreateOrderRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CreateCustomerRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CreateRestaurantRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CreateProductRequest) Validate() error {
	return validate.Struct(r)
}
