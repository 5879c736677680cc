package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order представляет заказ целиком, включая позиции
// после создания заказ меняется только переходами статуса,
// состав позиций после создания неизменен
type Order struct {
	ID              uuid.UUID       `json:"order_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	RestaurantID    uuid.UUID       `json:"restaurant_id"`
	Items           []OrderItem     `json:"items"`
	Status          Status          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem — одна позиция заказа
// UnitPrice фиксируется в момент создания заказа: последующие изменения
// цены в каталоге не влияют на уже созданные заказы
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
