package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer — клиент сервиса доставки
// заказы ссылаются на клиента по ID, сам клиент заказами не владеет
type Customer struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	Active bool      `json:"active"`
}

// Restaurant — ресторан с каталогом товаров
// товары принадлежат ресторану по внешнему ключу, а не по вложенности:
// удаление ресторана не каскадирует на товары
type Restaurant struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Active      bool            `json:"active"`
}

// Product — позиция каталога ресторана
// цена хранится как decimal, чтобы денежные расчёты были точными
type Product struct {
	ID           uuid.UUID       `json:"id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
}
