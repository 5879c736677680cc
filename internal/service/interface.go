package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkuznec/food-order-service/internal/model"
	"github.com/mkuznec/food-order-service/internal/repository/cache"
)

// Store определяет контракт хранилища для рабочего цикла заказов
// все чтения и записи здесь транзакционно согласованы
type Store interface {
	FindCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	FindRestaurant(ctx context.Context, id uuid.UUID) (model.Restaurant, error)
	FindProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	FindOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	SaveOrder(ctx context.Context, order model.Order) error
	// UpdateOrderStatus — условная запись: false означает проигранную гонку
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, expected, next model.Status) (bool, error)
}

// CatalogStore определяет контракт хранилища для операций над каталогом
type CatalogStore interface {
	SaveCustomer(ctx context.Context, customer model.Customer) error
	SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error
	SaveRestaurant(ctx context.Context, restaurant model.Restaurant) error
	SetRestaurantActive(ctx context.Context, id uuid.UUID, active bool) error
	SaveProduct(ctx context.Context, product model.Product) error
	SetProductAvailable(ctx context.Context, id uuid.UUID, available bool) error
	SetProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
}

// Cache определяет контракт key/value кэша с TTL на пространство имён
// кэш — оптимизация, а не зависимость: его ошибки сервис поглощает
type Cache interface {
	Get(ctx context.Context, ns cache.Namespace, key string) (any, bool, error)
	Set(ctx context.Context, ns cache.Namespace, key string, value any) error
	Evict(ctx context.Context, ns cache.Namespace, key string) error
}
