package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkuznec/food-order-service/internal/model"
	"github.com/mkuznec/food-order-service/internal/pricing"
	"github.com/mkuznec/food-order-service/internal/repository/cache"
	"github.com/mkuznec/food-order-service/internal/repository/postgres"
)

// fakeStore — in-memory замена PostgreSQL для тестов сервисного слоя
// реализует Store и CatalogStore; чтения считаются, чтобы проверять,
// сколько раз сервис реально сходил в хранилище
type fakeStore struct {
	mu          sync.Mutex
	customers   map[uuid.UUID]model.Customer
	restaurants map[uuid.UUID]model.Restaurant
	products    map[uuid.UUID]model.Product
	orders      map[uuid.UUID]model.Order

	customerReads   atomic.Int64
	restaurantReads atomic.Int64
	productReads    atomic.Int64

	// readDelay замедляет чтения, чтобы тест успел создать конкуренцию
	readDelay time.Duration
	// saveOrderErr подставляет одну транзиентную ошибку записи заказа
	saveOrderErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers:   make(map[uuid.UUID]model.Customer),
		restaurants: make(map[uuid.UUID]model.Restaurant),
		products:    make(map[uuid.UUID]model.Product),
		orders:      make(map[uuid.UUID]model.Order),
	}
}

func (f *fakeStore) FindCustomer(_ context.Context, id uuid.UUID) (model.Customer, error) {
	f.customerReads.Add(1)
	time.Sleep(f.readDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return model.Customer{}, postgres.ErrCustomerNotFound
	}
	return c, nil
}

func (f *fakeStore) FindRestaurant(_ context.Context, id uuid.UUID) (model.Restaurant, error) {
	f.restaurantReads.Add(1)
	time.Sleep(f.readDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok {
		return model.Restaurant{}, postgres.ErrRestaurantNotFound
	}
	return r, nil
}

func (f *fakeStore) FindProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	f.productReads.Add(1)
	time.Sleep(f.readDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return model.Product{}, postgres.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeStore) FindOrder(_ context.Context, id uuid.UUID) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return model.Order{}, postgres.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeStore) SaveOrder(_ context.Context, order model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveOrderErr != nil {
		err := f.saveOrderErr
		f.saveOrderErr = nil
		return err
	}
	if _, ok := f.orders[order.ID]; ok {
		return postgres.ErrOrderExists
	}
	f.orders[order.ID] = order
	return nil
}

// UpdateOrderStatus повторяет compare-and-set настоящего репозитория:
// условная запись под блокировкой, false при несовпадении статуса
func (f *fakeStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, expected, next model.Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	o.Status = next
	f.orders[id] = o
	return true, nil
}

func (f *fakeStore) SaveCustomer(_ context.Context, customer model.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeStore) SetCustomerActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return postgres.ErrCustomerNotFound
	}
	c.Active = active
	f.customers[id] = c
	return nil
}

func (f *fakeStore) SaveRestaurant(_ context.Context, restaurant model.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restaurants[restaurant.ID] = restaurant
	return nil
}

func (f *fakeStore) SetRestaurantActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok {
		return postgres.ErrRestaurantNotFound
	}
	r.Active = active
	f.restaurants[id] = r
	return nil
}

func (f *fakeStore) SaveProduct(_ context.Context, product model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) SetProductAvailable(_ context.Context, id uuid.UUID, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return postgres.ErrProductNotFound
	}
	p.Available = available
	f.products[id] = p
	return nil
}

func (f *fakeStore) SetProductPrice(_ context.Context, id uuid.UUID, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return postgres.ErrProductNotFound
	}
	p.Price = price
	f.products[id] = p
	return nil
}

func (f *fakeStore) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// spyMetrics считает вызовы, чтобы проверять контракт наблюдаемости
type spyMetrics struct {
	transitions atomic.Int64
	creates     atomic.Int64
}

func (m *spyMetrics) IncStatusTransition(_, _ model.Status) { m.transitions.Add(1) }
func (m *spyMetrics) ObserveCreateOrder(_ time.Duration)    { m.creates.Add(1) }

// brokenCache всегда возвращает ошибку: сбой кэша не должен влиять на ответ
type brokenCache struct{}

var errCacheDown = context.DeadlineExceeded

func (brokenCache) Get(context.Context, cache.Namespace, string) (any, bool, error) {
	return nil, false, errCacheDown
}
func (brokenCache) Set(context.Context, cache.Namespace, string, any) error { return errCacheDown }
func (brokenCache) Evict(context.Context, cache.Namespace, string) error    { return errCacheDown }

type testEnv struct {
	store   *fakeStore
	lookup  *Lookup
	orders  *OrderService
	catalog *CatalogService
	metrics *spyMetrics
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLookupConfig() LookupConfig {
	return LookupConfig{
		CacheOpTimeout: 100 * time.Millisecond,
		CustomerTTL:    time.Minute,
		RestaurantTTL:  time.Minute,
		ProductTTL:     time.Minute,
	}
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	log := discardLogger()
	lookup := NewLookup(store, cache.NewMemory(cache.DefaultCodec()), testLookupConfig(), log)
	metrics := &spyMetrics{}
	return &testEnv{
		store:   store,
		lookup:  lookup,
		orders:  NewOrderService(store, lookup, pricing.New(), metrics, log),
		catalog: NewCatalogService(store, lookup, log),
		metrics: metrics,
	}
}

func (e *testEnv) seedCustomer(active bool) model.Customer {
	c := model.Customer{ID: uuid.New(), Name: "Ivan", Email: "ivan@example.com", Phone: "+70000000000", Active: active}
	e.store.customers[c.ID] = c
	return c
}

func (e *testEnv) seedRestaurant(fee string, active bool) model.Restaurant {
	r := model.Restaurant{ID: uuid.New(), Name: "Pizza Place", Category: "pizza", DeliveryFee: decimal.RequireFromString(fee), Active: active}
	e.store.restaurants[r.ID] = r
	return r
}

func (e *testEnv) seedProduct(restaurantID uuid.UUID, price string, available bool) model.Product {
	p := model.Product{ID: uuid.New(), RestaurantID: restaurantID, Name: "Margherita", Price: decimal.RequireFromString(price), Available: available}
	e.store.products[p.ID] = p
	return p
}

func (e *testEnv) seedOrder(status model.Status) model.Order {
	o := model.Order{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		RestaurantID:    uuid.New(),
		Status:          status,
		Subtotal:        decimal.RequireFromString("40.00"),
		DeliveryFee:     decimal.RequireFromString("5.00"),
		Total:           decimal.RequireFromString("45.00"),
		DeliveryAddress: "Mira street 15",
		CreatedAt:       time.Now().UTC(),
	}
	e.store.orders[o.ID] = o
	return o
}
