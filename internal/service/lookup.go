package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mkuznec/food-order-service/internal/model"
	"github.com/mkuznec/food-order-service/internal/repository/cache"
)

// LookupConfig — TTL по видам сущностей и лимит времени на операцию кэша
type LookupConfig struct {
	CacheOpTimeout time.Duration
	CustomerTTL    time.Duration
	RestaurantTTL  time.Duration
	ProductTTL     time.Duration
}

// Lookup оборачивает чтения из хранилища read-through кэшированием
// горячие данные каталога при повторном доступе отдаются из кэша;
// сбой кэша никогда не валит запрос — просто идём в хранилище напрямую
type Lookup struct {
	store        Store
	cache        Cache
	log          *slog.Logger
	group        singleflight.Group
	cacheTimeout time.Duration

	customers   cache.Namespace
	restaurants cache.Namespace
	products    cache.Namespace
}

// NewLookup создаёт новый слой кэшированных чтений
func NewLookup(store Store, c Cache, cfg LookupConfig, log *slog.Logger) *Lookup {
	return &Lookup{
		store:        store,
		cache:        c,
		log:          log,
		cacheTimeout: cfg.CacheOpTimeout,
		customers:    cache.Namespace{Name: "customer", TTL: cfg.CustomerTTL},
		restaurants:  cache.Namespace{Name: "restaurant", TTL: cfg.RestaurantTTL},
		products:     cache.Namespace{Name: "product", TTL: cfg.ProductTTL},
	}
}

// Customer возвращает клиента по ID, сначала проверяя кэш
func (l *Lookup) Customer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	return lookupOne(ctx, l, l.customers, id, func(ctx context.Context) (model.Customer, error) {
		return l.store.FindCustomer(ctx, id)
	})
}

// Restaurant возвращает ресторан по ID, сначала проверяя кэш
func (l *Lookup) Restaurant(ctx context.Context, id uuid.UUID) (model.Restaurant, error) {
	return lookupOne(ctx, l, l.restaurants, id, func(ctx context.Context) (model.Restaurant, error) {
		return l.store.FindRestaurant(ctx, id)
	})
}

// Product возвращает товар по ID, сначала проверяя кэш
func (l *Lookup) Product(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return lookupOne(ctx, l, l.products, id, func(ctx context.Context) (model.Product, error) {
		return l.store.FindProduct(ctx, id)
	})
}

// InvalidateCustomer удаляет клиента из кэша; вызывается после каждой записи
func (l *Lookup) InvalidateCustomer(ctx context.Context, id uuid.UUID) {
	l.cacheEvict(ctx, l.customers, id.String())
}

// InvalidateRestaurant удаляет ресторан из кэша
func (l *Lookup) InvalidateRestaurant(ctx context.Context, id uuid.UUID) {
	l.cacheEvict(ctx, l.restaurants, id.String())
}

// InvalidateProduct удаляет товар из кэша
func (l *Lookup) InvalidateProduct(ctx context.Context, id uuid.UUID) {
	l.cacheEvict(ctx, l.products, id.String())
}

// lookupOne — общий read-through путь для одной сущности
// параллельные промахи по одному ключу схлопываются через singleflight,
// так что в хранилище уходит ровно один запрос
func lookupOne[T any](ctx context.Context, l *Lookup, ns cache.Namespace, id uuid.UUID, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	key := id.String()

	if v, ok := l.cacheGet(ctx, ns, key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
		// в кэше значение чужого типа — запись испорчена, убираем её
		l.cacheEvict(ctx, ns, key)
	}

	v, err, _ := l.group.Do(ns.Key(key), func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		l.cacheSet(ctx, ns, key, val)
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// cacheGet читает кэш с ограниченным таймаутом
// любая ошибка кэша трактуется как промах: кэш — оптимизация, не зависимость
func (l *Lookup) cacheGet(ctx context.Context, ns cache.Namespace, key string) (any, bool) {
	cctx, cancel := context.WithTimeout(ctx, l.cacheTimeout)
	defer cancel()

	v, ok, err := l.cache.Get(cctx, ns, key)
	if err != nil {
		l.log.Warn("cache get failed, falling back to store",
			slog.String("key", ns.Key(key)), slog.String("error", err.Error()))
		return nil, false
	}
	return v, ok
}

func (l *Lookup) cacheSet(ctx context.Context, ns cache.Namespace, key string, value any) {
	cctx, cancel := context.WithTimeout(ctx, l.cacheTimeout)
	defer cancel()

	if err := l.cache.Set(cctx, ns, key, value); err != nil {
		l.log.Warn("cache set failed",
			slog.String("key", ns.Key(key)), slog.String("error", err.Error()))
	}
}

// cacheEvict удаляет ключ; сбой инвалидации не фатален —
// устаревание всё равно ограничено TTL пространства имён
func (l *Lookup) cacheEvict(ctx context.Context, ns cache.Namespace, key string) {
	cctx, cancel := context.WithTimeout(ctx, l.cacheTimeout)
	defer cancel()

	if err := l.cache.Evict(cctx, ns, key); err != nil {
		l.log.Warn("cache evict failed",
			slog.String("key", ns.Key(key)), slog.String("error", err.Error()))
	}
}
