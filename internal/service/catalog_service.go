package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkuznec/food-order-service/internal/model"
)

// CatalogService управляет клиентами, ресторанами и товарами
// каждая запись идёт в хранилище и затем инвалидирует соответствующий ключ
// кэша, чтобы следующий read-through гарантированно был промахом
type CatalogService struct {
	store  CatalogStore
	lookup *Lookup
	log    *slog.Logger
}

// NewCatalogService создаёт новый экземпляр сервиса каталога
func NewCatalogService(store CatalogStore, lookup *Lookup, log *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		lookup: lookup,
		log:    log,
	}
}

// CreateCustomer регистрирует нового клиента
func (s *CatalogService) CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (model.Customer, error) {
	const op = "service.CatalogService.CreateCustomer"

	if err := req.Validate(); err != nil {
		return model.Customer{}, ruleViolation("invalid request: %s", err)
	}

	customer := model.Customer{
		ID:     uuid.New(),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Active: true,
	}
	if err := s.store.SaveCustomer(ctx, customer); err != nil {
		s.log.Error("failed to save customer", slog.String("op", op), slog.String("error", err.Error()))
		return model.Customer{}, translateStoreErr(err)
	}
	return customer, nil
}

// SetCustomerActive включает или выключает клиента (мягкая деактивация)
func (s *CatalogService) SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.store.SetCustomerActive(ctx, id, active); err != nil {
		return translateStoreErr(err)
	}
	s.lookup.InvalidateCustomer(ctx, id)
	return nil
}

// CreateRestaurant регистрирует новый ресторан
func (s *CatalogService) CreateRestaurant(ctx context.Context, req model.CreateRestaurantRequest) (model.Restaurant, error) {
	const op = "service.CatalogService.CreateRestaurant"

	if err := req.Validate(); err != nil {
		return model.Restaurant{}, ruleViolation("invalid request: %s", err)
	}
	if req.DeliveryFee.IsNegative() {
		return model.Restaurant{}, ruleViolation("delivery fee must not be negative")
	}

	restaurant := model.Restaurant{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    req.Category,
		DeliveryFee: req.DeliveryFee,
		Active:      true,
	}
	if err := s.store.SaveRestaurant(ctx, restaurant); err != nil {
		s.log.Error("failed to save restaurant", slog.String("op", op), slog.String("error", err.Error()))
		return model.Restaurant{}, translateStoreErr(err)
	}
	return restaurant, nil
}

// SetRestaurantActive включает или выключает ресторан
func (s *CatalogService) SetRestaurantActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.store.SetRestaurantActive(ctx, id, active); err != nil {
		return translateStoreErr(err)
	}
	s.lookup.InvalidateRestaurant(ctx, id)
	return nil
}

// CreateProduct добавляет товар в каталог ресторана
func (s *CatalogService) CreateProduct(ctx context.Context, req model.CreateProductRequest) (model.Product, error) {
	const op = "service.CatalogService.CreateProduct"

	if err := req.Validate(); err != nil {
		return model.Product{}, ruleViolation("invalid request: %s", err)
	}
	if !req.Price.IsPositive() {
		return model.Product{}, ruleViolation("price must be positive")
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return model.Product{}, ruleViolation("invalid restaurant id %q", req.RestaurantID)
	}
	// ресторан должен существовать: принадлежность по внешнему ключу явная
	if _, err := s.lookup.Restaurant(ctx, restaurantID); err != nil {
		return model.Product{}, translateStoreErr(err)
	}

	product := model.Product{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         req.Name,
		Price:        req.Price,
		Available:    true,
	}
	if err := s.store.SaveProduct(ctx, product); err != nil {
		s.log.Error("failed to save product", slog.String("op", op), slog.String("error", err.Error()))
		return model.Product{}, translateStoreErr(err)
	}
	return product, nil
}

// SetProductAvailable меняет доступность товара
func (s *CatalogService) SetProductAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	if err := s.store.SetProductAvailable(ctx, id, available); err != nil {
		return translateStoreErr(err)
	}
	s.lookup.InvalidateProduct(ctx, id)
	return nil
}

// SetProductPrice меняет цену товара в каталоге
// позиций уже созданных заказов это не касается: их цены зафиксированы
func (s *CatalogService) SetProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	if !price.IsPositive() {
		return ruleViolation("price must be positive")
	}
	if err := s.store.SetProductPrice(ctx, id, price); err != nil {
		return translateStoreErr(err)
	}
	s.lookup.InvalidateProduct(ctx, id)
	return nil
}
