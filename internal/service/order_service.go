package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznec/food-order-service/internal/model"
	"github.com/mkuznec/food-order-service/internal/pricing"
	"github.com/mkuznec/food-order-service/internal/repository/postgres"
)

// OrderService инкапсулирует рабочий цикл заказа: проверку бизнес-правил,
// расчёт стоимости, машину статусов и контракт согласованности вокруг записи
// композиция явная: все зависимости передаются в конструктор,
// никакого глобального контейнера
type OrderService struct {
	store   Store
	lookup  *Lookup
	pricing *pricing.Engine
	metrics Metrics
	log     *slog.Logger
}

// NewOrderService создаёт новый экземпляр сервиса заказов
// он принимает интерфейсы, а не конкретные типы, для гибкости и тестируемости
func NewOrderService(store Store, lookup *Lookup, engine *pricing.Engine, metrics Metrics, log *slog.Logger) *OrderService {
	return &OrderService{
		store:   store,
		lookup:  lookup,
		pricing: engine,
		metrics: metrics,
		log:     log,
	}
}

// CreateOrder обрабатывает создание нового заказа
// клиент, ресторан и товары читаются через кэшированный Lookup,
// запись уходит в хранилище одной транзакцией
func (s *OrderService) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error) {
	const op = "service.OrderService.CreateOrder"
	log := s.log.With(slog.String("op", op), slog.String("customer_id", req.CustomerID))

	start := time.Now()
	defer func() {
		s.metrics.ObserveCreateOrder(time.Since(start))
	}()

	// 1. Проверка формы запроса
	if err := req.Validate(); err != nil {
		return model.Order{}, ruleViolation("invalid request: %s", err)
	}
	if len(req.Items) == 0 {
		return model.Order{}, ruleViolation("order must contain at least one item")
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return model.Order{}, ruleViolation("invalid customer id %q", req.CustomerID)
	}
	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		return model.Order{}, ruleViolation("invalid restaurant id %q", req.RestaurantID)
	}

	// клиентский UID делает повтор создания идемпотентным
	orderID := uuid.New()
	if req.OrderUID != "" {
		orderID, err = uuid.Parse(req.OrderUID)
		if err != nil {
			return model.Order{}, ruleViolation("invalid order uid %q", req.OrderUID)
		}
	}

	// 2. Проверка бизнес-правил: ссылки существуют и активны
	customer, err := s.lookup.Customer(ctx, customerID)
	if err != nil {
		return model.Order{}, translateStoreErr(err)
	}
	if !customer.Active {
		return model.Order{}, ruleViolation("customer %s is not active", customerID)
	}

	restaurant, err := s.lookup.Restaurant(ctx, restaurantID)
	if err != nil {
		return model.Order{}, translateStoreErr(err)
	}
	if !restaurant.Active {
		return model.Order{}, ruleViolation("restaurant %s is not active", restaurantID)
	}

	// 3. Фиксируем цены позиций на момент создания заказа
	items := make([]model.OrderItem, 0, len(req.Items))
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, reqItem := range req.Items {
		productID, err := uuid.Parse(reqItem.ProductID)
		if err != nil {
			return model.Order{}, ruleViolation("invalid product id %q", reqItem.ProductID)
		}

		product, err := s.lookup.Product(ctx, productID)
		if err != nil {
			if errors.Is(err, postgres.ErrProductNotFound) {
				return model.Order{}, ruleViolation("product %s does not exist", productID)
			}
			return model.Order{}, translateStoreErr(err)
		}
		if product.RestaurantID != restaurantID {
			return model.Order{}, ruleViolation("product %s does not belong to restaurant %s", productID, restaurantID)
		}
		if !product.Available {
			return model.Order{}, ruleViolation("product %s is not available", productID)
		}

		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  reqItem.Quantity,
			UnitPrice: product.Price,
			Subtotal:  pricing.LineSubtotal(reqItem.Quantity, product.Price),
		})
		lines = append(lines, pricing.Line{Quantity: reqItem.Quantity, UnitPrice: product.Price})
	}

	// 4. Расчёт стоимости: total = subtotal + delivery_fee, всё в decimal
	quote, err := s.pricing.Price(lines, restaurant.DeliveryFee)
	if err != nil {
		return model.Order{}, ruleViolation("pricing failed: %s", err)
	}

	order := model.Order{
		ID:              orderID,
		CustomerID:      customerID,
		RestaurantID:    restaurantID,
		Items:           items,
		Status:          model.StatusReceived,
		Subtotal:        quote.Subtotal,
		DeliveryFee:     restaurant.DeliveryFee,
		Total:           quote.Total,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		CreatedAt:       time.Now().UTC(),
	}

	// 5. Сохраняем заказ вместе с позициями одной транзакцией
	if err := s.store.SaveOrder(ctx, order); err != nil {
		// повтор с тем же UID: заказ уже записан, возвращаем его как есть
		if errors.Is(err, postgres.ErrOrderExists) {
			log.Info("duplicate create, returning persisted order", slog.String("order_id", orderID.String()))
			existing, findErr := s.store.FindOrder(ctx, orderID)
			if findErr != nil {
				return model.Order{}, translateStoreErr(findErr)
			}
			return existing, nil
		}
		log.Error("failed to save order", slog.String("error", err.Error()))
		return model.Order{}, translateStoreErr(err)
	}

	log.Info("order created", slog.String("order_id", orderID.String()), slog.String("total", order.Total.String()))
	return order, nil
}

// ChangeOrderStatus переводит заказ в запрошенный статус
// допустимость перехода решает таблица переходов, запись идёт через
// compare-and-set: проигравший гонку получает Conflict, а не перетирает чужой
// результат
func (s *OrderService) ChangeOrderStatus(ctx context.Context, id uuid.UUID, requested model.Status) (model.Order, error) {
	const op = "service.OrderService.ChangeOrderStatus"
	log := s.log.With(slog.String("op", op), slog.String("order_id", id.String()))

	if !requested.Valid() {
		return model.Order{}, ruleViolation("unknown status %q", requested)
	}

	order, err := s.store.FindOrder(ctx, id)
	if err != nil {
		return model.Order{}, translateStoreErr(err)
	}

	if !model.CanTransition(order.Status, requested) {
		return model.Order{}, ruleViolation("transition %s -> %s is not allowed", order.Status, requested)
	}

	ok, err := s.store.UpdateOrderStatus(ctx, id, order.Status, requested)
	if err != nil {
		log.Error("failed to update order status", slog.String("error", err.Error()))
		return model.Order{}, translateStoreErr(err)
	}
	if !ok {
		// статус успел измениться после нашего чтения; повтор — забота вызывающего
		return model.Order{}, fmt.Errorf("%w: order %s", ErrConflict, id)
	}

	s.metrics.IncStatusTransition(order.Status, requested)
	log.Info("order status changed",
		slog.String("from", string(order.Status)), slog.String("to", string(requested)))

	order.Status = requested
	return order, nil
}

// CancelOrder отменяет заказ; отмена легальна только из статуса RECEIVED,
// что обеспечивается общей таблицей переходов
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	return s.ChangeOrderStatus(ctx, id, model.StatusCanceled)
}

// GetOrder возвращает заказ по ID
// заказы в отличие от каталога не кэшируются: их статус меняется часто
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	order, err := s.store.FindOrder(ctx, id)
	if err != nil {
		return model.Order{}, translateStoreErr(err)
	}
	return order, nil
}
