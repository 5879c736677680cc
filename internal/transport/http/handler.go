package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkuznec/food-order-service/internal/lib/auth"
	"github.com/mkuznec/food-order-service/internal/model"
	"github.com/mkuznec/food-order-service/internal/service"
)

// OrderWorkflow определяет интерфейс сервиса заказов для хэндлера
// Это позволяет хэндлеру не зависеть от конкретной реализации сервиса
type OrderWorkflow interface {
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error)
	ChangeOrderStatus(ctx context.Context, id uuid.UUID, status model.Status) (model.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
}

// Catalog определяет интерфейс сервиса каталога для хэндлера
type Catalog interface {
	CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (model.Customer, error)
	SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) error
	CreateRestaurant(ctx context.Context, req model.CreateRestaurantRequest) (model.Restaurant, error)
	SetRestaurantActive(ctx context.Context, id uuid.UUID, active bool) error
	CreateProduct(ctx context.Context, req model.CreateProductRequest) (model.Product, error)
	SetProductAvailable(ctx context.Context, id uuid.UUID, available bool) error
	SetProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	orders  OrderWorkflow
	catalog Catalog
	log     *slog.Logger
	mux     *http.ServeMux
}

// NewHandler создает новый экземпляр Handler
func NewHandler(orders OrderWorkflow, catalog Catalog, log *slog.Logger) *Handler {
	h := &Handler{
		orders:  orders,
		catalog: catalog,
		log:     log,
		mux:     http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	// рабочий цикл заказа
	h.mux.HandleFunc("POST /order", h.withPrincipal(h.createOrder))
	h.mux.HandleFunc("GET /order/{order_id}", h.getOrder)
	h.mux.HandleFunc("PATCH /order/{order_id}/status", h.changeOrderStatus)
	h.mux.HandleFunc("POST /order/{order_id}/cancel", h.cancelOrder)

	// администрирование каталога
	h.mux.HandleFunc("POST /admin/customers", h.createCustomer)
	h.mux.HandleFunc("PATCH /admin/customers/{id}/active", h.setCustomerActive)
	h.mux.HandleFunc("POST /admin/restaurants", h.createRestaurant)
	h.mux.HandleFunc("PATCH /admin/restaurants/{id}/active", h.setRestaurantActive)
	h.mux.HandleFunc("POST /admin/products", h.createProduct)
	h.mux.HandleFunc("PATCH /admin/products/{id}/available", h.setProductAvailable)
	h.mux.HandleFunc("PATCH /admin/products/{id}/price", h.setProductPrice)
}

// withPrincipal кладёт аутентифицированного клиента в контекст запроса
// проверка подписи токена — забота внешнего шлюза, сюда приходит уже
// проверенный идентификатор
func (h *Handler) withPrincipal(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Customer-ID")
		if raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.respondError(w, http.StatusBadRequest, "invalid X-Customer-ID header")
				return
			}
			r = r.WithContext(auth.WithPrincipal(r.Context(), id))
		}
		next(w, r)
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// если клиент в запросе не указан, берём его из принципала
	if req.CustomerID == "" {
		principal, err := auth.CurrentPrincipal(r.Context())
		if err != nil {
			h.respondError(w, http.StatusUnauthorized, "customer is not authenticated")
			return
		}
		req.CustomerID = principal.String()
	}

	order, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "order_id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, order)
}

func (h *Handler) changeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "order_id")
	if !ok {
		return
	}
	var req model.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.ChangeOrderStatus(r.Context(), id, model.Status(req.Status))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, order)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "order_id")
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, order)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	customer, err := h.catalog.CreateCustomer(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) setCustomerActive(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.catalog.SetCustomerActive)
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	restaurant, err := h.catalog.CreateRestaurant(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, restaurant)
}

func (h *Handler) setRestaurantActive(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.catalog.SetRestaurantActive)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) setProductAvailable(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.catalog.SetProductAvailable)
}

func (h *Handler) setProductPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.catalog.SetProductPrice(r.Context(), id, req.Price); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setFlag — общий обработчик для включения/выключения сущности
func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request, set func(context.Context, uuid.UUID, bool) error) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Value bool `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := set(r.Context(), id, req.Value); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID извлекает из пути UUID по имени параметра
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		h.respondError(w, http.StatusBadRequest, name+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, name+" must be a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError переводит таксономию ошибок сервиса в коды ответов
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRuleViolation):
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrConflict):
		// вызывающий может повторить запрос со свежим состоянием заказа
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("internal server error", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
