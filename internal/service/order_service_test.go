package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznec/food-order-service/internal/model"
)

func validCreateRequest(env *testEnv) (model.CreateOrderRequest, model.Customer, model.Restaurant, model.Product) {
	customer := env.seedCustomer(true)
	restaurant := env.seedRestaurant("5.00", true)
	product := env.seedProduct(restaurant.ID, "20.00", true)

	req := model.CreateOrderRequest{
		CustomerID:      customer.ID.String(),
		RestaurantID:    restaurant.ID.String(),
		DeliveryAddress: "Mira street 15",
		Notes:           "no onions",
		Items: []model.CreateOrderItem{
			{ProductID: product.ID.String(), Quantity: 2},
		},
	}
	return req, customer, restaurant, product
}

// активный клиент, активный ресторан, товар 20.00 × 2, доставка 5.00
func TestCreateOrder_Success(t *testing.T) {
	env := newTestEnv()
	req, customer, restaurant, product := validCreateRequest(env)

	order, err := env.orders.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.StatusReceived, order.Status)
	assert.Equal(t, customer.ID, order.CustomerID)
	assert.Equal(t, restaurant.ID, order.RestaurantID)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("40.00")), "subtotal = %s", order.Subtotal)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("45.00")), "total = %s", order.Total)
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.DeliveryFee)))

	// цена позиции зафиксирована на момент создания
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(product.Price))
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("40.00")))

	// заказ действительно записан в хранилище
	persisted, err := env.store.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, persisted.Status)
	assert.Equal(t, int64(1), env.metrics.creates.Load())
}

// цена в каталоге поменялась после создания — заказ не пересчитывается
func TestCreateOrder_PriceCapturedAtOrderTime(t *testing.T) {
	env := newTestEnv()
	req, _, _, product := validCreateRequest(env)

	order, err := env.orders.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, env.catalog.SetProductPrice(context.Background(), product.ID, decimal.RequireFromString("99.00")))

	persisted, err := env.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, persisted.Items[0].UnitPrice.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, persisted.Total.Equal(decimal.RequireFromString("45.00")))
}

func TestCreateOrder_InactiveRestaurant(t *testing.T) {
	env := newTestEnv()
	customer := env.seedCustomer(true)
	restaurant := env.seedRestaurant("5.00", false)
	product := env.seedProduct(restaurant.ID, "20.00", true)

	req := model.CreateOrderRequest{
		CustomerID:      customer.ID.String(),
		RestaurantID:    restaurant.ID.String(),
		DeliveryAddress: "Mira street 15",
		Items:           []model.CreateOrderItem{{ProductID: product.ID.String(), Quantity: 1}},
	}

	_, err := env.orders.CreateOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrRuleViolation)
	// ничего не записано
	assert.Equal(t, 0, env.store.orderCount())
}

func TestCreateOrder_InactiveCustomer(t *testing.T) {
	env := newTestEnv()
	customer := env.seedCustomer(false)
	restaurant := env.seedRestaurant("5.00", true)
	product := env.seedProduct(restaurant.ID, "20.00", true)

	req := model.CreateOrderRequest{
		CustomerID:      customer.ID.String(),
		RestaurantID:    restaurant.ID.String(),
		DeliveryAddress: "Mira street 15",
		Items:           []model.CreateOrderItem{{ProductID: product.ID.String(), Quantity: 1}},
	}

	_, err := env.orders.CreateOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrRuleViolation)
}

// товар принадлежит другому ресторану: отказ с указанием виновного товара
func TestCreateOrder_ForeignProduct(t *testing.T) {
	env := newTestEnv()
	customer := env.seedCustomer(true)
	restaurant := env.seedRestaurant("5.00", true)
	other := env.seedRestaurant("2.00", true)
	foreign := env.seedProduct(other.ID, "10.00", true)

	req := model.CreateOrderRequest{
		CustomerID:      customer.ID.String(),
		RestaurantID:    restaurant.ID.String(),
		DeliveryAddress: "Mira street 15",
		Items:           []model.CreateOrderItem{{ProductID: foreign.ID.String(), Quantity: 1}},
	}

	_, err := env.orders.CreateOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrRuleViolation)
	// сообщение называет конкретный товар
	assert.True(t, strings.Contains(err.Error(), foreign.ID.String()), err.Error())
	assert.Equal(t, 0, env.store.orderCount())
}

func TestCreateOrder_UnavailableProduct(t *testing.T) {
	env := newTestEnv()
	customer := env.seedCustomer(true)
	restaurant := env.seedRestaurant("5.00", true)
	product := env.seedProduct(restaurant.ID, "20.00", false)

	req := model.CreateOrderRequest{
		CustomerID:      customer.ID.String(),
		RestaurantID:    restaurant.ID.String(),
		DeliveryAddress: "Mira street 15",
		Items:           []model.CreateOrderItem{{ProductID: product.ID.String(), Quantity: 1}},
	}

	_, err := env.orders.CreateOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrRuleViolation)
	assert.True(t, strings.Contains(err.Error(), product.ID.String()), err.Error())
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	env := newTestEnv()
	customer := env.seedCustomer(true)
	restaurant := env.seedRestaurant("5.00", true)

	req := model.CreateOrderRequest{
		CustomerID:      customer.ID.String(),
		RestaurantID:    restaurant.ID.String(),
		DeliveryAddress: "Mira street 15",
		Items:           []model.CreateOrderItem{},
	}

	_, err := env.orders.CreateOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrRuleViolation)
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	env := newTestEnv()
	restaurant := env.seedRestaurant("5.00", true)
	product := env.seedProduct(restaurant.ID, "20.00", true)

	req := model.CreateOrderRequest{
		CustomerID:      uuid.NewString(),
		RestaurantID:    restaurant.ID.String(),
		DeliveryAddress: "Mira street 15",
		Items:           []model.CreateOrderItem{{ProductID: product.ID.String(), Quantity: 1}},
	}

	_, err := env.orders.CreateOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrNotFound)
}

// повтор с тем же order_uid после транзиентного сбоя не создаёт второй заказ
func TestCreateOrder_IdempotentRetry(t *testing.T) {
	env := newTestEnv()
	req, _, _, _ := validCreateRequest(env)
	req.OrderUID = uuid.NewString()

	first, err := env.orders.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	second, err := env.orders.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, 1, env.store.orderCount())
}

func TestCreateOrder_StoreUnavailable(t *testing.T) {
	env := newTestEnv()
	req, _, _, _ := validCreateRequest(env)
	env.store.saveOrderErr = errors.New("connection refused")

	_, err := env.orders.CreateOrder(context.Background(), req)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestChangeOrderStatus_HappyPath(t *testing.T) {
	env := newTestEnv()
	order := env.seedOrder(model.StatusReceived)

	updated, err := env.orders.ChangeOrderStatus(context.Background(), order.ID, model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, updated.Status)

	persisted, err := env.store.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, persisted.Status)
	assert.Equal(t, int64(1), env.metrics.transitions.Load())
}

// заказ уже доставлен: любой переход из терминального статуса — отказ,
// заказ остаётся неизменным
func TestChangeOrderStatus_TerminalOrder(t *testing.T) {
	env := newTestEnv()
	order := env.seedOrder(model.StatusDelivered)

	_, err := env.orders.ChangeOrderStatus(context.Background(), order.ID, model.StatusConfirmed)
	require.ErrorIs(t, err, ErrRuleViolation)

	persisted, err := env.store.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, persisted.Status)
	assert.Equal(t, int64(0), env.metrics.transitions.Load())
}

func TestChangeOrderStatus_UnknownOrder(t *testing.T) {
	env := newTestEnv()

	_, err := env.orders.ChangeOrderStatus(context.Background(), uuid.New(), model.StatusConfirmed)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChangeOrderStatus_UnknownStatus(t *testing.T) {
	env := newTestEnv()
	order := env.seedOrder(model.StatusReceived)

	_, err := env.orders.ChangeOrderStatus(context.Background(), order.ID, model.Status("SHIPPED"))
	require.ErrorIs(t, err, ErrRuleViolation)
}

// два конкурентных перевода RECEIVED -> CONFIRMED: ровно один успевает,
// второй получает Conflict и не перетирает результат победителя
func TestChangeOrderStatus_ConcurrentConflict(t *testing.T) {
	env := newTestEnv()
	order := env.seedOrder(model.StatusReceived)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.orders.ChangeOrderStatus(context.Background(), order.ID, model.StatusConfirmed)
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict) || errors.Is(err, ErrRuleViolation):
			// проигравший видит либо Conflict (CAS не сошёлся), либо отказ
			// машины статусов, если успел прочитать уже новый статус
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	persisted, err := env.store.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, persisted.Status)
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv()

	received := env.seedOrder(model.StatusReceived)
	canceled, err := env.orders.CancelOrder(context.Background(), received.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, canceled.Status)

	// отмена легальна только из RECEIVED
	preparing := env.seedOrder(model.StatusPreparing)
	_, err = env.orders.CancelOrder(context.Background(), preparing.ID)
	require.ErrorIs(t, err, ErrRuleViolation)
}

func TestGetOrder(t *testing.T) {
	env := newTestEnv()
	order := env.seedOrder(model.StatusReceived)

	got, err := env.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = env.orders.GetOrder(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
