package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrBadQuantity возвращается, если количество в позиции меньше единицы
	ErrBadQuantity = errors.New("quantity must be at least 1")
	// ErrNegativeFee возвращается при отрицательной стоимости доставки
	ErrNegativeFee = errors.New("delivery fee must not be negative")
)

// Line — входная позиция расчёта: количество и зафиксированная цена за единицу
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Quote — результат расчёта стоимости заказа
type Quote struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// Engine считает стоимость заказа
// все расчёты ведутся в decimal: двоичный float для денег не используется,
// иначе накапливается ошибка округления
type Engine struct{}

// New создаёт новый экземпляр движка расчёта цен
func New() *Engine {
	return &Engine{}
}

// Price вычисляет subtotal и total по списку позиций и стоимости доставки
// функция чистая и детерминированная: одинаковый вход всегда даёт одинаковый
// результат, это нужно для идемпотентных повторов создания заказа
func (e *Engine) Price(lines []Line, deliveryFee decimal.Decimal) (Quote, error) {
	if deliveryFee.IsNegative() {
		return Quote{}, ErrNegativeFee
	}

	subtotal := decimal.Zero
	for i, line := range lines {
		if line.Quantity < 1 {
			return Quote{}, fmt.Errorf("line %d: %w", i, ErrBadQuantity)
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return Quote{
		Subtotal: subtotal,
		Total:    subtotal.Add(deliveryFee),
	}, nil
}

// LineSubtotal считает стоимость одной позиции: количество × цена за единицу
func LineSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
