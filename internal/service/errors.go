package service

import (
	"errors"
	"fmt"

	"github.com/mkuznec/food-order-service/internal/repository/postgres"
)

// таксономия ошибок сервисного слоя
// транспорт переводит её в коды ответов: NotFound — 404, RuleViolation — 422,
// Conflict — 409, Unavailable — 5xx; «сырые» ошибки драйвера наружу не выходят
var (
	ErrNotFound      = errors.New("not found")
	ErrRuleViolation = errors.New("business rule violation")
	ErrConflict      = errors.New("concurrent status update conflict")
	ErrUnavailable   = errors.New("storage unavailable")
)

// ruleViolation оборачивает ErrRuleViolation с человекочитаемой причиной
func ruleViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRuleViolation, fmt.Sprintf(format, args...))
}

// translateStoreErr переводит ошибку хранилища в таксономию сервиса
// это единственная граница перевода: ниже сервиса ошибки не классифицируются
func translateStoreErr(err error) error {
	if errors.Is(err, postgres.ErrCustomerNotFound) ||
		errors.Is(err, postgres.ErrRestaurantNotFound) ||
		errors.Is(err, postgres.ErrProductNotFound) ||
		errors.Is(err, postgres.ErrOrderNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	}
	// сюда же попадают таймауты контекста хранилища
	return fmt.Errorf("%w: %s", ErrUnavailable, err)
}
