package service

import (
	"log/slog"
	"time"

	"github.com/mkuznec/food-order-service/internal/model"
)

// Metrics — узкий контракт наблюдаемости, который сервис «производит»
// регистрация и экспорт метрик живут снаружи и здесь не специфицированы
type Metrics interface {
	// IncStatusTransition — счётчик успешных переходов статуса
	IncStatusTransition(from, to model.Status)
	// ObserveCreateOrder — таймер вокруг создания заказа
	ObserveCreateOrder(d time.Duration)
}

// LogMetrics — реализация Metrics поверх slog
// используется, пока к сервису не подключён настоящий сборщик метрик
type LogMetrics struct {
	log *slog.Logger
}

// NewLogMetrics создаёт slog-реализацию метрик
func NewLogMetrics(log *slog.Logger) *LogMetrics {
	return &LogMetrics{log: log}
}

func (m *LogMetrics) IncStatusTransition(from, to model.Status) {
	m.log.Debug("order status transition",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
}

func (m *LogMetrics) ObserveCreateOrder(d time.Duration) {
	m.log.Debug("create order finished", slog.Duration("duration", d))
}
