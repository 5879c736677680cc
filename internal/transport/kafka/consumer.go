package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/mkuznec/food-order-service/internal/model"
	"github.com/mkuznec/food-order-service/internal/service"
)

// OrderCreator — это интерфейс, который абстрагирует консьюмер
// от конкретной реализации сервисного слоя
type OrderCreator interface {
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.Order, error)
}

// Consumer читает запросы на создание заказа из Kafka
// сообщение — это JSON CreateOrderRequest с клиентским order_uid:
// за счёт него повторная доставка не создаёт второй заказ
type Consumer struct {
	reader  *kafka.Reader
	service OrderCreator
	log     *slog.Logger
}

// NewConsumer создает новый экземпляр консьюмера
func NewConsumer(brokers []string, topic, groupID string, service OrderCreator, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})

	return &Consumer{
		reader:  reader,
		service: service,
		log:     log,
	}
}

// Run запускает цикл чтения сообщений из Kafka
// эта функция блокирующая, поэтому она запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	log := c.log.With(slog.String("component", "kafka_consumer"))
	log.Info("Kafka consumer started")

	for {
		// проверка на отмену контекста
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, stopping consumer.")
			return
		default:
			// FetchMessage блокирует до тех пор, пока не придет новое сообщение или не возникнет ошибка
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				// если контекст был отменен во время ожидания, это нормальное завершение
				if errors.Is(err, context.Canceled) {
					return
				}
				// если ридер был закрыт, тоже выходим
				if errors.Is(err, io.EOF) {
					log.Info("Kafka reader closed")
					return
				}
				log.Error("failed to fetch message", slog.String("error", err.Error()))
				continue // пробуем снова
			}

			log.Info("received message", slog.String("topic", msg.Topic), slog.Int("partition", msg.Partition), slog.Int64("offset", msg.Offset))

			// 1. Пытаемся обработать
			if err := c.handleMessage(ctx, msg); err != nil {
				log.Error("failed to handle message", slog.String("error", err.Error()))
				// сообщение НЕ подтверждаем — пусть Kafka отдаст его снова
				continue
			}

			// 2. Всё прошло — фиксируем offset
			// подтверждаем ПОСЛЕ успешной обработки, иначе сообщение потеряется
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.Error("failed to commit message", slog.String("error", err.Error()))
			}
		}
	}
}

// handleMessage парсит и обрабатывает одно сообщение
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var req model.CreateOrderRequest

	// распарсим JSON
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		// сообщение невалидно, перечитывать его бессмысленно — логируем и пропускаем
		c.log.Warn("failed to unmarshal message, skipping", slog.String("error", err.Error()))
		return nil
	}

	order, err := c.service.CreateOrder(ctx, req)
	if err != nil {
		// нарушение бизнес-правил или отсутствующая сущность не лечатся повтором:
		// пропускаем сообщение, иначе оно зациклит консьюмер
		if errors.Is(err, service.ErrRuleViolation) || errors.Is(err, service.ErrNotFound) {
			c.log.Warn("message rejected by workflow, skipping",
				slog.String("error", err.Error()),
				slog.String("order_uid", req.OrderUID),
			)
			return nil
		}
		// хранилище недоступно — возвращаем ошибку, Kafka отдаст сообщение снова
		// повтор безопасен: order_uid делает создание идемпотентным
		c.log.Error("failed to create order in service",
			slog.String("error", err.Error()),
			slog.String("order_uid", req.OrderUID),
		)
		return err
	}

	c.log.Info("order successfully processed", slog.String("order_id", order.ID.String()))
	return nil
}

// gracefull shutdown консьюмера
func (c *Consumer) Close() error {
	c.log.Info("Closing kafka consumer")
	return c.reader.Close()
}
