// этот код не зависит от приложения,
// и нужен только для ручной отправки запросов на создание заказа через кафку
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

func main() {
	// конфигурация из config.yaml
	brokerAddress := "localhost:9092"
	topic := "orders"

	// JSON-запрос на создание заказа; UUID-ы должны существовать в каталоге
	// order_uid фиксирован намеренно: повторный запуск не создаст второй заказ
	message := `{
           "order_uid": "0b126d17-5c14-4a3f-9a6b-51d0d4e1f0aa",
           "customer_id": "7b4f4fa4-6f5b-4f8e-9a0a-2f1f5a1b9c01",
           "restaurant_id": "e7a9a6c0-88a1-4f29-b6ff-0d58c2a6b702",
           "delivery_address": "Mira street 15, Moscow",
           "notes": "call on arrival",
           "items": [
             { "product_id": "f0b7d7e4-3f44-4c52-a1c2-830cf67f40b3", "quantity": 2 },
             { "product_id": "c4f0d9de-91d7-4f86-a2cb-0df01c4b8a17", "quantity": 1 }
           ]
        }`

	// настройки писателя (producer-а)
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokerAddress),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	log.Println("Sending message to Kafka...")
	err := writer.WriteMessages(context.Background(),
		kafka.Message{
			Value: []byte(message),
		},
	)
	if err != nil {
		log.Fatalf("Failed to write message: %v", err)
	}
	fmt.Println("Message sent successfully!")
}
