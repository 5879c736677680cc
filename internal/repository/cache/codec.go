package cache

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mkuznec/food-order-service/internal/model"
)

// envelope — сериализованное значение вместе с тегом конкретного типа
// тег нужен, чтобы значение, сохранённое через интерфейсный тип,
// восстановилось именно в исходный конкретный тип, а не в map[string]any
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Codec кодирует и декодирует кэшируемые значения
// каждый кэшируемый тип регистрируется заранее под строковым тегом
type Codec struct {
	kinds    map[reflect.Type]string
	decoders map[string]func(json.RawMessage) (any, error)
}

// NewCodec создаёт пустой кодек без зарегистрированных типов
func NewCodec() *Codec {
	return &Codec{
		kinds:    make(map[reflect.Type]string),
		decoders: make(map[string]func(json.RawMessage) (any, error)),
	}
}

// RegisterType регистрирует тип T под тегом kind
func RegisterType[T any](c *Codec, kind string) {
	var zero T
	c.kinds[reflect.TypeOf(zero)] = kind
	c.decoders[kind] = func(raw json.RawMessage) (any, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Encode упаковывает значение в конверт с тегом типа
// для незарегистрированного типа возвращает ошибку: молча терять
// информацию о типе нельзя, это ошибка корректности, а не производительности
func (c *Codec) Encode(v any) ([]byte, error) {
	kind, ok := c.kinds[reflect.TypeOf(v)]
	if !ok {
		return nil, fmt.Errorf("cache codec: unregistered type %T", v)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cache codec: failed to marshal %s: %w", kind, err)
	}
	return json.Marshal(envelope{Kind: kind, Payload: payload})
}

// Decode распаковывает конверт и возвращает значение исходного конкретного типа
func (c *Codec) Decode(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("cache codec: failed to unmarshal envelope: %w", err)
	}
	decode, ok := c.decoders[env.Kind]
	if !ok {
		return nil, fmt.Errorf("cache codec: unknown kind %q", env.Kind)
	}
	return decode(env.Payload)
}

// DefaultCodec возвращает кодек со всеми типами, которые сервис кладёт в кэш
func DefaultCodec() *Codec {
	c := NewCodec()
	RegisterType[model.Customer](c, "customer")
	RegisterType[model.Restaurant](c, "restaurant")
	RegisterType[model.Product](c, "product")
	RegisterType[model.Order](c, "order")
	return c
}
