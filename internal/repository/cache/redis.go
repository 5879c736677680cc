package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis — кэш поверх Redis
// значения хранятся в конвертах кодека, TTL выставляется на уровне ключа
type Redis struct {
	client *redis.Client
	codec  *Codec
}

// NewRedis создаёт кэш поверх готового клиента Redis
func NewRedis(client *redis.Client, codec *Codec) *Redis {
	return &Redis{
		client: client,
		codec:  codec,
	}
}

// NewRedisClient создаёт и проверяет подключение к Redis
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	const op = "repository.cache.redis.NewRedisClient"

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}
	return client, nil
}

// Get возвращает значение по ключу, если оно есть и TTL не истёк
// истёкшие ключи Redis удаляет сам, поэтому после истечения это обычный промах
func (r *Redis) Get(ctx context.Context, ns Namespace, key string) (any, bool, error) {
	const op = "repository.cache.redis.Get"

	data, err := r.client.Get(ctx, ns.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	value, err := r.codec.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

// Set сохраняет значение с TTL пространства имён
func (r *Redis) Set(ctx context.Context, ns Namespace, key string, value any) error {
	const op = "repository.cache.redis.Set"

	data, err := r.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.client.Set(ctx, ns.Key(key), data, ns.TTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Evict удаляет ключ из кэша
// именно удаляет, а не помечает устаревшим: следующий Get гарантированно промах
func (r *Redis) Evict(ctx context.Context, ns Namespace, key string) error {
	const op = "repository.cache.redis.Evict"

	if err := r.client.Del(ctx, ns.Key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
