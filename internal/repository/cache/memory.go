package cache

import (
	"context"
	"sync"
	"time"
)

// entry — запись in-memory кэша: закодированное значение и момент истечения
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory — потокобезопасный in-memory кэш
// используется в тестах и при запуске без Redis; контракт тот же:
// значения проходят через кодек, чтобы типизированная сериализация
// проверялась и без внешнего хранилища
type Memory struct {
	mu      sync.RWMutex
	storage map[string]entry
	codec   *Codec
	now     func() time.Time
}

// NewMemory создаёт новый экземпляр in-memory кэша
func NewMemory(codec *Codec) *Memory {
	return &Memory{
		storage: make(map[string]entry),
		codec:   codec,
		now:     time.Now,
	}
}

// Get извлекает значение по ключу
// запись с истёкшим TTL считается промахом и удаляется лениво
func (m *Memory) Get(_ context.Context, ns Namespace, key string) (any, bool, error) {
	k := ns.Key(key)

	m.mu.RLock()
	e, ok := m.storage[k]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// перепроверяем под write-блокировкой: запись могли успеть обновить
		if cur, ok := m.storage[k]; ok && m.now().After(cur.expiresAt) {
			delete(m.storage, k)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	value, err := m.codec.Decode(e.data)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set добавляет или обновляет значение с TTL пространства имён
func (m *Memory) Set(_ context.Context, ns Namespace, key string, value any) error {
	data, err := m.codec.Encode(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.storage[ns.Key(key)] = entry{
		data:      data,
		expiresAt: m.now().Add(ns.TTL),
	}
	m.mu.Unlock()
	return nil
}

// Evict удаляет запись по ключу
func (m *Memory) Evict(_ context.Context, ns Namespace, key string) error {
	m.mu.Lock()
	delete(m.storage, ns.Key(key))
	m.mu.Unlock()
	return nil
}
