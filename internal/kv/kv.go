// Пакет kv — durable key-value хранилище строковых значений,
// поверх которого работает адаптер коллекций (internal/store).
// Реализации: memory (этот пакет), filekv, sqlitekv, pgkv, s3kv.
package kv

import (
	"context"
	"sync"
)

// Backend — минимальный контракт хранилища: get/set/remove строк по ключу.
// Отсутствие ключа не является ошибкой: Get возвращает ok=false.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Memory — in-memory реализация Backend под RWMutex.
// Используется в тестах и демонстрационном режиме.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory создаёт пустое in-memory хранилище.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get возвращает значение по ключу.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set сохраняет значение по ключу.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove удаляет ключ. Отсутствующий ключ — no-op.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len возвращает количество ключей.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
