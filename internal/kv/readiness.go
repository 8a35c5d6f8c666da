package kv

import (
	"context"
	"fmt"
)

// healthKey — ключ, который читает проверка готовности (может отсутствовать).
const healthKey = "odontoforense:health"

// ReadinessChecker — проверка готовности backend для /health/ready:
// чтение ключа без ошибки означает, что хранилище доступно.
type ReadinessChecker struct {
	backend Backend
	name    string
}

// NewReadinessChecker создаёт проверку для backend с именем драйвера.
func NewReadinessChecker(backend Backend, driver string) *ReadinessChecker {
	return &ReadinessChecker{backend: backend, name: "store_" + driver}
}

// Name возвращает имя проверки в ответе /health/ready.
func (c *ReadinessChecker) Name() string { return c.name }

// CheckReady читает пробный ключ.
func (c *ReadinessChecker) CheckReady(ctx context.Context) (status, message string) {
	if _, _, err := c.backend.Get(ctx, healthKey); err != nil {
		return "fail", fmt.Sprintf("хранилище недоступно: %v", err)
	}
	return "ok", "хранилище доступно"
}
