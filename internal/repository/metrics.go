package repository

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики операций репозиториев.
var (
	// operationsTotal — количество операций по сущности, операции и результату.
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "of_repository_operations_total",
			Help: "Количество операций репозиториев",
		},
		[]string{"entity", "operation", "result"},
	)

	// operationDuration — длительность операций репозиториев.
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "of_repository_operation_duration_seconds",
			Help:    "Длительность операций репозиториев в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity", "operation"},
	)
)

// Metered — декоратор, учитывающий операции в Prometheus.
type Metered[T any, P any] struct {
	next   Repository[T, P]
	entity string
}

// NewMetered оборачивает репозиторий.
func NewMetered[T any, P any](next Repository[T, P], entity string) *Metered[T, P] {
	return &Metered[T, P]{next: next, entity: entity}
}

func (m *Metered[T, P]) List(ctx context.Context, f Filter) ([]T, error) {
	defer m.observe("list", time.Now())
	items, err := m.next.List(ctx, f)
	m.count("list", err)
	return items, err
}

func (m *Metered[T, P]) Get(ctx context.Context, id string) (T, error) {
	defer m.observe("get", time.Now())
	item, err := m.next.Get(ctx, id)
	m.count("get", err)
	return item, err
}

func (m *Metered[T, P]) Create(ctx context.Context, item T) (T, error) {
	defer m.observe("create", time.Now())
	created, err := m.next.Create(ctx, item)
	m.count("create", err)
	return created, err
}

func (m *Metered[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	defer m.observe("update", time.Now())
	updated, err := m.next.Update(ctx, id, patch)
	m.count("update", err)
	return updated, err
}

func (m *Metered[T, P]) Delete(ctx context.Context, id string) error {
	defer m.observe("delete", time.Now())
	err := m.next.Delete(ctx, id)
	m.count("delete", err)
	return err
}

func (m *Metered[T, P]) observe(op string, start time.Time) {
	operationDuration.WithLabelValues(m.entity, op).Observe(time.Since(start).Seconds())
}

func (m *Metered[T, P]) count(op string, err error) {
	operationsTotal.WithLabelValues(m.entity, op, resultOf(err)).Inc()
}

// resultOf — лейбл result по ошибке.
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrReferenceNotFound):
		return "invalid"
	default:
		return "error"
	}
}
