// Пакет store — адаптер коллекций поверх kv.Backend.
// Каждая коллекция хранится целиком как JSON-массив под фиксированным ключом.
//
// Политика ошибок:
//   - чтение (ReadPolicy = FallbackToDefault): отсутствие ключа, сбой backend
//     или некорректный JSON → возвращается значение по умолчанию, ошибка
//     логируется и учитывается в метрике, но вызывающему не передаётся;
//   - запись (WritePolicy = Propagate): ошибка логируется и возвращается.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/odontoforense/internal/kv"
)

// Policy — политика обработки ошибок операции адаптера.
type Policy string

const (
	// FallbackToDefault — ошибка заменяется значением по умолчанию.
	FallbackToDefault Policy = "fallback_to_default"
	// Propagate — ошибка возвращается вызывающему.
	Propagate Policy = "propagate"
)

// Политики адаптера.
const (
	ReadPolicy  = FallbackToDefault
	WritePolicy = Propagate
)

// Причины отката к значению по умолчанию (лейбл reason).
const (
	reasonMissing = "missing"
	reasonBackend = "backend_error"
	reasonDecode  = "decode_error"
)

// readFallbacksTotal — количество чтений, завершившихся значением по умолчанию.
var readFallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "of_store_read_fallbacks_total",
		Help: "Количество чтений коллекций, вернувших значение по умолчанию",
	},
	[]string{"key", "reason"},
)

// Adapter — адаптер коллекций.
type Adapter struct {
	backend kv.Backend
	logger  *slog.Logger
}

// New создаёт адаптер.
func New(backend kv.Backend, logger *slog.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		logger:  logger.With(slog.String("component", "store")),
	}
}

// Read читает коллекцию по ключу.
// Никогда не возвращает ошибку: при любом сбое возвращается копия def.
func Read[T any](ctx context.Context, a *Adapter, key string, def []T) []T {
	raw, ok, err := a.backend.Get(ctx, key)
	if err != nil {
		a.fallback(key, reasonBackend, err)
		return cloneDefault(def)
	}
	if !ok {
		readFallbacksTotal.WithLabelValues(key, reasonMissing).Inc()
		return cloneDefault(def)
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		a.fallback(key, reasonDecode, err)
		return cloneDefault(def)
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// cloneDefault копирует значение по умолчанию; nil превращается в пустую коллекцию.
func cloneDefault[T any](def []T) []T {
	if def == nil {
		return []T{}
	}
	return slices.Clone(def)
}

// Write сериализует коллекцию целиком и сохраняет её по ключу.
func Write[T any](ctx context.Context, a *Adapter, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		a.logger.Error("Ошибка сериализации коллекции",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("сериализация коллекции %s: %w", key, err)
	}

	if err := a.backend.Set(ctx, key, string(data)); err != nil {
		a.logger.Error("Ошибка записи коллекции",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("запись коллекции %s: %w", key, err)
	}
	return nil
}

// Remove удаляет коллекцию. Следующее чтение вернёт значение по умолчанию.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	if err := a.backend.Remove(ctx, key); err != nil {
		a.logger.Error("Ошибка удаления коллекции",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("удаление коллекции %s: %w", key, err)
	}
	return nil
}

// fallback логирует сбой чтения и увеличивает счётчик.
func (a *Adapter) fallback(key, reason string, err error) {
	readFallbacksTotal.WithLabelValues(key, reason).Inc()
	a.logger.Warn("Чтение коллекции не удалось, используется значение по умолчанию",
		slog.String("key", key),
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
}
