package repository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/odontoforense/internal/store"
)

// LocalOption — опция локального репозитория.
type LocalOption func(*localOptions)

type localOptions struct {
	latency time.Duration
	now     func() time.Time
	newID   func() string
}

// WithLatency задаёт искусственную задержку каждой операции.
func WithLatency(d time.Duration) LocalOption {
	return func(o *localOptions) { o.latency = d }
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) LocalOption {
	return func(o *localOptions) { o.now = now }
}

// WithIDGenerator подменяет генератор ID (для тестов).
func WithIDGenerator(fn func() string) LocalOption {
	return func(o *localOptions) { o.newID = fn }
}

// Local — репозиторий поверх адаптера коллекций.
// Каждая операция читает коллекцию целиком, изменяет её в памяти
// и записывает целиком. Внутри процесса read-modify-write одной
// коллекции сериализуется мьютексом.
type Local[T any, P any] struct {
	adapter  *store.Adapter
	key      string
	desc     Descriptor[T, P]
	defaults []T
	opts     localOptions
	logger   *slog.Logger

	mu sync.Mutex
}

// NewLocal создаёт локальный репозиторий.
// defaults — значение коллекции, пока ключ не записан (seed-данные или пусто).
func NewLocal[T any, P any](
	adapter *store.Adapter,
	keys store.Keys,
	desc Descriptor[T, P],
	defaults []T,
	logger *slog.Logger,
	opts ...LocalOption,
) *Local[T, P] {
	o := localOptions{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &Local[T, P]{
		adapter:  adapter,
		key:      keys.For(desc.Collection),
		desc:     desc,
		defaults: defaults,
		opts:     o,
		logger: logger.With(
			slog.String("component", "repository"),
			slog.String("entity", desc.Entity),
		),
	}
}

// List возвращает коллекцию или её подпоследовательность по фильтру.
func (r *Local[T, P]) List(ctx context.Context, f Filter) ([]T, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	items := r.load(ctx)
	if f.OwnerID == "" {
		return items, nil
	}
	out := make([]T, 0, len(items))
	for i := range items {
		if r.desc.matches(&items[i], f) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// Get возвращает запись по ID.
func (r *Local[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := r.wait(ctx); err != nil {
		return zero, err
	}
	items := r.load(ctx)
	if i := r.indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return zero, fmt.Errorf("%s %s: %w", r.desc.Entity, id, ErrNotFound)
}

// Create добавляет запись в конец коллекции.
// ID генерируется заново; проверка уникальности не выполняется.
func (r *Local[T, P]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := r.wait(ctx); err != nil {
		return zero, err
	}

	r.desc.SetID(&item, r.opts.newID())
	r.desc.OnCreate(&item, r.opts.now().UTC())
	if err := r.validate(&item); err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := append(r.load(ctx), item)
	if err := r.save(ctx, items); err != nil {
		return zero, err
	}

	r.logger.Debug("Запись создана", slog.String("id", r.desc.ID(&item)))
	return item, nil
}

// Update применяет патч к записи с указанным ID.
// Коллекция не меняется, если запись не найдена или данные некорректны.
func (r *Local[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	if err := r.wait(ctx); err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.load(ctx)
	i := r.indexOf(items, id)
	if i < 0 {
		return zero, fmt.Errorf("%s %s: %w", r.desc.Entity, id, ErrNotFound)
	}

	updated := items[i]
	r.desc.Apply(patch, &updated)
	if r.desc.OnUpdate != nil {
		r.desc.OnUpdate(&updated, r.opts.now().UTC())
	}
	if err := r.validate(&updated); err != nil {
		return zero, err
	}

	items[i] = updated
	if err := r.save(ctx, items); err != nil {
		return zero, err
	}

	r.logger.Debug("Запись обновлена", slog.String("id", id))
	return updated, nil
}

// Delete удаляет все записи с указанным ID. Отсутствие записи — no-op
// (коллекция при этом не перезаписывается).
func (r *Local[T, P]) Delete(ctx context.Context, id string) error {
	if err := r.wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.load(ctx)
	kept := slices.DeleteFunc(slices.Clone(items), func(item T) bool {
		return r.desc.ID(&item) == id
	})
	if len(kept) == len(items) {
		return nil
	}
	if err := r.save(ctx, kept); err != nil {
		return err
	}

	r.logger.Debug("Запись удалена", slog.String("id", id))
	return nil
}

// load читает коллекцию (ошибки чтения поглощаются адаптером).
func (r *Local[T, P]) load(ctx context.Context) []T {
	return store.Read(ctx, r.adapter, r.key, r.defaults)
}

// save записывает коллекцию; ошибка оборачивается в ErrStorage.
func (r *Local[T, P]) save(ctx context.Context, items []T) error {
	if err := store.Write(ctx, r.adapter, r.key, items); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (r *Local[T, P]) indexOf(items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool {
		return r.desc.ID(&item) == id
	})
}

func (r *Local[T, P]) validate(item *T) error {
	if r.desc.Validate == nil {
		return nil
	}
	return r.desc.Validate(item)
}

// wait выдерживает искусственную задержку с учётом отмены контекста.
func (r *Local[T, P]) wait(ctx context.Context) error {
	if r.opts.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.opts.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
