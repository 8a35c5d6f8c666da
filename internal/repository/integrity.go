package repository

import (
	"context"
	"errors"
	"fmt"
)

// ExistsFunc проверяет существование родительской записи по ID.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// ExistsIn строит ExistsFunc поверх репозитория родителя.
func ExistsIn[T any, P any](parent Repository[T, P]) ExistsFunc {
	return func(ctx context.Context, id string) (bool, error) {
		_, err := parent.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
}

// Integrity — декоратор ссылочной целостности: create и update
// отклоняются с ErrReferenceNotFound, если ссылка (casoId, vitimaId)
// указывает на несуществующую запись. Пустая ссылка не проверяется.
// Каскадного удаления нет.
type Integrity[T any, P any] struct {
	next   Repository[T, P]
	desc   Descriptor[T, P]
	exists ExistsFunc
	// parent — имя родительской сущности для сообщения об ошибке
	parent string
}

// NewIntegrity оборачивает репозиторий.
func NewIntegrity[T any, P any](next Repository[T, P], desc Descriptor[T, P], parent string, exists ExistsFunc) *Integrity[T, P] {
	return &Integrity[T, P]{next: next, desc: desc, exists: exists, parent: parent}
}

// List без проверок.
func (g *Integrity[T, P]) List(ctx context.Context, f Filter) ([]T, error) {
	return g.next.List(ctx, f)
}

// Get без проверок.
func (g *Integrity[T, P]) Get(ctx context.Context, id string) (T, error) {
	return g.next.Get(ctx, id)
}

// Create проверяет ссылку новой записи.
func (g *Integrity[T, P]) Create(ctx context.Context, item T) (T, error) {
	if err := g.check(ctx, g.desc.Owner(&item)); err != nil {
		var zero T
		return zero, err
	}
	return g.next.Create(ctx, item)
}

// Update проверяет ссылку, если патч её меняет.
func (g *Integrity[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	if g.desc.PatchOwner != nil {
		if ref := g.desc.PatchOwner(patch); ref != nil {
			if err := g.check(ctx, *ref); err != nil {
				var zero T
				return zero, err
			}
		}
	}
	return g.next.Update(ctx, id, patch)
}

// Delete без проверок.
func (g *Integrity[T, P]) Delete(ctx context.Context, id string) error {
	return g.next.Delete(ctx, id)
}

func (g *Integrity[T, P]) check(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	ok, err := g.exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("проверка ссылки %s %s: %w", g.parent, ref, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrReferenceNotFound, g.parent, ref)
	}
	return nil
}
