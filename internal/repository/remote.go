package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bigkaa/odontoforense/internal/apiclient"
)

// Remote — репозиторий поверх REST API.
// GET {resource}[?owner=], GET/PUT/DELETE {resource}/{id}, POST {resource}.
type Remote[T any, P any] struct {
	client *apiclient.Client
	desc   Descriptor[T, P]
}

// NewRemote создаёт удалённый репозиторий.
func NewRemote[T any, P any](client *apiclient.Client, desc Descriptor[T, P]) *Remote[T, P] {
	return &Remote[T, P]{client: client, desc: desc}
}

// List запрашивает коллекцию; фильтр передаётся query-параметром.
func (r *Remote[T, P]) List(ctx context.Context, f Filter) ([]T, error) {
	var q url.Values
	if f.OwnerID != "" && r.desc.OwnerParam != "" {
		q = url.Values{r.desc.OwnerParam: {f.OwnerID}}
	}
	var items []T
	if err := r.client.Do(ctx, http.MethodGet, r.desc.Resource, q, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get запрашивает запись; 404 → ErrNotFound.
func (r *Remote[T, P]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &item); err != nil {
		var zero T
		return zero, r.notFound(id, err)
	}
	return item, nil
}

// Create отправляет запись; ID и метки присваивает сервер.
func (r *Remote[T, P]) Create(ctx context.Context, item T) (T, error) {
	var created T
	if err := r.client.Do(ctx, http.MethodPost, r.desc.Resource, nil, item, &created); err != nil {
		var zero T
		return zero, err
	}
	return created, nil
}

// Update отправляет патч; 404 → ErrNotFound.
func (r *Remote[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var updated T
	if err := r.client.Do(ctx, http.MethodPut, r.itemPath(id), nil, patch, &updated); err != nil {
		var zero T
		return zero, r.notFound(id, err)
	}
	return updated, nil
}

// Delete удаляет запись; 404 — no-op.
func (r *Remote[T, P]) Delete(ctx context.Context, id string) error {
	err := r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
	if apiclient.StatusOf(err) == http.StatusNotFound {
		return nil
	}
	return err
}

func (r *Remote[T, P]) itemPath(id string) string {
	return r.desc.Resource + "/" + url.PathEscape(id)
}

// notFound добавляет ErrNotFound к ошибке 404, сохраняя ошибку API.
func (r *Remote[T, P]) notFound(id string, err error) error {
	if apiclient.StatusOf(err) == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w: %w", r.desc.Entity, id, ErrNotFound, err)
	}
	return err
}
