// resource.go — обобщённый CRUD-обработчик REST-ресурса поверх репозитория.
//
//	GET    /{resource}[?{ownerParam}=]  список (с фильтром)
//	POST   /{resource}                  создание → 201
//	GET    /{resource}/{id}             запись
//	PUT    /{resource}/{id}             частичное обновление (патч)
//	DELETE /{resource}/{id}             удаление → 204
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/odontoforense/internal/api/errors"
	"github.com/bigkaa/odontoforense/internal/repository"
)

// maxBodyBytes — ограничение размера тела запроса.
const maxBodyBytes = 1 << 20

// CreateHook дополняет запись перед созданием данными запроса
// (например, автором из токена).
type CreateHook[T any] func(r *http.Request, item *T)

// Resource — CRUD-обработчик сущности T с патчем P.
type Resource[T any, P any] struct {
	repo     repository.Repository[T, P]
	desc     repository.Descriptor[T, P]
	onCreate CreateHook[T]
	logger   *slog.Logger
}

// NewResource создаёт обработчик ресурса. onCreate может быть nil.
func NewResource[T any, P any](
	repo repository.Repository[T, P],
	desc repository.Descriptor[T, P],
	onCreate CreateHook[T],
	logger *slog.Logger,
) *Resource[T, P] {
	return &Resource[T, P]{
		repo:     repo,
		desc:     desc,
		onCreate: onCreate,
		logger:   logger.With(slog.String("component", "api_handler"), slog.String("resource", desc.Resource)),
	}
}

// Mount регистрирует маршруты ресурса. guard — проверка прав на изменение;
// extra добавляет маршруты под тем же префиксом и guard.
func (h *Resource[T, P]) Mount(r chi.Router, guard func(http.Handler) http.Handler, extra ...func(chi.Router)) {
	r.Route(h.desc.Resource, func(r chi.Router) {
		r.Use(guard)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		for _, add := range extra {
			add(r)
		}
	})
}

// List — список записей с необязательным фильтром по владельцу.
func (h *Resource[T, P]) List(w http.ResponseWriter, r *http.Request) {
	var f repository.Filter
	if h.desc.OwnerParam != "" {
		f.OwnerID = r.URL.Query().Get(h.desc.OwnerParam)
	}
	items, err := h.repo.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get — запись по ID.
func (h *Resource[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create — создание записи; ID и метки времени присваивает репозиторий.
func (h *Resource[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if !decodeBody(w, r, &item) {
		return
	}
	if h.onCreate != nil {
		h.onCreate(r, &item)
	}
	created, err := h.repo.Create(r.Context(), item)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update — применение патча.
func (h *Resource[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	var patch P
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete — удаление; отсутствие записи не ошибка.
func (h *Resource[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Resource[T, P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierrors.FromError(w, err) {
		h.logger.Error("Ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// decodeBody декодирует JSON-тело; при ошибке пишет 400 и возвращает false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Corpo da requisição inválido: "+err.Error())
		return false
	}
	return true
}
