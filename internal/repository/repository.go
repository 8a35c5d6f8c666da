// Пакет repository — репозитории сущностей с единым интерфейсом
// и подключаемой реализацией: локальное хранилище (Local) или REST API (Remote).
// Поверх реализации накладываются декораторы: метрики, ссылочная
// целостность, уведомления.
package repository

import (
	"context"
	"errors"
	"time"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrStorage — не удалось сохранить коллекцию.
	ErrStorage = errors.New("falha ao gravar no armazenamento")
	// ErrReferenceNotFound — связанная запись (дело, жертва) не существует.
	ErrReferenceNotFound = errors.New("registro relacionado não encontrado")
	// ErrValidation — некорректные данные сущности.
	ErrValidation = errors.New("dados inválidos")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("registro já existe")
)

// Filter — фильтр списка. OwnerID — casoId, vitimaId или usuarioId
// в зависимости от сущности; пустое значение — без фильтра.
type Filter struct {
	OwnerID string
}

// Repository — единый интерфейс репозитория сущности T с патчем P.
type Repository[T any, P any] interface {
	// List возвращает коллекцию в порядке вставки (с учётом фильтра).
	List(ctx context.Context, f Filter) ([]T, error)
	// Get возвращает запись по ID или ErrNotFound.
	Get(ctx context.Context, id string) (T, error)
	// Create присваивает ID и временные метки, сохраняет и возвращает запись.
	Create(ctx context.Context, item T) (T, error)
	// Update применяет заданные поля патча; ErrNotFound, если записи нет.
	Update(ctx context.Context, id string, patch P) (T, error)
	// Delete удаляет запись; отсутствие записи — не ошибка.
	Delete(ctx context.Context, id string) error
}

// Descriptor описывает сущность для обобщённых реализаций.
type Descriptor[T any, P any] struct {
	// Entity — имя сущности для логов и метрик (caso, vitima, ...)
	Entity string
	// Collection — имя коллекции в хранилище
	Collection string
	// Resource — путь REST-ресурса (/casos)
	Resource string
	// OwnerParam — имя query-параметра фильтра (casoId); пусто — фильтра нет
	OwnerParam string

	ID    func(item *T) string
	SetID func(item *T, id string)
	// Owner возвращает значение поля, по которому работает Filter
	Owner func(item *T) string
	// PatchOwner возвращает новое значение ссылки из патча (nil — не меняется)
	PatchOwner func(patch P) *string
	// Apply переносит заданные поля патча
	Apply func(patch P, item *T)
	// OnCreate заполняет временные метки и значения по умолчанию
	OnCreate func(item *T, now time.Time)
	// OnUpdate обновляет метку изменения (может быть nil)
	OnUpdate func(item *T, now time.Time)
	// Validate проверяет запись перед сохранением (может быть nil)
	Validate func(item *T) error
}

// matches сообщает, проходит ли запись фильтр.
func (d Descriptor[T, P]) matches(item *T, f Filter) bool {
	if f.OwnerID == "" || d.Owner == nil {
		return true
	}
	return d.Owner(item) == f.OwnerID
}
