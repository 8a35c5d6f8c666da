package repository

import (
	"context"
	"errors"

	"github.com/bigkaa/odontoforense/internal/apiclient"
	"github.com/bigkaa/odontoforense/internal/notify"
)

// Messages — заголовки уведомлений для сущности.
type Messages struct {
	Created      string
	Updated      string
	Deleted      string
	CreateFailed string
	UpdateFailed string
	DeleteFailed string
}

// entityMessages — заголовки по имени сущности (Descriptor.Entity).
var entityMessages = map[string]Messages{
	"caso": {
		Created: "Caso criado", Updated: "Caso atualizado", Deleted: "Caso removido",
		CreateFailed: "Erro ao criar caso", UpdateFailed: "Erro ao atualizar caso", DeleteFailed: "Erro ao remover caso",
	},
	"vitima": {
		Created: "Vítima cadastrada", Updated: "Vítima atualizada", Deleted: "Vítima removida",
		CreateFailed: "Erro ao cadastrar vítima", UpdateFailed: "Erro ao atualizar vítima", DeleteFailed: "Erro ao remover vítima",
	},
	"evidencia": {
		Created: "Evidência registrada", Updated: "Evidência atualizada", Deleted: "Evidência removida",
		CreateFailed: "Erro ao registrar evidência", UpdateFailed: "Erro ao atualizar evidência", DeleteFailed: "Erro ao remover evidência",
	},
	"laudo": {
		Created: "Laudo criado", Updated: "Laudo atualizado", Deleted: "Laudo removido",
		CreateFailed: "Erro ao criar laudo", UpdateFailed: "Erro ao atualizar laudo", DeleteFailed: "Erro ao remover laudo",
	},
	"odontologia": {
		Created: "Registro odontológico criado", Updated: "Registro odontológico atualizado", Deleted: "Registro odontológico removido",
		CreateFailed: "Erro ao criar registro odontológico", UpdateFailed: "Erro ao atualizar registro odontológico", DeleteFailed: "Erro ao remover registro odontológico",
	},
	"relatorio": {
		Created: "Relatório gerado", Updated: "Relatório atualizado", Deleted: "Relatório removido",
		CreateFailed: "Erro ao gerar relatório", UpdateFailed: "Erro ao atualizar relatório", DeleteFailed: "Erro ao remover relatório",
	},
	"usuario": {
		Created: "Usuário criado", Updated: "Usuário atualizado", Deleted: "Usuário removido",
		CreateFailed: "Erro ao criar usuário", UpdateFailed: "Erro ao atualizar usuário", DeleteFailed: "Erro ao remover usuário",
	},
}

// MessagesFor возвращает заголовки для сущности (общие, если не заданы).
func MessagesFor(entity string) Messages {
	if m, ok := entityMessages[entity]; ok {
		return m
	}
	return Messages{
		Created: "Registro criado", Updated: "Registro atualizado", Deleted: "Registro removido",
		CreateFailed: "Erro ao criar registro", UpdateFailed: "Erro ao atualizar registro", DeleteFailed: "Erro ao remover registro",
	}
}

// UserMessage возвращает описание ошибки для пользователя:
// сообщение сервера для ошибок API, текст нарушения для ErrValidation,
// текст сентинела для остальных известных ошибок.
func UserMessage(err error) string {
	var re *apiclient.RemoteError
	switch {
	case errors.As(err, &re):
		return re.Message
	case errors.Is(err, ErrValidation), errors.Is(err, ErrReferenceNotFound):
		return err.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrStorage):
		return ErrStorage.Error()
	case errors.Is(err, ErrConflict):
		return ErrConflict.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Operação cancelada"
	default:
		return apiclient.GenericMessage
	}
}

// Notifying — декоратор, отправляющий уведомление после каждой
// изменяющей операции (успех — default, ошибка — destructive).
type Notifying[T any, P any] struct {
	next Repository[T, P]
	sink notify.Notifier
	msgs Messages
}

// NewNotifying оборачивает репозиторий.
func NewNotifying[T any, P any](next Repository[T, P], sink notify.Notifier, msgs Messages) *Notifying[T, P] {
	return &Notifying[T, P]{next: next, sink: sink, msgs: msgs}
}

// List не уведомляет.
func (n *Notifying[T, P]) List(ctx context.Context, f Filter) ([]T, error) {
	return n.next.List(ctx, f)
}

// Get не уведомляет.
func (n *Notifying[T, P]) Get(ctx context.Context, id string) (T, error) {
	return n.next.Get(ctx, id)
}

// Create уведомляет о результате создания.
func (n *Notifying[T, P]) Create(ctx context.Context, item T) (T, error) {
	created, err := n.next.Create(ctx, item)
	n.report(err, n.msgs.Created, "Registro salvo com sucesso.", n.msgs.CreateFailed)
	return created, err
}

// Update уведомляет о результате изменения.
func (n *Notifying[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	updated, err := n.next.Update(ctx, id, patch)
	n.report(err, n.msgs.Updated, "Alterações salvas com sucesso.", n.msgs.UpdateFailed)
	return updated, err
}

// Delete уведомляет о результате удаления.
func (n *Notifying[T, P]) Delete(ctx context.Context, id string) error {
	err := n.next.Delete(ctx, id)
	n.report(err, n.msgs.Deleted, "Registro removido com sucesso.", n.msgs.DeleteFailed)
	return err
}

func (n *Notifying[T, P]) report(err error, okTitle, okDesc, failTitle string) {
	if err != nil {
		n.sink.Notify(notify.Failure(failTitle, UserMessage(err)))
		return
	}
	n.sink.Notify(notify.Success(okTitle, okDesc))
}
