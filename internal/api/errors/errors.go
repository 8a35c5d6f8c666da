// Пакет errors — ответы с ошибками в едином формате:
// {"error": {"code": "...", "message": "..."}}.
// Поле message показывается пользователю удалённым клиентом.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/bigkaa/odontoforense/internal/repository"
	"github.com/bigkaa/odontoforense/internal/service"
)

// Коды ошибок.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// Conflict — 409 конфликт.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

// FromError выбирает статус по ошибке репозитория или сервиса.
// Возвращает true, если ошибка была внутренней (500) — её стоит залогировать.
func FromError(w http.ResponseWriter, err error) bool {
	switch {
	case stderrors.Is(err, repository.ErrValidation), stderrors.Is(err, repository.ErrReferenceNotFound):
		ValidationError(w, err.Error())
	case stderrors.Is(err, repository.ErrNotFound):
		NotFound(w, repository.ErrNotFound.Error())
	case stderrors.Is(err, repository.ErrConflict):
		Conflict(w, err.Error())
	case stderrors.Is(err, service.ErrInvalidCredentials), stderrors.Is(err, service.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case stderrors.Is(err, service.ErrInactiveUser), stderrors.Is(err, service.ErrAdminRegistration),
		stderrors.Is(err, service.ErrLocalAuthDisabled):
		Forbidden(w, err.Error())
	case stderrors.Is(err, context.Canceled):
		// Клиент ушёл — ответ уже никто не прочитает
		WriteError(w, 499, CodeInternalError, "Operação cancelada")
	default:
		InternalError(w, repository.UserMessage(err))
		return true
	}
	return false
}
