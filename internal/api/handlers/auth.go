// auth.go — обработчики /auth/login, /auth/register, /auth/logout
// и смены пароля PUT /usuarios/{id}/senha.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/odontoforense/internal/api/errors"
	"github.com/bigkaa/odontoforense/internal/api/middleware"
	"github.com/bigkaa/odontoforense/internal/service"
)

// loginRequest — тело POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// Login — вход по e-mail и паролю; возвращает {token, usuario, expiraEm}.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		apierrors.ValidationError(w, "E-mail e senha são obrigatórios")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Register — регистрация пользователя; возвращает созданного пользователя.
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Logout — отзыв текущего токена.
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Token de acesso ausente")
		return
	}
	h.auth.Revoke(claims.TokenID)
	h.logger.Info("Выход выполнен", slog.String("user_id", claims.Subject))
	w.WriteHeader(http.StatusNoContent)
}

// passwordRequest — тело PUT /usuarios/{id}/senha.
type passwordRequest struct {
	Password string `json:"senha"`
}

// SetPassword — администратор задаёт пароль пользователю.
func (h *APIHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.auth.SetPassword(r.Context(), chi.URLParam(r, "id"), req.Password); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierrors.FromError(w, err) {
		h.logger.Error("Ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}
