// logging.go — журнал HTTP-запросов.
// Каждый ответ получает X-Request-ID (входящий сохраняется), а запись
// журнала — автора запроса из JWT, если он аутентифицирован.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/bigkaa/odontoforense/internal/domain/model"
)

// HeaderRequestID — заголовок идентификатора запроса.
const HeaderRequestID = "X-Request-ID"

const contextKeyActor contextKey = "request_actor"

// actor — автор запроса, его заполняет JWTAuth.Middleware.
type actor struct {
	userID string
	role   model.Role
}

func noteActor(ctx context.Context, claims *AuthClaims) {
	if a, ok := ctx.Value(contextKeyActor).(*actor); ok {
		a.userID = claims.Subject
		a.role = claims.Role
	}
}

// RequestLogger пишет одну запись на запрос.
// Подключается раньше JWT middleware, иначе автор не попадёт в журнал.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, requestID)

			who := &actor{}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), contextKeyActor, who)))

			status := statusOf(ww)
			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int("bytes", ww.BytesWritten()),
			}
			if who.userID != "" {
				attrs = append(attrs, slog.String("user_id", who.userID), slog.String("role", string(who.role)))
			}
			logger.LogAttrs(r.Context(), requestLevel(r.URL.Path, status), "Запрос обработан", attrs...)
		})
	}
}

// requestLevel: 5xx — ERROR, 4xx — WARN, служебные endpoints — DEBUG.
func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case path == "/metrics", strings.HasPrefix(path, "/health/"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// statusOf — код ответа; обработчик, ничего не записавший, отдал 200.
func statusOf(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
