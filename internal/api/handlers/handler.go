// handler.go — основной обработчик API: объединяет ресурсы сущностей,
// сводку, аутентификацию, уведомления и health endpoints.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/odontoforense/internal/api/middleware"
	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/notify"
	"github.com/bigkaa/odontoforense/internal/repository"
	"github.com/bigkaa/odontoforense/internal/service"
)

// mountable — ресурс, умеющий зарегистрировать свои маршруты.
type mountable interface {
	Mount(r chi.Router, guard func(http.Handler) http.Handler, extra ...func(chi.Router))
}

// APIHandler — основной обработчик API.
type APIHandler struct {
	health        *HealthHandler
	resources     []mountable
	users         mountable
	dashboard     service.Summarizer
	auth          *service.AuthService
	notifications *notify.Recorder
	logger        *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// notifications может быть nil — тогда /notificacoes возвращает пустой список.
func NewAPIHandler(
	health *HealthHandler,
	set *repository.Set,
	dashboard service.Summarizer,
	auth *service.AuthService,
	notifications *notify.Recorder,
	logger *slog.Logger,
) *APIHandler {
	// Автор дела и отчёта по умолчанию — текущий пользователь
	caseAuthor := func(r *http.Request, c *model.Case) {
		if c.CreatorUserID == "" {
			c.CreatorUserID = middleware.SubjectFromContext(r.Context())
		}
	}
	reportAuthor := func(r *http.Request, a *model.AnalyticsReport) {
		if a.CreatorUserID == "" {
			a.CreatorUserID = middleware.SubjectFromContext(r.Context())
		}
	}

	return &APIHandler{
		health: health,
		resources: []mountable{
			NewResource(set.Cases, repository.CaseDescriptor, caseAuthor, logger),
			NewResource(set.Victims, repository.VictimDescriptor, nil, logger),
			NewResource(set.Evidence, repository.EvidenceDescriptor, nil, logger),
			NewResource(set.Reports, repository.ReportDescriptor, nil, logger),
			NewResource(set.Dental, repository.DentalDescriptor, nil, logger),
			NewResource(set.Analytics, repository.AnalyticsDescriptor, reportAuthor, logger),
		},
		users:         NewResource(auth.Users(), repository.UserDescriptor, nil, logger),
		dashboard:     dashboard,
		auth:          auth,
		notifications: notifications,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// Routes регистрирует все маршруты API.
// JWT middleware подключается снаружи (server) с исключениями для
// /health, /metrics, /auth/login, /auth/register.
func (h *APIHandler) Routes(r chi.Router) {
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)

	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/logout", h.Logout)

	r.Get("/dashboard", h.Dashboard)
	// Уведомления содержат действия всех пользователей
	r.With(middleware.RequireRole(model.RoleAdmin)).Get("/notificacoes", h.Notifications)

	for _, res := range h.resources {
		res.Mount(r, middleware.RequireWrite())
	}
	h.users.Mount(r, middleware.RequireRoleForWrite(model.RoleAdmin), func(r chi.Router) {
		r.Put("/{id}/senha", h.SetPassword)
	})
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
