// metrics.go — Prometheus HTTP-метрики:
// of_http_requests_total, of_http_request_duration_seconds.
// Пути нормализуются, чтобы ID не раздували кардинальность.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "of_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "of_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// resources — коллекции REST API; /{resource}/{id} → /{resource}/{id}.
var resources = map[string]bool{
	"casos": true, "vitimas": true, "evidencias": true, "laudos": true,
	"odontologia": true, "relatorios": true, "usuarios": true,
}

// MetricsMiddleware собирает количество и длительность запросов.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(statusOf(ww))).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath заменяет ID ресурса на {id}; неизвестные пути → "other".
//
//	/casos/3f2a... → /casos/{id}
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics", "/dashboard", "/notificacoes",
		"/auth/login", "/auth/register", "/auth/logout":
		return path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if !resources[parts[0]] {
		return "other"
	}
	switch len(parts) {
	case 1:
		return "/" + parts[0]
	case 2:
		return "/" + parts[0] + "/{id}"
	case 3:
		if parts[0] == "usuarios" && parts[2] == "senha" {
			return "/usuarios/{id}/senha"
		}
		return "other"
	default:
		return "other"
	}
}
