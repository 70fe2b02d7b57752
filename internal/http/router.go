// Package httpapi assembles the public HTTP surface. It stays thin: routing,
// middleware and health wiring only, with business logic behind the module
// handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	exporthandler "eudrgate/internal/export/handler"
	ingesthandler "eudrgate/internal/ingest/handler"
	"eudrgate/pkg/platform/httputil"
	"eudrgate/pkg/platform/middleware/requestmeta"
	"eudrgate/pkg/requestcontext"
)

// HealthCheck probes one dependency. A nil-safe name/err pair keeps the
// health payload self-describing.
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// NewRouter wires all public endpoints.
func NewRouter(logger *slog.Logger, ingestion *ingesthandler.Handler, exports *exporthandler.Handler, checks ...HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestmeta.Middleware)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		ingestion.Register(r)
		exports.Register(r)
	})

	r.Get("/healthz", handleHealth(checks))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func handleHealth(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for _, check := range checks {
			if err := check.Probe(ctx); err != nil {
				deps[check.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[check.Name] = "ok"
		}
		body := map[string]any{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(deps) > 0 {
			body["dependencies"] = deps
		}
		httputil.WriteJSON(w, status, body)
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"request_id", requestcontext.RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
