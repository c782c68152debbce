package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"udyam/internal/platform/metrics"
	"udyam/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// NewRouter wires the middleware chain and all public endpoints.
func NewRouter(h *Handler, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(m))

	h.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
