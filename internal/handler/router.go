package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/wa-assistant-go/internal/config"
	"github.com/boddenberg/wa-assistant-go/internal/domain"
	"github.com/boddenberg/wa-assistant-go/internal/infra/observability"
	"github.com/boddenberg/wa-assistant-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Version reported on the liveness endpoint.
const Version = "1.0.0"

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(dispatcher *service.Dispatcher, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Liveness ---
	r.Get("/", rootHandler())

	// --- Webhook (handshake + deliveries) ---
	r.Get("/webhook", verificationHandler(cfg, logger))
	r.Post("/webhook", webhookHandler(dispatcher, cfg, metrics, logger))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/v1/metrics/bot", botMetricsHandler(metrics))

	return r
}

// rootHandler reports liveness; no side effects.
func rootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.StatusResponse{
			Status:  "active",
			Message: "WhatsApp AI Bot is running!",
			Version: Version,
		})
	}
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, domain.HealthReport{
			Status: "healthy",
			Services: []domain.ServiceHealth{
				{Name: "wa-assistant", Status: "healthy", LastChecked: now},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func botMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetBotSnapshot())
	}
}
