package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/boddenberg/wa-assistant-go/internal/config"
	"github.com/boddenberg/wa-assistant-go/internal/domain"
	"github.com/boddenberg/wa-assistant-go/internal/infra/observability"
	"github.com/boddenberg/wa-assistant-go/internal/service"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// verificationHandler serves the Meta subscription handshake:
// GET /webhook?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func verificationHandler(cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /webhook")
		defer span.End()

		q := r.URL.Query()
		mode := q.Get("hub.mode")
		token := q.Get("hub.verify_token")
		challenge := q.Get("hub.challenge")

		echo, ok := service.VerifyWebhook(mode, token, challenge, cfg.WebhookVerifyToken, logger)
		if !ok {
			writeError(w, http.StatusForbidden, "verification failed")
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(echo))
	}
}

// webhookHandler serves POST /webhook deliveries. It acknowledges with
// 200 as soon as the body parses; processing happens on a detached
// goroutine so Meta's delivery timeout never depends on the upstreams.
func webhookHandler(dispatcher *service.Dispatcher, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /webhook")
		defer span.End()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("webhook body read failed", zap.Error(err))
			metrics.IncrWebhookDelivery("parse_error")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		// Signature validation only runs when an app secret is configured.
		if cfg.MetaAppSecret != "" {
			if !validSignature(body, r.Header.Get("X-Hub-Signature-256"), cfg.MetaAppSecret) {
				logger.Warn("invalid webhook signature")
				metrics.IncrWebhookDelivery("bad_signature")
				writeError(w, http.StatusUnauthorized, "invalid signature")
				return
			}
		}

		var event domain.WebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			logger.Error("webhook body parse failed", zap.Error(err))
			metrics.IncrWebhookDelivery("parse_error")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if cfg.Debug {
			logger.Debug("webhook received", zap.ByteString("body", body))
		}

		// Fire and forget: keep the trace context but drop the request's
		// cancellation, which fires as soon as this handler returns.
		dispatchCtx := context.WithoutCancel(ctx)
		go dispatcher.Dispatch(dispatchCtx, &event)

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
