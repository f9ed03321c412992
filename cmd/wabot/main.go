package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/wa-assistant-go/internal/config"
	"github.com/boddenberg/wa-assistant-go/internal/handler"
	"github.com/boddenberg/wa-assistant-go/internal/infra/client"
	"github.com/boddenberg/wa-assistant-go/internal/infra/observability"
	"github.com/boddenberg/wa-assistant-go/internal/infra/resilience"
	"github.com/boddenberg/wa-assistant-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logLevel := cfg.LogLevel
	if cfg.Debug {
		logLevel = "debug"
	}
	logger := observability.NewLogger(logLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", logLevel),
		zap.String("model", cfg.OpenAIModel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("completion_timeout", cfg.CompletionTimeout),
		zap.Bool("signature_check", cfg.MetaAppSecret != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "wa-assistant")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Clients ---
	// One pooled transport for all outbound calls; the completion
	// client layers its own shorter deadline on top.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	completionCB := resilience.NewCircuitBreaker("completion-api")
	completer := client.NewCompletionClient(
		httpClient,
		cfg.OpenAIBaseURL,
		cfg.OpenAIAPIKey,
		cfg.OpenAIModel,
		cfg.CompletionTimeout,
		completionCB,
	)

	messenger := client.NewWhatsAppClient(
		httpClient,
		cfg.WhatsAppAPIURL,
		cfg.WhatsAppAccessToken,
		cfg.WhatsAppPhoneNumberID,
		logger,
	)

	// --- Services ---
	processor := service.NewProcessor(completer, messenger, metrics, logger)
	dispatcher := service.NewDispatcher(processor, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(dispatcher, cfg, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
