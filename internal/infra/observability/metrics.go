package observability

import (
	"time"

	"github.com/boddenberg/wa-assistant-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Message outcome labels for the messages_total counter.
const (
	MessageStatusSuccess = "success"
	MessageStatusError   = "error"
	MessageStatusNonText = "non_text"
	MessageStatusSkipped = "skipped"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	messagesTotal      *prometheus.CounterVec
	webhookDeliveries  *prometheus.CounterVec
	completionDuration prometheus.Histogram
	externalErrors     *prometheus.CounterVec
	tokensUsed         *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_messages_total",
				Help: "Total inbound messages processed, by outcome.",
			},
			[]string{"status"},
		),
		webhookDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_webhook_deliveries_total",
				Help: "Total webhook deliveries received, by result.",
			},
			[]string{"result"},
		),
		completionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wabot_completion_duration_seconds",
				Help:    "Duration of chat-completion calls.",
				Buckets: prometheus.DefBuckets,
			},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
	}
}

// IncrMessage increments the message counter with an outcome label.
func (m *Metrics) IncrMessage(status string) {
	m.messagesTotal.WithLabelValues(status).Inc()
}

// IncrWebhookDelivery increments the delivery counter (accepted, rejected_object, parse_error...).
func (m *Metrics) IncrWebhookDelivery(result string) {
	m.webhookDeliveries.WithLabelValues(result).Inc()
}

// RecordCompletionDuration records the duration of one completion call.
func (m *Metrics) RecordCompletionDuration(d time.Duration) {
	m.completionDuration.Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(usage domain.TokenUsage) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	m.tokensUsed.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
}

// GetBotSnapshot returns a snapshot of bot metrics suitable for the
// GET /v1/metrics/bot endpoint.
func (m *Metrics) GetBotSnapshot() *domain.BotMetricsSnapshot {
	// Prometheus counters expose cumulative values.
	success := getCounterValue(m.messagesTotal, MessageStatusSuccess)
	failed := getCounterValue(m.messagesTotal, MessageStatusError)
	nonText := getCounterValue(m.messagesTotal, MessageStatusNonText)
	deliveries := getCounterValue(m.webhookDeliveries, "accepted")

	sum, count := getHistogramValue(m.completionDuration)
	avg := float64(0)
	if count > 0 {
		avg = sum / float64(count)
	}

	return &domain.BotMetricsSnapshot{
		MessagesProcessed:    success,
		MessagesFailed:       failed,
		MessagesNonText:      nonText,
		WebhookDeliveries:    deliveries,
		PromptTokens:         getCounterValue(m.tokensUsed, "prompt"),
		CompletionTokens:     getCounterValue(m.tokensUsed, "completion"),
		AvgCompletionSeconds: avg,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// getHistogramValue extracts sample sum and count from a histogram.
func getHistogramValue(h prometheus.Histogram) (sum float64, count uint64) {
	m := &dto.Metric{}
	if err := h.(prometheus.Metric).Write(m); err != nil {
		return 0, 0
	}
	if m.Histogram == nil {
		return 0, 0
	}
	if m.Histogram.SampleSum != nil {
		sum = *m.Histogram.SampleSum
	}
	if m.Histogram.SampleCount != nil {
		count = *m.Histogram.SampleCount
	}
	return sum, count
}
