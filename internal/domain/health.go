package domain

// StatusResponse is the GET / liveness payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// ServiceHealth reports the health of one dependency on /healthz.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LastChecked string `json:"last_checked"`
}

// HealthReport is the overall /healthz payload.
type HealthReport struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// BotMetricsSnapshot is the GET /v1/metrics/bot payload, assembled
// from the Prometheus counters.
type BotMetricsSnapshot struct {
	MessagesProcessed    float64 `json:"messages_processed"`
	MessagesFailed       float64 `json:"messages_failed"`
	MessagesNonText      float64 `json:"messages_non_text"`
	WebhookDeliveries    float64 `json:"webhook_deliveries"`
	PromptTokens         float64 `json:"prompt_tokens"`
	CompletionTokens     float64 `json:"completion_tokens"`
	AvgCompletionSeconds float64 `json:"avg_completion_seconds"`
}
