package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults,
// read once at startup and treated as immutable afterwards.
type Config struct {
	// Server
	Port     int
	LogLevel string
	Debug    bool

	// OpenAI-compatible completion API
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// WhatsApp Cloud API
	WhatsAppAccessToken       string
	WhatsAppPhoneNumberID     string
	WhatsAppBusinessAccountID string
	WhatsAppAPIURL            string

	// Meta app (signature validation; empty disables the check)
	MetaAppID     string
	MetaAppSecret string

	// Administrator contact (available to operators, unused by core logic)
	AdminPhoneNumber string

	// Webhook handshake
	WebhookVerifyToken string

	// HTTP client
	HTTPTimeout       time.Duration
	CompletionTimeout time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 5000),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Debug:    getEnvBool("DEBUG", false),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		WhatsAppAccessToken:       getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID:     getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppBusinessAccountID: getEnv("WHATSAPP_BUSINESS_ACCOUNT_ID", ""),
		WhatsAppAPIURL:            getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v22.0"),

		MetaAppID:     getEnv("META_APP_ID", ""),
		MetaAppSecret: getEnv("META_APP_SECRET", ""),

		AdminPhoneNumber: getEnv("ADMIN_PHONE_NUMBER", ""),

		WebhookVerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),

		HTTPTimeout:       getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		CompletionTimeout: getEnvDuration("COMPLETION_TIMEOUT", 15*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
