package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/wa-assistant-go/internal/domain"
	"github.com/boddenberg/wa-assistant-go/internal/infra/observability"
	"github.com/boddenberg/wa-assistant-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// Fixed user-visible fallback replies. The user always gets one of
// these or a generated reply, never silence (unless the sender is unknown).
const (
	NonTextFallback = "I can only process text messages at the moment. Please send a text message!"
	ErrorFallback   = "Sorry, I encountered an error while processing your message. Please try again."
)

// Processor handles one inbound message end to end: read receipt,
// completion, reply. Failures never escape Process; they end as a
// fallback reply plus a log entry.
type Processor struct {
	completer port.Completer
	messenger port.Messenger
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewProcessor creates the message processor with all dependencies injected.
func NewProcessor(completer port.Completer, messenger port.Messenger, metrics *observability.Metrics, logger *zap.Logger) *Processor {
	return &Processor{
		completer: completer,
		messenger: messenger,
		metrics:   metrics,
		logger:    logger,
	}
}

// Process handles a single inbound message. It has no return value:
// outcomes are outbound sends, metrics, and logs.
func (p *Processor) Process(ctx context.Context, msg domain.Message) {
	ctx, span := tracer.Start(ctx, "Processor.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.type", msg.Type),
	)

	if msg.From == "" {
		// No sender identity, nowhere to reply to.
		p.logger.Warn("message without sender, skipping", zap.String("message_id", msg.ID))
		p.metrics.IncrMessage(observability.MessageStatusSkipped)
		return
	}

	if msg.Type != domain.MessageTypeText {
		p.logger.Info("non-text message, sending fallback",
			zap.String("from", msg.From),
			zap.String("type", msg.Type),
		)
		p.messenger.SendText(ctx, msg.From, NonTextFallback)
		p.metrics.IncrMessage(observability.MessageStatusNonText)
		return
	}

	var userText string
	if msg.Text != nil {
		userText = strings.TrimSpace(msg.Text.Body)
	}
	// Empty bodies are still forwarded; the upstream model answers them
	// like any other message.

	p.logger.Info("processing text message",
		zap.String("from", msg.From),
		zap.String("message_id", msg.ID),
		zap.Int("text_len", len(userText)),
	)

	// Best-effort: mark read and show typing before the completion.
	// The result is logged inside the messenger and deliberately ignored.
	if msg.ID != "" {
		_ = p.messenger.SendReadReceiptAndTyping(ctx, msg.From, msg.ID)
	}

	start := time.Now()
	result, err := p.completer.Complete(ctx, userText)
	p.metrics.RecordCompletionDuration(time.Since(start))

	if err != nil {
		p.logger.Error("completion failed, sending error fallback",
			zap.String("from", msg.From),
			zap.Error(err),
		)
		p.metrics.IncrExternalError("completion")
		p.messenger.SendText(ctx, msg.From, ErrorFallback)
		p.metrics.IncrMessage(observability.MessageStatusError)
		return
	}

	p.metrics.RecordTokens(result.Usage)

	if !p.messenger.SendText(ctx, msg.From, result.Text) {
		p.logger.Error("reply send failed", zap.String("from", msg.From))
		p.metrics.IncrExternalError("whatsapp")
		p.metrics.IncrMessage(observability.MessageStatusError)
		return
	}

	p.logger.Info("conversation completed", zap.String("from", msg.From))
	p.metrics.IncrMessage(observability.MessageStatusSuccess)
}
