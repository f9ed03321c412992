package service

import (
	"context"

	"github.com/boddenberg/wa-assistant-go/internal/domain"
	"github.com/boddenberg/wa-assistant-go/internal/infra/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher flattens webhook deliveries into individual messages and
// fans them out to the processor.
type Dispatcher struct {
	processor *Processor
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDispatcher creates the webhook dispatcher.
func NewDispatcher(processor *Processor, metrics *observability.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		processor: processor,
		metrics:   metrics,
		logger:    logger,
	}
}

// Dispatch processes one webhook delivery. Messages across all
// entries/changes run concurrently; each one fails in isolation, so a
// panic or error in one message never cancels its siblings. Dispatch
// waits for all of them — callers that must not block (the HTTP layer)
// invoke it on their own goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) {
	if event.Object != domain.WebhookObject {
		d.logger.Warn("ignoring non-WhatsApp webhook", zap.String("object", event.Object))
		d.metrics.IncrWebhookDelivery("rejected_object")
		return
	}

	messages := collectMessages(event)
	if len(messages) == 0 {
		d.metrics.IncrWebhookDelivery("empty")
		return
	}

	d.metrics.IncrWebhookDelivery("accepted")

	var g errgroup.Group
	for _, msg := range messages {
		msg := msg
		g.Go(func() error {
			// Per-message log correlation id; the webhook request id is
			// gone by the time these goroutines run.
			procID := uuid.NewString()
			logger := d.logger.With(zap.String("processing_id", procID))

			defer func() {
				if r := recover(); r != nil {
					logger.Error("message processing panicked",
						zap.Any("panic", r),
						zap.String("message_id", msg.ID),
					)
				}
			}()

			logger.Debug("message dispatched",
				zap.String("message_id", msg.ID),
				zap.String("from", msg.From),
			)
			d.processor.Process(ctx, msg)
			return nil // failures are absorbed per message, never propagated
		})
	}

	_ = g.Wait()
	d.logger.Info("webhook delivery processed", zap.Int("messages", len(messages)))
}

// collectMessages flattens entry[*].changes[*].value.messages[*] in
// encounter order, taking only "messages" field changes.
func collectMessages(event *domain.WebhookEvent) []domain.Message {
	var messages []domain.Message
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			messages = append(messages, change.Value.Messages...)
		}
	}
	return messages
}
