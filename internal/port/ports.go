// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/wa-assistant-go/internal/domain"
)

// Completer requests a single-turn chat completion for the user's text.
type Completer interface {
	Complete(ctx context.Context, userText string) (*domain.CompletionResult, error)
}

// Messenger sends messages and notifications to the chat platform.
// Both operations are best-effort: they report success as a boolean
// and never return an error to the caller.
type Messenger interface {
	SendText(ctx context.Context, to, body string) bool
	SendReadReceiptAndTyping(ctx context.Context, to, messageID string) bool
}
