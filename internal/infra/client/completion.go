package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/wa-assistant-go/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// systemPrompt is the fixed instruction sent with every completion.
// No prior turns are attached: each message is a fresh single-turn chat.
const systemPrompt = "You are a helpful AI assistant. Keep responses concise and helpful. " +
	"Respond in the same language as the user's message."

const (
	completionMaxTokens   = 300
	completionTemperature = 0.7
)

// CompletionClient calls an OpenAI-compatible chat-completions API.
type CompletionClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	cb         *gobreaker.CircuitBreaker
}

// NewCompletionClient creates a new CompletionClient.
// timeout is the hard per-call budget; it is shorter than the overall
// HTTP client timeout so a slow upstream fails fast into the fallback path.
func NewCompletionClient(httpClient *http.Client, baseURL, apiKey, model string, timeout time.Duration, cb *gobreaker.CircuitBreaker) *CompletionClient {
	return &CompletionClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		cb:         cb,
	}
}

// Complete requests a single-turn completion for the user's text and
// returns the trimmed text of the first choice. All failure modes
// (transport, timeout, non-200, empty choices) surface as *domain.ErrCompletion.
func (c *CompletionClient) Complete(ctx context.Context, userText string) (*domain.CompletionResult, error) {
	ctx, span := tracer.Start(ctx, "CompletionClient.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.cb.Execute(func() (any, error) {
		return c.doComplete(ctx, userText)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCompletion{Reason: "circuit open", Err: err}
		}
		var ce *domain.ErrCompletion
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &domain.ErrCompletion{Reason: "request", Err: err}
	}

	return result.(*domain.CompletionResult), nil
}

func (c *CompletionClient) doComplete(ctx context.Context, userText string) (*domain.CompletionResult, error) {
	reqBody := domain.ChatCompletionRequest{
		Model: c.model,
		Messages: []domain.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
		Stream:      false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &domain.ErrCompletion{Reason: "marshal request", Err: err}
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.ErrCompletion{Reason: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ErrCompletion{Reason: "transport", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ErrCompletion{Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var completion domain.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, &domain.ErrCompletion{Reason: "decode response", Err: err}
	}

	if len(completion.Choices) == 0 {
		return nil, &domain.ErrCompletion{Reason: "no choices in response"}
	}

	return &domain.CompletionResult{
		Text:  strings.TrimSpace(completion.Choices[0].Message.Content),
		Usage: completion.Usage,
	}, nil
}
