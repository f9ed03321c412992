package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/wa-assistant-go/internal/domain"

	"go.uber.org/zap"
)

// WhatsAppClient sends messages through the WhatsApp Cloud API
// (Graph API messages endpoint). Both operations are best-effort:
// any failure is logged and reported as false, never as an error.
type WhatsAppClient struct {
	httpClient    *http.Client
	baseURL       string
	accessToken   string
	phoneNumberID string
	logger        *zap.Logger
}

// NewWhatsAppClient creates a new WhatsAppClient.
func NewWhatsAppClient(httpClient *http.Client, baseURL, accessToken, phoneNumberID string, logger *zap.Logger) *WhatsAppClient {
	return &WhatsAppClient{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(baseURL, "/"),
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		logger:        logger,
	}
}

// SendText sends a plain text message. Returns true only on HTTP 200.
func (c *WhatsAppClient) SendText(ctx context.Context, to, body string) bool {
	payload := domain.TextMessageRequest{
		MessagingProduct: domain.MessagingProduct,
		To:               to,
		Type:             domain.MessageTypeText,
		Text:             domain.TextContent{Body: body},
	}

	ok := c.post(ctx, payload)
	if ok {
		c.logger.Info("message sent", zap.String("to", to))
	}
	return ok
}

// SendReadReceiptAndTyping marks a message as read and shows the
// typing indicator in one combined call. Returns true only on HTTP 200.
func (c *WhatsAppClient) SendReadReceiptAndTyping(ctx context.Context, to, messageID string) bool {
	payload := domain.ReadReceiptRequest{
		MessagingProduct: domain.MessagingProduct,
		Status:           "read",
		MessageID:        messageID,
		TypingIndicator:  domain.TypingIndicator{Type: domain.MessageTypeText},
	}

	ok := c.post(ctx, payload)
	if ok {
		c.logger.Info("read receipt and typing indicator sent",
			zap.String("to", to),
			zap.String("message_id", messageID),
		)
	}
	return ok
}

// post issues one messages-endpoint call and converts every failure
// to false so callers never have to handle an error.
func (c *WhatsAppClient) post(ctx context.Context, payload any) bool {
	ctx, span := tracer.Start(ctx, "WhatsAppClient.post")
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("whatsapp payload marshal failed", zap.Error(err))
		return false
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("whatsapp request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("whatsapp request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Graph API error bodies carry the actual cause; keep them short.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("whatsapp API returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return false
	}

	return true
}
