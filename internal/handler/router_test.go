package handler_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/wa-assistant-go/internal/config"
	"github.com/boddenberg/wa-assistant-go/internal/domain"
	"github.com/boddenberg/wa-assistant-go/internal/handler"
	"github.com/boddenberg/wa-assistant-go/internal/infra/observability"
	"github.com/boddenberg/wa-assistant-go/internal/service"

	"go.uber.org/zap"
)

// --- Fakes wired behind a real dispatcher/processor pair ---

type fakeCompleter struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeCompleter) Complete(_ context.Context, userText string) (*domain.CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, userText)
	return &domain.CompletionResult{Text: "generated reply"}, nil
}

func (f *fakeCompleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

type fakeMessenger struct {
	mu     sync.Mutex
	texts  []string
	reads  []string
	toList []string
}

func (f *fakeMessenger) SendText(_ context.Context, to, body string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, body)
	f.toList = append(f.toList, to)
	return true
}

func (f *fakeMessenger) SendReadReceiptAndTyping(_ context.Context, _, messageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, messageID)
	return true
}

func (f *fakeMessenger) snapshot() (texts, toList, reads []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...),
		append([]string(nil), f.toList...),
		append([]string(nil), f.reads...)
}

type env struct {
	router    http.Handler
	completer *fakeCompleter
	messenger *fakeMessenger
}

func newEnv(cfg *config.Config) *env {
	completer := &fakeCompleter{}
	messenger := &fakeMessenger{}
	metrics := observability.NewMetrics()
	proc := service.NewProcessor(completer, messenger, metrics, zap.NewNop())
	dispatcher := service.NewDispatcher(proc, metrics, zap.NewNop())

	return &env{
		router:    handler.NewRouter(dispatcher, cfg, metrics, zap.NewNop()),
		completer: completer,
		messenger: messenger,
	}
}

func defaultConfig() *config.Config {
	return &config.Config{WebhookVerifyToken: "verify-secret"}
}

// waitFor polls until cond holds or the deadline passes. Webhook
// processing is fire-and-forget, so assertions on side effects poll.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

const sampleDelivery = `{
	"object": "whatsapp_business_account",
	"entry": [{"changes": [{"field": "messages", "value": {"messages": [
		{"from": "123", "id": "m1", "type": "text", "text": {"body": "hello"}}
	]}}]}]
}`

// --- Tests ---

func TestRoot_Liveness(t *testing.T) {
	e := newEnv(defaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"active"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestVerification_Success(t *testing.T) {
	e := newEnv(defaultConfig())

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=abc123", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "abc123" {
		t.Errorf("expected raw challenge, got %q", rec.Body.String())
	}
}

func TestVerification_Forbidden(t *testing.T) {
	e := newEnv(defaultConfig())

	paths := []string{
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=abc123",
		"/webhook?hub.mode=other&hub.verify_token=verify-secret&hub.challenge=abc123",
		"/webhook",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", path, rec.Code)
		}
	}
}

func TestWebhook_MalformedJSON(t *testing.T) {
	e := newEnv(defaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	// No dispatch may happen for a body that never parsed.
	time.Sleep(50 * time.Millisecond)
	if e.completer.count() != 0 {
		t.Error("expected zero completion requests after parse failure")
	}
}

func TestWebhook_TextMessageFlow(t *testing.T) {
	e := newEnv(defaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sampleDelivery))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"success"`) {
		t.Errorf("unexpected ack body: %s", rec.Body.String())
	}

	waitFor(t, func() bool {
		texts, _, _ := e.messenger.snapshot()
		return len(texts) == 1
	})

	texts, toList, reads := e.messenger.snapshot()
	if texts[0] != "generated reply" {
		t.Errorf("expected generated reply, got %q", texts[0])
	}
	if toList[0] != "123" {
		t.Errorf("expected reply to '123', got %q", toList[0])
	}
	if len(reads) != 1 || reads[0] != "m1" {
		t.Errorf("expected read receipt for 'm1', got %v", reads)
	}
	if e.completer.count() != 1 {
		t.Errorf("expected one completion request, got %d", e.completer.count())
	}
}

func TestWebhook_ImageMessageFallback(t *testing.T) {
	e := newEnv(defaultConfig())

	body := strings.Replace(sampleDelivery, `"type": "text", "text": {"body": "hello"}`, `"type": "image"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	waitFor(t, func() bool {
		texts, _, _ := e.messenger.snapshot()
		return len(texts) == 1
	})

	texts, _, _ := e.messenger.snapshot()
	if texts[0] != service.NonTextFallback {
		t.Errorf("expected non-text fallback, got %q", texts[0])
	}
	if e.completer.count() != 0 {
		t.Errorf("expected zero completion requests, got %d", e.completer.count())
	}
}

func TestWebhook_SignatureValidation(t *testing.T) {
	cfg := defaultConfig()
	cfg.MetaAppSecret = "app-secret"
	e := newEnv(cfg)

	sign := func(body string) string {
		mac := hmac.New(sha256.New, []byte("app-secret"))
		mac.Write([]byte(body))
		return "sha256=" + hex.EncodeToString(mac.Sum(nil))
	}

	// Valid signature passes.
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sampleDelivery))
	req.Header.Set("X-Hub-Signature-256", sign(sampleDelivery))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid signature, got %d", rec.Code)
	}

	// Wrong signature rejected before any dispatch.
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sampleDelivery))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad signature, got %d", rec.Code)
	}

	// Missing header rejected too.
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(sampleDelivery))
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without signature, got %d", rec.Code)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	e := newEnv(defaultConfig())

	for _, path := range []string{"/healthz", "/readyz", "/ping", "/metrics", "/v1/metrics/bot"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
