package resilience_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/wa-assistant-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	result, err := cb.Execute(func() (any, error) {
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.(string) != "ok" {
		t.Errorf("expected 'ok', got %v", result)
	}
}

func TestCircuitBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (any, error) {
			return nil, errors.New("upstream down")
		})
	}

	if !resilience.IsOpen(cb) {
		t.Fatalf("expected breaker open, state is %v", cb.State())
	}

	_, err := cb.Execute(func() (any, error) {
		t.Fatal("call must not reach upstream while open")
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
}

func TestCircuitBreaker_StaysClosedUnderMixedLoad(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")

	// Below the 60% failure ratio threshold.
	for i := 0; i < 10; i++ {
		_, _ = cb.Execute(func() (any, error) {
			if i%2 == 0 {
				return nil, errors.New("flaky")
			}
			return "ok", nil
		})
	}

	if resilience.IsOpen(cb) {
		t.Fatal("breaker must stay closed at 50% failure ratio")
	}
}
