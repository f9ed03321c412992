package domain

import "fmt"

// Error types for consistent error handling across the gateway.

// ErrCompletion indicates the chat-completion call failed: transport
// error, timeout, non-200 status, or an unexpected response shape.
type ErrCompletion struct {
	Reason string
	Err    error
}

func (e *ErrCompletion) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("completion failed: %s", e.Reason)
}

func (e *ErrCompletion) Unwrap() error {
	return e.Err
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open and the call
// was rejected without reaching the upstream.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
