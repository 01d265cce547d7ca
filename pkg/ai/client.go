// pkg/ai/client.go

package ai

import (
	"context"
	"errors"
)

// ModelParams is the per-call model configuration, normally read from the
// model_configs table with an in-code default. TimeoutSec is the
// per-attempt connect budget; the read budget is fixed.
type ModelParams struct {
	ModelName   string
	Temperature float64
	MaxTokens   int
	TimeoutSec  int
}

// DefaultParams applies when no active model_configs row exists.
func DefaultParams(model string) ModelParams {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return ModelParams{ModelName: model, Temperature: 0.7, MaxTokens: 2500, TimeoutSec: 45}
}

// ErrEmptyContent means the provider answered but returned no usable text.
// Not retried.
var ErrEmptyContent = errors.New("llm: empty content")

// TransportError wraps transport-class faults (timeouts, resets, SSL EOF,
// DNS). These are the only retried class, and the only class the
// orchestrator maps to the timeout lifecycle state.
type TransportError struct{ Err error }

func (e *TransportError) Error() string { return "llm transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport-class fault.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client is one logical "generate plan" call. Safe for concurrent use
// from different requests.
type Client interface {
	GeneratePlan(ctx context.Context, system, user, assistant string, p ModelParams) ([]byte, error)
}
