// Package llm wraps the external text-completion collaborator behind a
// provider-agnostic interface, with an OpenAI implementation and a
// deterministic mock for tests and offline runs. Callers must treat every
// failure as recoverable: the conversational layer falls back to
// rule-based behavior and never surfaces a collaborator error.
package llm

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	Generate(ctx context.Context, prompt string) (string, error)
}
