// Package llm suggests relationships between concept labels with a language
// model. The model is reached through a Provider so the OpenAI client and the
// deterministic mock are interchangeable.
package llm

import "context"

// Provider defines the interface for LLM providers (OpenAI, mock, ...)
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures LLM completion requests
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}
