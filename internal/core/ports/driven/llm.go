// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService sends one extraction prompt to a model and returns its text.
// Adapters exist for OpenAI-compatible APIs (OpenAI, OpenRouter),
// Anthropic, Ollama and Gemini.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName is the configured model, reported in logs and run output.
	ModelName() string

	// Ping checks credentials and reachability without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions are per-call model settings.
type GenerateOptions struct {
	// System is sent as the provider's system instruction when non-empty.
	System string

	// MaxTokens caps the answer length. Zero uses the provider default.
	MaxTokens int

	// Temperature is always sent, so zero means deterministic.
	Temperature float64

	StopWords []string
}
