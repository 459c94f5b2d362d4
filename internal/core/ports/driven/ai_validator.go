package driven

import "github.com/custodia-labs/reqsift/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify configurations by testing connectivity
// to the underlying AI service.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	ValidateLLM(config *domain.LLMSettings) error
}
