// Package ai builds the configured model adapter from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/reqsift/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/reqsift/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/reqsift/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/reqsift/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

const fixHint = "Run 'reqsift settings llm' to fix"

type constructor func(s *domain.LLMSettings) (driven.LLMService, error)

var constructors = map[domain.AIProvider]constructor{
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return newChatCompletions(s, openaillm.DefaultBaseURL)
	},
	domain.AIProviderOpenRouter: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return newChatCompletions(s, openaillm.OpenRouterBaseURL)
	},
	domain.AIProviderAnthropic: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderGemini: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:   s.APIKey,
			Model:    s.Model,
			Endpoint: s.BaseURL,
		})
	},
}

// newChatCompletions serves OpenAI and OpenRouter; the base URL setting wins
// over the provider's default.
func newChatCompletions(s *domain.LLMSettings, defaultBaseURL string) (driven.LLMService, error) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:            s.APIKey,
		BaseURL:           baseURL,
		Model:             s.Model,
		RequestsPerMinute: s.RateLimit,
	})
}

// CreateLLMService returns nil, nil when settings are not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := constructors[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	return build(settings)
}

// CreateAndValidateLLMService builds the service and pings it. Failures
// wrap domain.ErrLLMUnavailable with a hint for the user.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// ValidateLLMConfig pings the configured provider once and closes the client.
// Unconfigured settings pass.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

func ping(svc driven.LLMService) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
