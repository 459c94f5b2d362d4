package ai

import (
	"fmt"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks LLM settings against the live provider.
// The settings service holds it as a port so tests can skip the network.
type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateLLM builds a client for config and pings it.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return fmt.Errorf("%w: no LLM settings", domain.ErrInvalidInput)
	}
	return ValidateLLMConfig(config)
}
