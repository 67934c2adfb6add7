package ai

import (
	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateGenerator validates a generator configuration by pinging the provider.
func (v *ConfigValidator) ValidateGenerator(config *domain.GeneratorSettings) error {
	return ValidateGeneratorConfig(config)
}
