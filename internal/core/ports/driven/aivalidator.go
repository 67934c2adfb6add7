package driven

import "github.com/lomnlabs/lomn-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations by contacting
// the provider. Used when settings are saved so bad credentials are
// caught at configuration time, not mid-pipeline.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateGenerator validates a generator configuration.
	ValidateGenerator(config *domain.GeneratorSettings) error
}
