package services

import (
	"fmt"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Configuration keys.
const (
	keyEmbeddingProvider   = "embedding.provider"
	keyEmbeddingModel      = "embedding.model"
	keyEmbeddingBaseURL    = "embedding.base_url"
	keyEmbeddingAPIKey     = "embedding.api_key"
	keyEmbeddingDimensions = "embedding.dimensions"

	keyGeneratorProvider = "generator.provider"
	keyGeneratorModel    = "generator.model"
	keyGeneratorBaseURL  = "generator.base_url"
	keyGeneratorAPIKey   = "generator.api_key"
	keyGeneratorTimeout  = "generator.timeout_seconds"

	keyChunkingTargetSize = "chunking.target_size"
	keyChunkingOverlap    = "chunking.overlap"

	keyRetrievalK         = "retrieval.k"
	keyRetrievalMaxTokens = "retrieval.max_context_tokens"

	keyLexiconPath = "lexicon.path"
)

// SettingsService manages application settings backed by a config store.
type SettingsService struct {
	config    driven.ConfigStore
	validator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service. The validator is
// optional; without it AI provider settings are saved unvalidated.
func NewSettingsService(config driven.ConfigStore, validator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		config:    config,
		validator: validator,
	}
}

// Get retrieves current application settings, applying defaults for
// unset keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	settings.Embedding = domain.EmbeddingSettings{
		Provider:   s.getProvider(keyEmbeddingProvider),
		Model:      s.config.GetString(keyEmbeddingModel),
		BaseURL:    s.config.GetString(keyEmbeddingBaseURL),
		APIKey:     s.config.GetString(keyEmbeddingAPIKey),
		Dimensions: s.config.GetInt(keyEmbeddingDimensions),
	}
	settings.Generator = domain.GeneratorSettings{
		Provider:       s.getProvider(keyGeneratorProvider),
		Model:          s.config.GetString(keyGeneratorModel),
		BaseURL:        s.config.GetString(keyGeneratorBaseURL),
		APIKey:         s.config.GetString(keyGeneratorAPIKey),
		TimeoutSeconds: s.getInt(keyGeneratorTimeout, settings.Generator.TimeoutSeconds),
	}

	settings.Chunking.TargetSize = s.getInt(keyChunkingTargetSize, settings.Chunking.TargetSize)
	settings.Chunking.Overlap = s.getInt(keyChunkingOverlap, settings.Chunking.Overlap)
	if settings.Chunking.Overlap >= settings.Chunking.TargetSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than target size %d",
			domain.ErrInvalidInput, settings.Chunking.Overlap, settings.Chunking.TargetSize)
	}

	settings.Retrieval.K = s.getInt(keyRetrievalK, settings.Retrieval.K)
	settings.Retrieval.MaxContextTokens = s.getInt(keyRetrievalMaxTokens, settings.Retrieval.MaxContextTokens)

	settings.LexiconPath = s.config.GetString(keyLexiconPath)

	return &settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}
	if settings.Chunking.TargetSize <= 0 {
		return fmt.Errorf("%w: chunk target size must be positive", domain.ErrInvalidInput)
	}
	if settings.Chunking.Overlap < 0 || settings.Chunking.Overlap >= settings.Chunking.TargetSize {
		return fmt.Errorf("%w: chunk overlap must satisfy 0 <= overlap < target size",
			domain.ErrInvalidInput)
	}

	if s.validator != nil {
		if err := s.validator.ValidateEmbedding(&settings.Embedding); err != nil {
			return fmt.Errorf("embedding settings: %w", err)
		}
		if err := s.validator.ValidateGenerator(&settings.Generator); err != nil {
			return fmt.Errorf("generator settings: %w", err)
		}
	}

	values := map[string]any{
		keyEmbeddingProvider:   settings.Embedding.Provider.String(),
		keyEmbeddingModel:      settings.Embedding.Model,
		keyEmbeddingBaseURL:    settings.Embedding.BaseURL,
		keyEmbeddingAPIKey:     settings.Embedding.APIKey,
		keyEmbeddingDimensions: settings.Embedding.Dimensions,

		keyGeneratorProvider: settings.Generator.Provider.String(),
		keyGeneratorModel:    settings.Generator.Model,
		keyGeneratorBaseURL:  settings.Generator.BaseURL,
		keyGeneratorAPIKey:   settings.Generator.APIKey,
		keyGeneratorTimeout:  settings.Generator.TimeoutSeconds,

		keyChunkingTargetSize: settings.Chunking.TargetSize,
		keyChunkingOverlap:    settings.Chunking.Overlap,

		keyRetrievalK:         settings.Retrieval.K,
		keyRetrievalMaxTokens: settings.Retrieval.MaxContextTokens,

		keyLexiconPath: settings.LexiconPath,
	}
	for key, value := range values {
		if err := s.config.Set(key, value); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}

	return s.config.Save()
}

// getProvider reads an AI provider key, returning empty for unset or
// unrecognised values.
func (s *SettingsService) getProvider(key string) domain.AIProvider {
	provider := domain.AIProvider(s.config.GetString(key))
	if !provider.IsValid() {
		return ""
	}
	return provider
}

// getInt reads an int key with a fallback for unset values.
func (s *SettingsService) getInt(key string, fallback int) int {
	if _, ok := s.config.Get(key); !ok {
		return fallback
	}
	return s.config.GetInt(key)
}
