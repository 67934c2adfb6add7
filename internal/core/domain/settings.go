package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GeneratorSettings holds generator provider configuration.
type GeneratorSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// TimeoutSeconds bounds a single generation call (default 120).
	TimeoutSeconds int
}

// IsConfigured returns true if the generator provider is set up.
func (g GeneratorSettings) IsConfigured() bool {
	if !g.Provider.IsValid() {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds chunker parameters.
type ChunkingSettings struct {
	// TargetSize is the chunk window size in characters.
	TargetSize int

	// Overlap is the number of characters shared between neighbours.
	// Must satisfy 0 <= Overlap < TargetSize.
	Overlap int
}

// RetrievalSettings holds query-time defaults.
type RetrievalSettings struct {
	// K is the default evidence count per query.
	K int

	// MaxContextTokens is the default prompt assembly budget.
	MaxContextTokens int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Generator holds generator provider settings.
	Generator GeneratorSettings

	// Chunking holds chunker parameters.
	Chunking ChunkingSettings

	// Retrieval holds query-time defaults.
	Retrieval RetrievalSettings

	// LexiconPath optionally points at a TOML lexicon file overriding
	// the built-in validator lexicon.
	LexiconPath string
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers (Embedding, Generator) are left unconfigured by default;
// users must configure them explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		Generator: GeneratorSettings{
			TimeoutSeconds: 120,
		},
		Chunking: ChunkingSettings{
			TargetSize: 500,
			Overlap:    50,
		},
		Retrieval: RetrievalSettings{
			K:                DefaultK,
			MaxContextTokens: DefaultMaxContextTokens,
		},
	}
}
