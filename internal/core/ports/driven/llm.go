package driven

import "context"

// Generator produces letter text from an assembled prompt.
//
// Generation is an opaque capability with bounded but unpredictable
// latency. The core performs no retries; retry policy belongs to the
// caller. Callers bound the call with a context deadline and surface
// domain.ErrGenerationTimeout when it expires.
//
// Implementations may include:
//   - Ollama (local models)
//   - Anthropic (Claude)
type Generator interface {
	// Generate produces text from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
