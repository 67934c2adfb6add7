package driven

import (
	"context"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// PostProcessor processes document content to produce chunks.
// The chunker is the canonical implementation; processors are chained so
// later stages (e.g., normalisation) can rewrite chunks in place.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor modifies chunks, it receives and returns chunks.
	// If the processor creates chunks (the chunker), it receives nil and
	// returns new chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}
