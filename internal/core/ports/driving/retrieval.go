package driving

import (
	"context"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// RetrievalService provides ranked evidence retrieval to external actors.
type RetrievalService interface {
	// Retrieve embeds the query, searches the vector index and returns
	// ranked evidence. An empty result after category filtering is not
	// an error.
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, error)
}

// ValidationService scans text for policy-violation lexicon matches.
type ValidationService interface {
	// Validate returns warnings ordered by position in the text.
	// It never returns an error: warnings inform, they do not block.
	Validate(text string) []domain.Warning
}
