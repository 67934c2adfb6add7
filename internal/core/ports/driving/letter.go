package driving

import (
	"context"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// DraftOptions configures one letter draft.
type DraftOptions struct {
	// K is the evidence count to retrieve (default 4).
	K int

	// Category optionally restricts retrieval to one document category.
	Category domain.Category

	// MaxContextTokens is the prompt assembly budget (default 2048).
	MaxContextTokens int
}

// LetterService orchestrates the query-time path:
// retrieve, validate, assemble, generate, report.
type LetterService interface {
	// Draft produces a letter for the given case facts together with its
	// evidence list and transparency report. A letter is never returned
	// without its report.
	Draft(ctx context.Context, facts domain.CaseFacts, opts DraftOptions) (*domain.LetterResponse, error)

	// Report recomputes the transparency report for a generation result.
	Report(result *domain.GenerationResult) *domain.TransparencyReport
}
