package driving

import (
	"context"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// IngestReport summarises one ingestion batch.
type IngestReport struct {
	// Documents is the number of documents committed.
	Documents int

	// Chunks is the number of chunks committed.
	Chunks int

	// Failed lists document IDs that were rejected, with the reason.
	Failed map[string]error
}

// IngestService runs the offline indexing path: chunk, embed, index.
type IngestService interface {
	// Ingest chunks, embeds and indexes the given documents.
	// A failed document aborts that item only; committed entries are
	// never corrupted by a later failure.
	Ingest(ctx context.Context, docs []domain.Document) (*IngestReport, error)

	// Reindex re-chunks and re-embeds every stored document into a fresh
	// index and swaps it in atomically. Live queries continue against the
	// old index until the swap.
	Reindex(ctx context.Context) (*IngestReport, error)
}
