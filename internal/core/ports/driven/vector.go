package driven

import "context"

// VectorIndex provides nearest-neighbour search over chunk embeddings.
//
// The distance metric is squared L2 and is fixed for the lifetime of an
// index. The index is append-only in normal operation: deletion or
// re-indexing is a rebuild into a fresh index followed by an atomic swap,
// never a targeted in-place edit.
type VectorIndex interface {
	// Add inserts the vector for a chunk ID. Adding an existing ID
	// replaces its vector in place (re-embedding). Returns
	// domain.ErrDimensionMismatch if the vector length does not match
	// the index dimension. The operation is all-or-nothing per chunk.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Search returns the k nearest entries by squared L2 distance,
	// ordered by ascending distance with ties broken by ascending chunk
	// ID. Returns fewer than k entries only when the index holds fewer
	// than k vectors.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the index vector dimension.
	Dimensions() int

	// EmbedderTag returns the identifier of the embedder the index was
	// built with. Queries from a different embedder must be rejected.
	EmbedderTag() string

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the squared L2 distance (lower is more similar).
	Distance float64
}
