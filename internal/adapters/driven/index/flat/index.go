// Package flat provides an exact (brute-force) vector index with squared
// L2 distance, persisted as a matched triple of vector, chunk-text and
// metadata artifacts.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact nearest-neighbour index over chunk embeddings.
//
// The distance metric is squared L2 and is fixed for the index lifetime.
// Writes are serialized behind a write lock; searches run concurrently
// against a stable snapshot of the entry slice.
type Index struct {
	mu          sync.RWMutex
	dimension   int
	embedderTag string
	entries     []entry
	byID        map[string]int
	closed      bool
}

// entry pairs a chunk ID with its vector.
type entry struct {
	chunkID string
	vector  []float32
}

// New creates an empty index for the given dimension and embedder tag.
// The embedder tag records which embedding model produced the vectors;
// queries embedded with a different model must be rejected by callers.
func New(dimension int, embedderTag string) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("flat: dimension must be positive")
	}
	if embedderTag == "" {
		return nil, errors.New("flat: embedder tag cannot be empty")
	}

	return &Index{
		dimension:   dimension,
		embedderTag: embedderTag,
		byID:        make(map[string]int),
	}, nil
}

// Add inserts the vector for a chunk ID, or replaces it in place when the
// ID is already present (re-embedding). The operation is all-or-nothing:
// a dimension mismatch leaves the index untouched.
func (idx *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" {
		return fmt.Errorf("flat: %w: chunk id is required", domain.ErrInvalidInput)
	}
	if len(embedding) != idx.dimension {
		return fmt.Errorf("flat: %w: got %d, index dimension is %d",
			domain.ErrDimensionMismatch, len(embedding), idx.dimension)
	}

	// Copy so the index owns its vectors.
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return errors.New("flat: index is closed")
	}

	if pos, ok := idx.byID[chunkID]; ok {
		idx.entries[pos].vector = vec
		return nil
	}

	idx.byID[chunkID] = len(idx.entries)
	idx.entries = append(idx.entries, entry{chunkID: chunkID, vector: vec})
	return nil
}

// Search returns the k nearest entries by squared L2 distance.
//
// The full entry set is ranked by (distance ascending, chunk ID ascending)
// and the first k taken, so the top-k1 results are always a prefix of the
// top-k2 results for k1 < k2.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("flat: %w: got %d, index dimension is %d",
			domain.ErrDimensionMismatch, len(query), idx.dimension)
	}
	if k <= 0 {
		return nil, fmt.Errorf("flat: %w: k must be positive", domain.ErrInvalidInput)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, errors.New("flat: index is closed")
	}

	hits := make([]driven.VectorHit, 0, len(idx.entries))
	for i := range idx.entries {
		hits = append(hits, driven.VectorHit{
			ChunkID:  idx.entries[i].chunkID,
			Distance: squaredL2(query, idx.entries[i].vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimensions returns the index vector dimension.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// EmbedderTag returns the identifier of the embedder the index was built with.
func (idx *Index) EmbedderTag() string {
	return idx.embedderTag
}

// Close marks the index closed. Further operations fail.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	return nil
}

// squaredL2 computes the squared Euclidean distance between two vectors
// of equal length.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
