package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
	"github.com/lomnlabs/lomn-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// categoryOverfetch is how many extra results are pulled from the index
// when a category filter is set, so the filter still has k candidates
// left after discarding non-matching entries.
const categoryOverfetch = 3

// RetrievalService provides ranked evidence retrieval.
type RetrievalService struct {
	embedder driven.EmbeddingService
	index    *IndexHandle
	store    driven.EvidenceStore
}

// NewRetrievalService creates a new retrieval service. The embedder may
// be nil when no provider is configured; retrieval then fails with
// domain.ErrEmbeddingUnavailable.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	index *IndexHandle,
	store driven.EvidenceStore,
) *RetrievalService {
	if index == nil {
		index = NewIndexHandle(nil)
	}
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

// Retrieve embeds the query, searches the vector index and returns
// ranked evidence hydrated from the evidence store.
//
// The query must be embedded with the same embedder the index was built
// with; a model mismatch returns domain.ErrEmbedderMismatch. A category
// filter is applied after the similarity search and never changes the
// ranking. The search over-fetches to leave the filter k candidates and
// falls back to a full scan when the category is too sparse in that
// window; filtering down to nothing returns an empty result, not an
// error.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	logger.Section("Evidence Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	k := opts.K
	if k <= 0 {
		k = domain.DefaultK
	}
	logger.Debug("Query: %q, k=%d, category=%q", query, k, opts.Category)

	index := s.index.Get()
	if index == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	// Same-embedder invariant: scores from different embedders are not
	// comparable, so a tagged index rejects other models outright.
	if tag := index.EmbedderTag(); tag != "" && tag != s.embedder.ModelName() {
		return nil, fmt.Errorf("%w: index built with %q, query embedded with %q",
			domain.ErrEmbedderMismatch, tag, s.embedder.ModelName())
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	// Over-fetch when filtering so the category cut still leaves k
	// candidates where possible.
	searchK := k
	if opts.Category != "" {
		searchK = k * categoryOverfetch
	}

	hits, err := index.Search(ctx, embedding, searchK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))

	evidence, err := s.hydrate(ctx, hits, opts.Category, k)
	if err != nil {
		return nil, err
	}

	// A sparse category can have fewer than k members in the over-fetch
	// window even though the index holds more. Re-search the whole index
	// once before settling for a short result.
	if opts.Category != "" && len(evidence) < k && index.Len() > searchK {
		hits, err = index.Search(ctx, embedding, index.Len())
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}
		logger.Debug("Category %q sparse in top %d, rescanned %d vectors",
			opts.Category, searchK, len(hits))

		evidence, err = s.hydrate(ctx, hits, opts.Category, k)
		if err != nil {
			return nil, err
		}
	}
	logger.Info("Retrieved %d evidence chunks", len(evidence))

	return &domain.RetrievalResult{
		Query:    query,
		K:        k,
		Category: opts.Category,
		Evidence: evidence,
	}, nil
}

// hydrate converts index hits into evidence with full chunk data,
// applying the category filter and the final k cut.
func (s *RetrievalService) hydrate(
	ctx context.Context, hits []driven.VectorHit, category domain.Category, k int,
) ([]domain.Evidence, error) {
	evidence := make([]domain.Evidence, 0, k)

	for _, hit := range hits {
		if len(evidence) == k {
			break
		}

		chunk, err := s.store.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Chunk was deleted after indexing, skip it.
				logger.Warn("Indexed chunk %s missing from store", hit.ChunkID)
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", hit.ChunkID, err)
		}

		if category != "" && chunk.Category != category {
			continue
		}

		evidence = append(evidence, domain.Evidence{
			Chunk: *chunk,
			Score: similarityScore(hit.Distance),
		})
	}

	return evidence, nil
}

// similarityScore maps squared L2 distance onto (0, 1], monotonically
// decreasing in distance. Identical vectors score 1.
func similarityScore(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}
