package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
	"github.com/lomnlabs/lomn-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// ChunkPipeline turns a document into its chunks.
// The postprocessor pipeline is the canonical implementation.
type ChunkPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

// IndexFactory creates an empty vector index for the given dimension and
// embedder tag. Rebuilds use it to produce the fresh index that is
// swapped in atomically.
type IndexFactory func(dimensions int, embedderTag string) (driven.VectorIndex, error)

// IngestService runs the offline indexing path: chunk, embed, persist,
// index. Documents are chunked concurrently; store and index writes are
// serialized so a failed document never corrupts committed entries.
type IngestService struct {
	pipeline ChunkPipeline
	embedder driven.EmbeddingService
	store    driven.EvidenceStore
	index    *IndexHandle
	newIndex IndexFactory

	// writeMu serializes store and index mutation across Ingest and
	// Reindex calls.
	writeMu sync.Mutex
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	pipeline ChunkPipeline,
	embedder driven.EmbeddingService,
	store driven.EvidenceStore,
	index *IndexHandle,
	newIndex IndexFactory,
) *IngestService {
	if index == nil {
		index = NewIndexHandle(nil)
	}
	return &IngestService{
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
		index:    index,
		newIndex: newIndex,
	}
}

// chunkedDoc pairs a document with its chunking outcome.
type chunkedDoc struct {
	doc    domain.Document
	chunks []domain.Chunk
	err    error
}

// Ingest chunks, embeds and indexes the given documents. A failed
// document is recorded in the report and aborts that item only.
func (s *IngestService) Ingest(ctx context.Context, docs []domain.Document) (*driving.IngestReport, error) {
	logger.Section("Document Ingestion")

	if len(docs) == 0 {
		return &driving.IngestReport{Failed: map[string]error{}}, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: configure an embedding provider with 'lomn settings'",
			domain.ErrEmbeddingUnavailable)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	index, err := s.ensureIndex()
	if err != nil {
		return nil, err
	}

	report := &driving.IngestReport{Failed: map[string]error{}}
	for _, cd := range s.chunkAll(ctx, docs) {
		if cd.err != nil {
			logger.Warn("Document %s rejected: %v", cd.doc.ID, cd.err)
			report.Failed[cd.doc.ID] = cd.err
			continue
		}
		if err := s.commit(ctx, index, &cd.doc, cd.chunks); err != nil {
			logger.Warn("Document %s failed: %v", cd.doc.ID, err)
			report.Failed[cd.doc.ID] = err
			continue
		}
		report.Documents++
		report.Chunks += len(cd.chunks)
	}

	if report.Documents > 0 {
		if err := s.store.SaveEmbedderTag(ctx, s.embedder.ModelName()); err != nil {
			return nil, fmt.Errorf("recording embedder tag: %w", err)
		}
	}

	logger.Info("Ingested %d documents (%d chunks, %d failed)",
		report.Documents, report.Chunks, len(report.Failed))
	return report, nil
}

// Reindex re-chunks and re-embeds every stored document into a fresh
// index and swaps it in atomically. Live queries continue against the
// old index until the swap.
func (s *IngestService) Reindex(ctx context.Context) (*driving.IngestReport, error) {
	logger.Section("Reindex")

	if s.embedder == nil {
		return nil, fmt.Errorf("%w: configure an embedding provider with 'lomn settings'",
			domain.ErrEmbeddingUnavailable)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	docs, err := s.store.ListDocuments(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	fresh, err := s.newIndex(s.embedder.Dimensions(), s.embedder.ModelName())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	report := &driving.IngestReport{Failed: map[string]error{}}
	for _, cd := range s.chunkAll(ctx, docs) {
		if cd.err != nil {
			report.Failed[cd.doc.ID] = cd.err
			continue
		}
		if err := s.commit(ctx, fresh, &cd.doc, cd.chunks); err != nil {
			report.Failed[cd.doc.ID] = err
			continue
		}
		report.Documents++
		report.Chunks += len(cd.chunks)
	}

	if err := s.store.SaveEmbedderTag(ctx, s.embedder.ModelName()); err != nil {
		return nil, fmt.Errorf("recording embedder tag: %w", err)
	}

	// The swapped-out index stays open: queries that already fetched it
	// finish against that snapshot, and the garbage collector reclaims it.
	s.index.Swap(fresh)

	logger.Info("Reindexed %d documents (%d chunks, %d failed)",
		report.Documents, report.Chunks, len(report.Failed))
	return report, nil
}

// RestoreIndex rebuilds the vector index from embeddings persisted in the
// evidence store, without calling the embedding provider. The rebuilt
// index carries the embedder tag the store recorded with the vectors, so
// queries embedded with a different model are still rejected. Returns the
// number of restored vectors. Used at startup when the index artifacts
// are missing or inconsistent but the store is intact.
func (s *IngestService) RestoreIndex(ctx context.Context) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	embeddings, err := s.store.ChunkEmbeddings(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading stored embeddings: %w", err)
	}
	if len(embeddings) == 0 {
		return 0, nil
	}

	embedderTag, err := s.store.EmbedderTag(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading embedder tag: %w", err)
	}
	if embedderTag == "" {
		return 0, fmt.Errorf("%w: stored embeddings carry no embedder tag; run 'lomn reindex'",
			domain.ErrEmbedderMismatch)
	}

	fresh, err := s.newIndex(len(embeddings[0].Embedding), embedderTag)
	if err != nil {
		return 0, fmt.Errorf("creating index: %w", err)
	}
	for _, ce := range embeddings {
		if err := fresh.Add(ctx, ce.ChunkID, ce.Embedding); err != nil {
			return 0, fmt.Errorf("restoring chunk %s: %w", ce.ChunkID, err)
		}
	}

	// As in Reindex, the previous snapshot is dropped, not closed.
	s.index.Swap(fresh)

	logger.Info("Restored index with %d vectors", len(embeddings))
	return len(embeddings), nil
}

// ensureIndex returns the live index, creating an empty one sized to the
// embedder when none exists yet. Rejects an index built with a different
// embedder.
func (s *IngestService) ensureIndex() (driven.VectorIndex, error) {
	index := s.index.Get()
	if index == nil {
		fresh, err := s.newIndex(s.embedder.Dimensions(), s.embedder.ModelName())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
		s.index.Swap(fresh)
		return fresh, nil
	}

	if tag := index.EmbedderTag(); tag != "" && tag != s.embedder.ModelName() {
		return nil, fmt.Errorf("%w: index built with %q, embedder is %q; run 'lomn reindex'",
			domain.ErrEmbedderMismatch, tag, s.embedder.ModelName())
	}
	return index, nil
}

// chunkAll runs the pipeline over all documents concurrently and returns
// the outcomes in input order. Validation failures are per-document
// outcomes, never batch errors.
func (s *IngestService) chunkAll(ctx context.Context, docs []domain.Document) []chunkedDoc {
	results := make([]chunkedDoc, len(docs))

	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := docs[i]
			results[i].doc = doc

			if err := doc.Validate(); err != nil {
				results[i].err = err
				return
			}
			chunks, err := s.pipeline.Process(ctx, &doc)
			if err != nil {
				results[i].err = err
				return
			}
			results[i].chunks = chunks
		}(i)
	}
	wg.Wait()

	return results
}

// commit embeds and persists one chunked document, then indexes it.
// Embedding runs first so the most likely failure leaves no trace in
// the store.
func (s *IngestService) commit(
	ctx context.Context, index driven.VectorIndex, doc *domain.Document, chunks []domain.Chunk,
) error {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("saving chunks: %w", err)
	}

	for i, chunk := range chunks {
		if err := s.store.SaveEmbedding(ctx, chunk.ID, embeddings[i]); err != nil {
			return fmt.Errorf("saving embedding for %s: %w", chunk.ID, err)
		}
		if err := index.Add(ctx, chunk.ID, embeddings[i]); err != nil {
			return fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
		}
	}

	logger.Debug("Committed document %s (%d chunks)", doc.ID, len(chunks))
	return nil
}
