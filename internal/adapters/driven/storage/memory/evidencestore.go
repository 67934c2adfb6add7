// Package memory provides in-memory store implementations, used for
// tests and for serving a loaded index without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
)

// Ensure EvidenceStore implements the interface.
var _ driven.EvidenceStore = (*EvidenceStore)(nil)

// EvidenceStore is an in-memory implementation of driven.EvidenceStore.
type EvidenceStore struct {
	mu          sync.RWMutex
	documents   map[string]domain.Document
	chunks      map[string][]domain.Chunk // keyed by document ID
	byChunkID   map[string]domain.Chunk
	embeddings  map[string][]float32 // keyed by chunk ID
	embedderTag string
}

// NewEvidenceStore creates a new in-memory evidence store.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{
		documents:  make(map[string]domain.Document),
		chunks:     make(map[string][]domain.Chunk),
		byChunkID:  make(map[string]domain.Chunk),
		embeddings: make(map[string][]float32),
	}
}

// SaveDocument stores a document.
func (s *EvidenceStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores the chunks for one document, replacing any previous set.
func (s *EvidenceStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docID := chunks[0].DocumentID
	for i := range chunks {
		if chunks[i].DocumentID != docID {
			return domain.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, old := range s.chunks[docID] {
		delete(s.byChunkID, old.ID)
		delete(s.embeddings, old.ID)
	}
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.Slice(stored, func(i, j int) bool { return stored[i].Seq < stored[j].Seq })
	s.chunks[docID] = stored
	for _, c := range stored {
		s.byChunkID[c.ID] = c
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *EvidenceStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunk retrieves a chunk by ID.
func (s *EvidenceStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.byChunkID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// GetChunks retrieves all chunks for a document in sequence order.
func (s *EvidenceStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// ListDocuments returns all documents, optionally filtered by category.
// Results are ordered by document ID for determinism.
func (s *EvidenceStore) ListDocuments(_ context.Context, category domain.Category) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		doc := s.documents[id]
		if category != "" && doc.Category != category {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *EvidenceStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chunks[id] {
		delete(s.byChunkID, c.ID)
		delete(s.embeddings, c.ID)
	}
	delete(s.chunks, id)
	delete(s.documents, id)
	return nil
}

// SaveEmbedding stores the embedding for a chunk.
func (s *EvidenceStore) SaveEmbedding(_ context.Context, chunkID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byChunkID[chunkID]; !ok {
		return domain.ErrNotFound
	}
	stored := make([]float32, len(embedding))
	copy(stored, embedding)
	s.embeddings[chunkID] = stored
	return nil
}

// ChunkEmbeddings returns every stored chunk embedding, ordered by chunk ID.
func (s *EvidenceStore) ChunkEmbeddings(_ context.Context) ([]driven.ChunkEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.embeddings))
	for id := range s.embeddings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]driven.ChunkEmbedding, 0, len(ids))
	for _, id := range ids {
		result = append(result, driven.ChunkEmbedding{ChunkID: id, Embedding: s.embeddings[id]})
	}
	return result, nil
}

// SaveEmbedderTag records the embedding model the stored embeddings were
// produced with.
func (s *EvidenceStore) SaveEmbedderTag(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embedderTag = tag
	return nil
}

// EmbedderTag returns the recorded embedding model, or "" when none is
// recorded.
func (s *EvidenceStore) EmbedderTag(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedderTag, nil
}
