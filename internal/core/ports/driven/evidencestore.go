package driven

import (
	"context"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// ChunkEmbedding pairs a chunk ID with its stored vector.
type ChunkEmbedding struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// Embedding is the stored vector.
	Embedding []float32
}

// EvidenceStore persists documents and their chunks.
//
// Documents are immutable after ingestion. Chunk saves are per-document
// and atomic: a failed save never leaves a document partially chunked.
// Embeddings are persisted alongside chunks so the vector index can be
// rebuilt without calling the embedding provider again.
type EvidenceStore interface {
	// SaveDocument stores a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores the chunks for one document, replacing any
	// previous set. All chunks must share one DocumentID.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document in sequence order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListDocuments returns all documents, optionally filtered by category.
	ListDocuments(ctx context.Context, category domain.Category) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveEmbedding stores the embedding for a chunk. Returns
	// domain.ErrNotFound if the chunk does not exist.
	SaveEmbedding(ctx context.Context, chunkID string, embedding []float32) error

	// ChunkEmbeddings returns every stored chunk embedding, ordered by
	// chunk ID.
	ChunkEmbeddings(ctx context.Context) ([]ChunkEmbedding, error)

	// SaveEmbedderTag records the embedding model the stored embeddings
	// were produced with. Stored vectors are only comparable to queries
	// embedded with this model.
	SaveEmbedderTag(ctx context.Context, tag string) error

	// EmbedderTag returns the recorded embedding model, or the empty
	// string when no embeddings have been recorded.
	EmbedderTag(ctx context.Context) (string, error)
}
