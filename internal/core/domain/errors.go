package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Indexing errors. These are fatal for the write that raised them
	// but must never corrupt entries already committed to the index.

	// ErrDimensionMismatch indicates a vector's length does not match the
	// index dimension. The write is rejected.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInconsistentIndex indicates the persisted index artifacts
	// (vectors, chunk texts, metadata) do not form a matched triple.
	// An index in this state refuses to serve queries.
	ErrInconsistentIndex = errors.New("inconsistent index artifacts")

	// ErrEmbedderMismatch indicates a query was embedded with a different
	// model than the one the index was built with. Mixing embedders
	// invalidates similarity comparisons.
	ErrEmbedderMismatch = errors.New("embedder does not match index")

	// Assembly and generation errors. These are recoverable by the caller
	// adjusting parameters or retrying; the core performs no implicit retry.

	// ErrInsufficientContext indicates the context budget is smaller than
	// any single retrieved chunk, so no evidence could be included.
	ErrInsufficientContext = errors.New("insufficient context budget")

	// ErrGenerationFailed indicates the generator returned an error or
	// empty output.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrGenerationTimeout indicates the generator exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")

	// Availability errors. Services report these when an optional
	// capability has not been configured.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates the generator is not configured.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrIndexUnavailable indicates the vector index is not configured.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
