// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// Processor splits document bodies into fixed-size chunks.
// It implements the PostProcessor interface.
//
// Chunking is deterministic: the same document and parameters always
// produce identical chunk boundaries. Window i starts at
// i*(chunkSize-overlap) and the final window is truncated to the document
// length, never padded, so the union of spans covers the full body.
//
// Sizes and offsets are in bytes, but a boundary that would land inside
// a multi-byte UTF-8 rune is pulled back to the start of that rune, so
// every chunk's text is valid UTF-8 on its own.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the effective chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the effective overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document body into chunks.
// Input chunks are ignored; this processor creates new chunks from the body.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if doc.Body == "" {
		// Empty body produces no chunks
		return nil, nil
	}

	body := doc.Body
	bodyLen := len(body)
	stride := p.chunkSize - p.overlap

	estimatedChunks := (bodyLen / stride) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	seq := 0
	start := 0
	prevEnd := 0

	for start < bodyLen {
		end := start + p.chunkSize
		if end > bodyLen {
			end = bodyLen
		}
		end = snapToRuneStart(body, start, end)

		overlap := 0
		if seq > 0 {
			// Bytes shared with the predecessor: p.overlap for interior
			// chunks, fewer for a truncated or snapped window.
			overlap = prevEnd - start
		}

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, seq),
			DocumentID: doc.ID,
			Seq:        seq,
			Text:       body[start:end],
			Start:      start,
			End:        end,
			Overlap:    overlap,
			Category:   doc.Category,
			Metadata:   snapshotMetadata(doc),
		})
		seq++
		prevEnd = end

		next := snapToRuneStart(body, start, start+stride)
		if next == start {
			// A tiny stride snapped back onto the current window start.
			// Step over one rune to guarantee progress.
			_, width := utf8.DecodeRuneInString(body[start:])
			next = start + width
		}
		start = next
	}

	return chunks, nil
}

// snapToRuneStart pulls pos back to the nearest rune start at or before
// it, without crossing floor. Positions at or past the end of body are
// clamped to len(body), which is always a valid boundary.
func snapToRuneStart(body string, floor, pos int) int {
	if pos >= len(body) {
		return len(body)
	}
	for pos > floor && !utf8.RuneStart(body[pos]) {
		pos--
	}
	return pos
}

// snapshotMetadata copies the document metadata so chunks stay immutable
// even if the caller mutates the source map afterwards.
func snapshotMetadata(doc *domain.Document) map[string]string {
	meta := make(map[string]string, len(doc.Metadata)+3)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	if doc.Payer != "" {
		meta["payer"] = doc.Payer
	}
	if doc.Diagnosis != "" {
		meta["diagnosis"] = doc.Diagnosis
	}
	if doc.AuthorRole != "" {
		meta["author_role"] = doc.AuthorRole
	}
	return meta
}
