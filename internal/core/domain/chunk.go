package domain

import "fmt"

// Chunk represents an indexed text segment derived from exactly one document.
// Chunks from one document tile the body with a fixed overlap: consecutive
// chunks share exactly Overlap characters except at document boundaries.
type Chunk struct {
	// ID is the deterministic chunk identifier: "<documentID>#<seq>".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Seq is the ordinal position within the document.
	Seq int

	// Text is the chunk content.
	Text string

	// Start is the byte offset of Text within the document body.
	Start int

	// End is the byte offset one past the last byte of Text.
	End int

	// Overlap is the number of characters shared with the preceding chunk.
	Overlap int

	// Category is inherited from the parent document.
	Category Category

	// Metadata is the document metadata snapshot taken at chunking time.
	Metadata map[string]string
}

// ChunkID builds the deterministic chunk identifier for a document and
// sequence index. IDs sort lexicographically in sequence order, which the
// index relies on for stable tie-breaking.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s#%04d", documentID, seq)
}

// Len returns the chunk text length in bytes.
func (c *Chunk) Len() int {
	return len(c.Text)
}
