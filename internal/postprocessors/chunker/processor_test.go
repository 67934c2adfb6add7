package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(200))
		if p.chunkSize != 200 {
			t.Errorf("expected chunkSize 200, got %d", p.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_EmptyBody(t *testing.T) {
	p := New()
	doc := &domain.Document{ID: "test-doc", Category: domain.CategoryPolicy}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty body, got %d", len(chunks))
	}
}

func TestProcessor_Process_MissingID(t *testing.T) {
	p := New()
	doc := &domain.Document{Body: "some text"}

	_, err := p.Process(context.Background(), doc, nil)
	if err == nil {
		t.Fatal("expected error for missing document id")
	}
}

func TestProcessor_Process_SmallBody(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{
		ID:       "test-doc",
		Category: domain.CategoryApproved,
		Body:     "This is a small piece of content.",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small body, got %d", len(chunks))
	}

	c := chunks[0]
	if c.ID != "test-doc#0000" {
		t.Errorf("expected deterministic id, got %q", c.ID)
	}
	if c.DocumentID != doc.ID {
		t.Errorf("expected DocumentID %q, got %q", doc.ID, c.DocumentID)
	}
	if c.Text != doc.Body {
		t.Error("expected chunk text to match document body")
	}
	if c.Start != 0 || c.End != len(doc.Body) {
		t.Errorf("expected span [0,%d), got [%d,%d)", len(doc.Body), c.Start, c.End)
	}
	if c.Overlap != 0 {
		t.Errorf("expected 0 overlap on first chunk, got %d", c.Overlap)
	}
	if c.Category != domain.CategoryApproved {
		t.Errorf("expected inherited category, got %q", c.Category)
	}
}

func TestProcessor_Process_Tiling(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	body := strings.Repeat("x", 350)
	doc := &domain.Document{ID: "doc", Category: domain.CategoryPolicy, Body: body}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Full coverage: first chunk starts at 0, last chunk ends at len(body),
	// consecutive spans overlap by exactly 20 characters.
	if chunks[0].Start != 0 {
		t.Errorf("expected first chunk to start at 0, got %d", chunks[0].Start)
	}
	if last := chunks[len(chunks)-1]; last.End != len(body) {
		t.Errorf("expected last chunk to end at %d, got %d", len(body), last.End)
	}
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.Start != prev.Start+80 {
			t.Errorf("chunk %d: expected start %d, got %d", i, prev.Start+80, cur.Start)
		}
		if prev.End-cur.Start != 20 && cur.End != len(body) {
			t.Errorf("chunk %d: expected 20 shared characters, got %d", i, prev.End-cur.Start)
		}
		if cur.Text != body[cur.Start:cur.End] {
			t.Errorf("chunk %d: text does not match its span", i)
		}
	}

	// No chunk exceeds the target size.
	for i, c := range chunks {
		if len(c.Text) > 100 {
			t.Errorf("chunk %d exceeds target size: %d", i, len(c.Text))
		}
	}
}

func TestProcessor_Process_MultiByteRuneBoundaries(t *testing.T) {
	// A 10-byte window over "café café " would cut inside the second é;
	// the boundary must pull back to the rune start instead.
	p := New(WithChunkSize(10), WithOverlap(3))
	doc := &domain.Document{ID: "doc", Category: domain.CategoryPolicy, Body: "café café "}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	if chunks[0].Text != "café caf" {
		t.Errorf("expected first chunk %q, got %q", "café caf", chunks[0].Text)
	}
	if chunks[0].End != 9 {
		t.Errorf("expected boundary pulled back to 9, got %d", chunks[0].End)
	}
	if chunks[1].Text != "afé " {
		t.Errorf("expected second chunk %q, got %q", "afé ", chunks[1].Text)
	}
	if chunks[1].Overlap != 2 {
		t.Errorf("expected 2 shared bytes, got %d", chunks[1].Overlap)
	}
}

func TestProcessor_Process_AllChunksValidUTF8(t *testing.T) {
	p := New(WithChunkSize(40), WithOverlap(10))
	body := strings.Repeat("Rollstuhl für häusliche Mobilität. ", 12)
	doc := &domain.Document{ID: "doc", Category: domain.CategoryGuideline, Body: body}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d text is not valid UTF-8: %q", i, c.Text)
		}
		if c.Text != body[c.Start:c.End] {
			t.Errorf("chunk %d: text does not match its span", i)
		}
	}

	// Coverage survives the snapped boundaries.
	if chunks[0].Start != 0 {
		t.Errorf("expected first chunk to start at 0, got %d", chunks[0].Start)
	}
	if last := chunks[len(chunks)-1]; last.End != len(body) {
		t.Errorf("expected last chunk to end at %d, got %d", len(body), last.End)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start > chunks[i-1].End {
			t.Errorf("gap between chunk %d and %d", i-1, i)
		}
	}
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	p := New(WithChunkSize(120), WithOverlap(30))
	doc := &domain.Document{
		ID:       "doc",
		Category: domain.CategoryGuideline,
		Body:     strings.Repeat("medical necessity criteria for mobility equipment. ", 20),
	}

	first, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Start != second[i].Start || first[i].End != second[i].End {
			t.Errorf("chunk %d boundaries differ between runs", i)
		}
	}
}

func TestProcessor_Process_ChunkCount(t *testing.T) {
	// count = ceil(len / (size-overlap)) within +-1
	tests := []struct {
		length  int
		size    int
		overlap int
	}{
		{600, 500, 50},
		{800, 500, 50},
		{1000, 100, 20},
		{99, 100, 20},
		{100, 100, 20},
	}

	for _, tt := range tests {
		p := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
		doc := &domain.Document{
			ID:       "doc",
			Category: domain.CategoryPolicy,
			Body:     strings.Repeat("a", tt.length),
		}
		chunks, err := p.Process(context.Background(), doc, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stride := tt.size - tt.overlap
		want := (tt.length + stride - 1) / stride
		got := len(chunks)
		if got < want-1 || got > want+1 {
			t.Errorf("len=%d size=%d overlap=%d: expected ~%d chunks, got %d",
				tt.length, tt.size, tt.overlap, want, got)
		}
	}
}

func TestProcessor_Process_MetadataSnapshot(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	doc := &domain.Document{
		ID:        "doc",
		Category:  domain.CategoryApproved,
		Payer:     "Aetna",
		Diagnosis: "MDD",
		Metadata:  map[string]string{"source": "synthetic"},
		Body:      strings.Repeat("b", 120),
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the source map must not affect the snapshot.
	doc.Metadata["source"] = "edited"

	for _, c := range chunks {
		if c.Metadata["payer"] != "Aetna" || c.Metadata["diagnosis"] != "MDD" {
			t.Error("expected document fields in chunk metadata")
		}
		if c.Metadata["source"] != "synthetic" {
			t.Error("expected metadata snapshot to be isolated from later edits")
		}
	}
}
