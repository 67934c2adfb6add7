package flat

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

// Persisted artifact names. The three files form a matched triple and are
// only valid together: loading any one without the others is an error,
// not a silent partial load.
const (
	VectorsFile  = "vectors.bin"
	ChunksFile   = "chunks.json"
	MetadataFile = "metadata.json"
)

// vectorsMagic identifies the vector artifact format.
const vectorsMagic = uint32(0x4C4F4D4E) // "LOMN"

// vectorsVersion is the current vector artifact version.
const vectorsVersion = uint32(1)

// chunkTextEntry is one record in the ordered chunk-text store.
type chunkTextEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// chunkMetadata is the per-chunk record in the metadata store.
type chunkMetadata struct {
	DocumentID string            `json:"document_id"`
	Seq        int               `json:"seq"`
	Category   string            `json:"category"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Overlap    int               `json:"overlap"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Save writes the index and its chunks to dir as the artifact triple.
// The chunks must cover exactly the indexed chunk IDs.
func Save(idx *Index, chunks []domain.Chunk, dir string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	byID := make(map[string]*domain.Chunk, len(chunks))
	for i := range chunks {
		byID[chunks[i].ID] = &chunks[i]
	}
	if len(byID) != len(idx.entries) {
		return fmt.Errorf("flat: %w: %d chunks for %d vectors",
			domain.ErrInconsistentIndex, len(byID), len(idx.entries))
	}

	texts := make([]chunkTextEntry, len(idx.entries))
	meta := make(map[string]chunkMetadata, len(idx.entries))
	for i := range idx.entries {
		c, ok := byID[idx.entries[i].chunkID]
		if !ok {
			return fmt.Errorf("flat: %w: no chunk for vector %s",
				domain.ErrInconsistentIndex, idx.entries[i].chunkID)
		}
		texts[i] = chunkTextEntry{ID: c.ID, Text: c.Text}
		meta[c.ID] = chunkMetadata{
			DocumentID: c.DocumentID,
			Seq:        c.Seq,
			Category:   c.Category.String(),
			Start:      c.Start,
			End:        c.End,
			Overlap:    c.Overlap,
			Extra:      c.Metadata,
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("flat: creating index directory: %w", err)
	}

	if err := writeVectors(idx, filepath.Join(dir, VectorsFile)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, ChunksFile), texts); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, MetadataFile), meta)
}

// Load reads the artifact triple from dir and reconstructs the index and
// its chunks. Any missing artifact or cardinality disagreement between
// the three files yields domain.ErrInconsistentIndex.
func Load(dir string) (*Index, []domain.Chunk, error) {
	for _, name := range []string{VectorsFile, ChunksFile, MetadataFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, nil, fmt.Errorf("flat: %w: missing artifact %s",
				domain.ErrInconsistentIndex, name)
		}
	}

	idx, ids, err := readVectors(filepath.Join(dir, VectorsFile))
	if err != nil {
		return nil, nil, err
	}

	var texts []chunkTextEntry
	if err := readJSON(filepath.Join(dir, ChunksFile), &texts); err != nil {
		return nil, nil, err
	}

	meta := make(map[string]chunkMetadata)
	if err := readJSON(filepath.Join(dir, MetadataFile), &meta); err != nil {
		return nil, nil, err
	}

	if len(texts) != len(ids) || len(meta) != len(ids) {
		return nil, nil, fmt.Errorf(
			"flat: %w: %d vectors, %d chunk texts, %d metadata entries",
			domain.ErrInconsistentIndex, len(ids), len(texts), len(meta))
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, te := range texts {
		if te.ID != ids[i] {
			return nil, nil, fmt.Errorf("flat: %w: chunk order mismatch at %d",
				domain.ErrInconsistentIndex, i)
		}
		m, ok := meta[te.ID]
		if !ok {
			return nil, nil, fmt.Errorf("flat: %w: no metadata for chunk %s",
				domain.ErrInconsistentIndex, te.ID)
		}
		chunks[i] = domain.Chunk{
			ID:         te.ID,
			DocumentID: m.DocumentID,
			Seq:        m.Seq,
			Text:       te.Text,
			Start:      m.Start,
			End:        m.End,
			Overlap:    m.Overlap,
			Category:   domain.Category(m.Category),
			Metadata:   m.Extra,
		}
	}

	return idx, chunks, nil
}

// writeVectors serialises the vector store: a fixed header followed by
// each chunk ID and its float32 vector, little endian.
func writeVectors(idx *Index, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("flat: creating %s: %w", path, err)
	}
	defer f.Close()

	header := []uint32{
		vectorsMagic,
		vectorsVersion,
		uint32(idx.dimension),
		uint32(len(idx.entries)),
	}
	for _, v := range header {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("flat: writing header: %w", err)
		}
	}
	if err := writeString(f, idx.embedderTag); err != nil {
		return err
	}

	for i := range idx.entries {
		if err := writeString(f, idx.entries[i].chunkID); err != nil {
			return err
		}
		for _, v := range idx.entries[i].vector {
			if err := binary.Write(f, binary.LittleEndian, math.Float32bits(v)); err != nil {
				return fmt.Errorf("flat: writing vector: %w", err)
			}
		}
	}

	return f.Sync()
}

// readVectors deserialises the vector store and returns the rebuilt index
// plus the chunk IDs in storage order.
func readVectors(path string) (*Index, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("flat: opening %s: %w", path, err)
	}
	defer f.Close()

	var magic, version, dim, count uint32
	for _, p := range []*uint32{&magic, &version, &dim, &count} {
		if err := binary.Read(f, binary.LittleEndian, p); err != nil {
			return nil, nil, fmt.Errorf("flat: %w: truncated header", domain.ErrInconsistentIndex)
		}
	}
	if magic != vectorsMagic || version != vectorsVersion {
		return nil, nil, fmt.Errorf("flat: %w: unrecognised vector artifact", domain.ErrInconsistentIndex)
	}

	tag, err := readString(f)
	if err != nil {
		return nil, nil, err
	}

	idx, err := New(int(dim), tag)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		id, err := readString(f)
		if err != nil {
			return nil, nil, err
		}
		vec := make([]float32, dim)
		for j := range vec {
			var bits uint32
			if err := binary.Read(f, binary.LittleEndian, &bits); err != nil {
				return nil, nil, fmt.Errorf("flat: %w: truncated vector data", domain.ErrInconsistentIndex)
			}
			vec[j] = math.Float32frombits(bits)
		}
		idx.byID[id] = len(idx.entries)
		idx.entries = append(idx.entries, entry{chunkID: id, vector: vec})
		ids = append(ids, id)
	}

	return idx, ids, nil
}

func writeString(f *os.File, s string) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s))); err != nil {
		return fmt.Errorf("flat: writing string length: %w", err)
	}
	if _, err := f.WriteString(s); err != nil {
		return fmt.Errorf("flat: writing string: %w", err)
	}
	return nil
}

func readString(f *os.File) (string, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return "", fmt.Errorf("flat: %w: truncated string length", domain.ErrInconsistentIndex)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f, buf); err != nil {
		return "", fmt.Errorf("flat: %w: truncated string", domain.ErrInconsistentIndex)
	}
	return string(buf), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("flat: marshalling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("flat: writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("flat: reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("flat: %w: corrupt %s", domain.ErrInconsistentIndex, filepath.Base(path))
	}
	return nil
}
