package services

import (
	"context"
	"errors"
	"sort"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
)

// fakeEmbedder produces deterministic vectors: the first component is the
// text length, the rest zero. Distinct lengths give distinct distances.
type fakeEmbedder struct {
	model      string
	dimensions int
	embedErr   error
	calls      int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{model: "fake-embed", dimensions: 4}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	v := make([]float32, f.dimensions)
	v[0] = float32(len(text))
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return f.dimensions }
func (f *fakeEmbedder) ModelName() string          { return f.model }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

// fakeIndex is a linear-scan vector index for tests. Like the real
// index, it refuses operations after Close.
type fakeIndex struct {
	tag       string
	dim       int
	vectors   map[string][]float32
	addErr    error
	searchErr error
	closed    bool
}

func newFakeIndex(dim int, tag string) *fakeIndex {
	return &fakeIndex{tag: tag, dim: dim, vectors: make(map[string][]float32)}
}

func (f *fakeIndex) Add(_ context.Context, chunkID string, embedding []float32) error {
	if f.addErr != nil {
		return f.addErr
	}
	if len(embedding) != f.dim {
		return domain.ErrDimensionMismatch
	}
	v := make([]float32, len(embedding))
	copy(v, embedding)
	f.vectors[chunkID] = v
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.closed {
		return nil, errors.New("index is closed")
	}
	hits := make([]driven.VectorHit, 0, len(f.vectors))
	for id, v := range f.vectors {
		var d float64
		for i := range v {
			diff := float64(v[i]) - float64(query[i])
			d += diff * diff
		}
		hits = append(hits, driven.VectorHit{ChunkID: id, Distance: d})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *fakeIndex) Len() int            { return len(f.vectors) }
func (f *fakeIndex) Dimensions() int     { return f.dim }
func (f *fakeIndex) EmbedderTag() string { return f.tag }

func (f *fakeIndex) Close() error {
	f.closed = true
	return nil
}

var _ driven.VectorIndex = (*fakeIndex)(nil)

// fakeLexicons serves a fixed lexicon.
type fakeLexicons struct {
	lexicon *domain.Lexicon
}

func (f *fakeLexicons) Lexicon() *domain.Lexicon { return f.lexicon }
func (f *fakeLexicons) Reload() error            { return nil }
func (f *fakeLexicons) Close() error             { return nil }

var _ driven.LexiconStore = (*fakeLexicons)(nil)

func testLexicon() *domain.Lexicon {
	return &domain.Lexicon{
		Version: "test-1",
		Terms: map[domain.WarningCategory][]string{
			domain.WarningNonPatientUse:       {"family will also use", "shared use"},
			domain.WarningConvenienceLanguage: {"more convenient", "save time"},
			domain.WarningPreferenceLanguage:  {"would prefer"},
		},
	}
}

// fakeGenerator returns a canned letter or a configured error.
type fakeGenerator struct {
	model   string
	letter  string
	err     error
	prompts []string
	// blockUntilDeadline makes Generate wait for the context, simulating
	// a slow model.
	blockUntilDeadline bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.blockUntilDeadline {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.letter, nil
}

func (f *fakeGenerator) ModelName() string {
	if f.model == "" {
		return "fake-gen"
	}
	return f.model
}
func (f *fakeGenerator) Ping(context.Context) error { return nil }
func (f *fakeGenerator) Close() error               { return nil }

var _ driven.Generator = (*fakeGenerator)(nil)

// fakePrompts serves fixed prompt texts.
type fakePrompts struct {
	prompts map[string]string
}

func (f *fakePrompts) Load(name string) (string, error) {
	if text, ok := f.prompts[name]; ok {
		return text, nil
	}
	return "", domain.ErrNotFound
}
func (f *fakePrompts) Reload()     {}
func (f *fakePrompts) Dir() string { return "" }

var _ driven.PromptStore = (*fakePrompts)(nil)

// fakeConfig is a map-backed config store.
type fakeConfig struct {
	values map[string]any
	saves  int
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{values: make(map[string]any)}
}

func (f *fakeConfig) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeConfig) GetString(key string) string {
	if s, ok := f.values[key].(string); ok {
		return s
	}
	return ""
}

func (f *fakeConfig) GetInt(key string) int {
	switch v := f.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (f *fakeConfig) GetBool(key string) bool {
	b, _ := f.values[key].(bool)
	return b
}

func (f *fakeConfig) Set(key string, value any) error {
	f.values[key] = value
	return nil
}

func (f *fakeConfig) Save() error {
	f.saves++
	return nil
}

func (f *fakeConfig) Load() error  { return nil }
func (f *fakeConfig) Path() string { return "" }

var _ driven.ConfigStore = (*fakeConfig)(nil)
