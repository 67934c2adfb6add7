package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

func TestEvidenceStore_SaveAndGetDocument(t *testing.T) {
	store := NewEvidenceStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:       "lomn-001",
		Category: domain.CategoryApproved,
		Payer:    "Aetna",
		Body:     "letter body",
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "lomn-001")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.Payer, got.Payer)
}

func TestEvidenceStore_GetDocument_NotFound(t *testing.T) {
	store := NewEvidenceStore()
	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvidenceStore_SaveChunks_ReplacesPrevious(t *testing.T) {
	store := NewEvidenceStore()
	ctx := context.Background()

	first := []domain.Chunk{
		{ID: "d#0000", DocumentID: "d", Seq: 0, Text: "old"},
		{ID: "d#0001", DocumentID: "d", Seq: 1, Text: "old2"},
	}
	require.NoError(t, store.SaveChunks(ctx, first))

	second := []domain.Chunk{{ID: "d#0000", DocumentID: "d", Seq: 0, Text: "new"}}
	require.NoError(t, store.SaveChunks(ctx, second))

	chunks, err := store.GetChunks(ctx, "d")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new", chunks[0].Text)

	_, err = store.GetChunk(ctx, "d#0001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvidenceStore_SaveChunks_MixedDocuments(t *testing.T) {
	store := NewEvidenceStore()
	err := store.SaveChunks(context.Background(), []domain.Chunk{
		{ID: "a#0000", DocumentID: "a"},
		{ID: "b#0000", DocumentID: "b"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEvidenceStore_GetChunks_SequenceOrder(t *testing.T) {
	store := NewEvidenceStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "d#0002", DocumentID: "d", Seq: 2},
		{ID: "d#0000", DocumentID: "d", Seq: 0},
		{ID: "d#0001", DocumentID: "d", Seq: 1},
	}))

	chunks, err := store.GetChunks(ctx, "d")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Seq)
	}
}

func TestEvidenceStore_ListDocuments_CategoryFilter(t *testing.T) {
	store := NewEvidenceStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "a", Category: domain.CategoryApproved, Body: "x"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "p", Category: domain.CategoryPolicy, Body: "y"}))

	all, err := store.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	policies, err := store.ListDocuments(ctx, domain.CategoryPolicy)
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, "p", policies[0].ID)

	none, err := store.ListDocuments(ctx, domain.CategoryGuideline)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEvidenceStore_DeleteDocument(t *testing.T) {
	store := NewEvidenceStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "d", Category: domain.CategoryDenied, Body: "x"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{{ID: "d#0000", DocumentID: "d", Seq: 0}}))

	require.NoError(t, store.DeleteDocument(ctx, "d"))

	_, err := store.GetDocument(ctx, "d")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetChunk(ctx, "d#0000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
