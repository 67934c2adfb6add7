package mcp

import (
	"context"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error
	opts   domain.RetrievalOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	_ string,
	opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	m.opts = opts
	return m.result, m.err
}

// mockLetterService is a mock implementation of driving.LetterService.
type mockLetterService struct {
	response *domain.LetterResponse
	err      error
	facts    domain.CaseFacts
}

func (m *mockLetterService) Draft(
	_ context.Context,
	facts domain.CaseFacts,
	_ driving.DraftOptions,
) (*domain.LetterResponse, error) {
	m.facts = facts
	return m.response, m.err
}

func (m *mockLetterService) Report(_ *domain.GenerationResult) *domain.TransparencyReport {
	if m.response == nil {
		return &domain.TransparencyReport{}
	}
	return &m.response.Report
}

// mockValidationService is a mock implementation of driving.ValidationService.
type mockValidationService struct {
	warnings []domain.Warning
}

func (m *mockValidationService) Validate(_ string) []domain.Warning {
	return m.warnings
}

// mockEvidenceStore is a mock implementation of driven.EvidenceStore.
type mockEvidenceStore struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockEvidenceStore) SaveDocument(_ context.Context, _ *domain.Document) error {
	return m.err
}

func (m *mockEvidenceStore) SaveChunks(_ context.Context, _ []domain.Chunk) error {
	return m.err
}

func (m *mockEvidenceStore) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockEvidenceStore) GetChunk(_ context.Context, _ string) (*domain.Chunk, error) {
	return nil, m.err
}

func (m *mockEvidenceStore) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockEvidenceStore) ListDocuments(_ context.Context, _ domain.Category) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockEvidenceStore) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockEvidenceStore) SaveEmbedding(_ context.Context, _ string, _ []float32) error {
	return m.err
}

func (m *mockEvidenceStore) ChunkEmbeddings(_ context.Context) ([]driven.ChunkEmbedding, error) {
	return nil, m.err
}

func (m *mockEvidenceStore) SaveEmbedderTag(_ context.Context, _ string) error {
	return m.err
}

func (m *mockEvidenceStore) EmbedderTag(_ context.Context) (string, error) {
	return "", m.err
}
