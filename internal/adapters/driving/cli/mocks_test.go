package cli

import (
	"context"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *driving.IngestReport
	err    error
	docs   []domain.Document
}

func (m *mockIngestService) Ingest(_ context.Context, docs []domain.Document) (*driving.IngestReport, error) {
	m.docs = docs
	return m.report, m.err
}

func (m *mockIngestService) Reindex(_ context.Context) (*driving.IngestReport, error) {
	return m.report, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error
	query  string
	opts   domain.RetrievalOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	query string,
	opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	m.query = query
	m.opts = opts
	if m.result == nil {
		return &domain.RetrievalResult{Query: query, K: opts.K}, m.err
	}
	return m.result, m.err
}

// mockValidationService is a mock implementation of driving.ValidationService.
type mockValidationService struct {
	warnings []domain.Warning
	text     string
}

func (m *mockValidationService) Validate(text string) []domain.Warning {
	m.text = text
	return m.warnings
}

// mockLetterService is a mock implementation of driving.LetterService.
type mockLetterService struct {
	response *domain.LetterResponse
	err      error
	facts    domain.CaseFacts
	opts     driving.DraftOptions
}

func (m *mockLetterService) Draft(
	_ context.Context,
	facts domain.CaseFacts,
	opts driving.DraftOptions,
) (*domain.LetterResponse, error) {
	m.facts = facts
	m.opts = opts
	return m.response, m.err
}

func (m *mockLetterService) Report(_ *domain.GenerationResult) *domain.TransparencyReport {
	if m.response == nil {
		return &domain.TransparencyReport{}
	}
	return &m.response.Report
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
	saved    *domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.settings == nil {
		defaults := domain.DefaultAppSettings()
		return &defaults, m.err
	}
	return m.settings, m.err
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	return m.err
}

// mockEvidenceStore is a mock implementation of driven.EvidenceStore.
type mockEvidenceStore struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.Chunk
	err       error
	deleted   string
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
	return m.chunks, m.err
}

func (m *mockEvidenceStore) ListDocuments(_ context.Context, _ domain.Category) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockEvidenceStore) DeleteDocument(_ context.Context, id string) error {
	m.deleted = id
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

// setupTestServices wires mock services into the command tree and returns
// a cleanup function restoring the previous wiring.
func setupTestServices() func() {
	prevIngest := ingestService
	prevRetrieval := retrievalService
	prevValidation := validationService
	prevLetter := letterService
	prevSettings := settingsService
	prevPersist := persistIndex
	prevStore := evidenceStore

	SetServices(&Services{
		Ingest:     &mockIngestService{report: &driving.IngestReport{}},
		Retrieval:  &mockRetrievalService{},
		Validation: &mockValidationService{},
		Letter:     &mockLetterService{response: &domain.LetterResponse{}},
		Settings:   &mockSettingsService{},
	})
	SetEvidenceStore(&mockEvidenceStore{})

	return func() {
		ingestService = prevIngest
		retrievalService = prevRetrieval
		validationService = prevValidation
		letterService = prevLetter
		settingsService = prevSettings
		persistIndex = prevPersist
		evidenceStore = prevStore
	}
}
