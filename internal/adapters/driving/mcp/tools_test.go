package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked evidence", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			result: &domain.RetrievalResult{
				Query: "power wheelchair",
				K:     4,
				Evidence: []domain.Evidence{
					{
						Chunk: domain.Chunk{
							ID:         "doc-1#0000",
							DocumentID: "doc-1",
							Text:       "Power mobility devices are covered when",
							Category:   domain.CategoryGuideline,
							Metadata: map[string]string{
								"payer":     "Acme Health",
								"diagnosis": "cerebral palsy",
							},
						},
						Score: 0.95,
					},
				},
			},
		}

		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := RetrieveInput{Query: "power wheelchair", K: 4}
		_, output, err := server.handleRetrieve(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Len(t, output.Evidence, 1)
		assert.Equal(t, "doc-1#0000", output.Evidence[0].ChunkID)
		assert.Equal(t, "doc-1", output.Evidence[0].DocumentID)
		assert.Equal(t, "guideline", output.Evidence[0].Category)
		assert.Equal(t, "Acme Health", output.Evidence[0].Payer)
		assert.Equal(t, "cerebral palsy", output.Evidence[0].Diagnosis)
		assert.Equal(t, 0.95, output.Evidence[0].Score)
		assert.Equal(t, "Power mobility devices are covered when", output.Evidence[0].Text)
	})

	t.Run("default k is applied", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			result: &domain.RetrievalResult{},
		}
		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := RetrieveInput{Query: "test", K: 0}
		_, output, err := server.handleRetrieve(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, domain.DefaultK, mockRetrieval.opts.K)
	})

	t.Run("category filter is forwarded", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			result: &domain.RetrievalResult{},
		}
		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := RetrieveInput{Query: "test", Category: "approved"}
		_, _, err = server.handleRetrieve(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, domain.CategoryApproved, mockRetrieval.opts.Category)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			err: errors.New("index unavailable"),
		}

		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := RetrieveInput{Query: "test"}
		_, _, err = server.handleRetrieve(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "index unavailable")
	})
}

func TestServer_handleDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("returns letter with report", func(t *testing.T) {
		mockLetter := &mockLetterService{
			response: &domain.LetterResponse{
				Result: domain.GenerationResult{
					ID:          "gen-1",
					Letter:      "Dear reviewer, this letter documents medical necessity.",
					GeneratorID: "test-model",
					Assembly: domain.Assembly{
						Included: []domain.Evidence{
							{
								Chunk: domain.Chunk{
									ID:         "doc-1#0000",
									DocumentID: "doc-1",
									Category:   domain.CategoryApproved,
								},
								Score: 0.8,
							},
						},
					},
				},
				Report: domain.TransparencyReport{
					GenerationID: "gen-1",
					Strength:     domain.StrengthModerate,
					MeanScore:    0.8,
					Gaps:         []domain.RequiredElement{domain.ElementTreatmentHistory},
					Uncertainty: []domain.UncertaintyMarker{
						{Sentence: "The patient may benefit.", Terms: []string{"may"}},
					},
				},
				EvidenceWarnings: []domain.Warning{
					{Category: domain.WarningConvenienceLanguage, Term: "more convenient", Offset: 12, Source: "doc-1#0000"},
				},
			},
		}

		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Letter:    mockLetter,
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := DraftInput{
			Diagnosis: "cerebral palsy",
			Equipment: "power wheelchair",
		}
		_, output, err := server.handleDraft(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "gen-1", output.GenerationID)
		assert.Equal(t, "Dear reviewer, this letter documents medical necessity.", output.Letter)
		assert.Equal(t, "test-model", output.Generator)
		assert.Equal(t, "moderate", output.Strength)
		assert.Equal(t, 0.8, output.MeanScore)
		assert.Len(t, output.Sources, 1)
		assert.Equal(t, "doc-1#0000", output.Sources[0].ChunkID)
		assert.Equal(t, []string{"treatment_history"}, output.MissingElements)
		assert.Equal(t, []string{"The patient may benefit."}, output.HedgedSentences)
		require.Len(t, output.EvidenceWarnings, 1)
		assert.Equal(t, "convenience_language", output.EvidenceWarnings[0].Category)
		assert.Equal(t, "doc-1#0000", output.EvidenceWarnings[0].Source)

		assert.Equal(t, "cerebral palsy", mockLetter.facts.Diagnosis)
		assert.Equal(t, "power wheelchair", mockLetter.facts.Equipment)
	})

	t.Run("missing letter service returns error", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleDraft(ctx, nil, DraftInput{Diagnosis: "x"})
		assert.ErrorIs(t, err, ErrLetterServiceUnavailable)
	})

	t.Run("returns error on draft failure", func(t *testing.T) {
		mockLetter := &mockLetterService{err: errors.New("generation failed")}
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Letter:    mockLetter,
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleDraft(ctx, nil, DraftInput{Diagnosis: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "generation failed")
	})
}

func TestServer_handleValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns warnings", func(t *testing.T) {
		mockValidation := &mockValidationService{
			warnings: []domain.Warning{
				{Category: domain.WarningNonPatientUse, Term: "family will also use", Offset: 4},
			},
		}
		ports := &Ports{
			Retrieval:  &mockRetrievalService{},
			Validation: mockValidation,
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ValidateInput{Text: "The family will also use the equipment."}
		_, output, err := server.handleValidate(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Warnings, 1)
		assert.Equal(t, "non_patient_use", output.Warnings[0].Category)
		assert.Equal(t, "family will also use", output.Warnings[0].Term)
		assert.Equal(t, 4, output.Warnings[0].Offset)
	})

	t.Run("clean text yields no warnings", func(t *testing.T) {
		ports := &Ports{
			Retrieval:  &mockRetrievalService{},
			Validation: &mockValidationService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleValidate(ctx, nil, ValidateInput{Text: "clean"})
		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Warnings)
	})

	t.Run("missing validation service returns error", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleValidate(ctx, nil, ValidateInput{Text: "x"})
		assert.ErrorIs(t, err, ErrValidationServiceUnavailable)
	})
}
