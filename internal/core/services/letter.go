package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
	"github.com/lomnlabs/lomn-cli/internal/logger"
)

// Default generation bounds.
const (
	defaultGenerationTimeout = 120 * time.Second
	defaultMaxLetterTokens   = 2048
	defaultTemperature       = 0.3
)

// LetterService orchestrates the query-time path: retrieve evidence,
// validate it, assemble the prompt, call the generator and derive the
// transparency report. A letter is never returned without its report.
type LetterService struct {
	retrieval *RetrievalService
	validator *ValidationService
	assembler *Assembler
	reporter  *Reporter
	generator driven.Generator
	timeout   time.Duration
}

var _ driving.LetterService = (*LetterService)(nil)

// NewLetterService creates a new letter service. The generator may be nil
// when no provider is configured; Draft then fails with
// domain.ErrGeneratorUnavailable. A zero timeout uses the default.
func NewLetterService(
	retrieval *RetrievalService,
	validator *ValidationService,
	assembler *Assembler,
	reporter *Reporter,
	generator driven.Generator,
	timeout time.Duration,
) *LetterService {
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &LetterService{
		retrieval: retrieval,
		validator: validator,
		assembler: assembler,
		reporter:  reporter,
		generator: generator,
		timeout:   timeout,
	}
}

// Draft produces a letter for the given case facts together with its
// evidence list and transparency report.
func (s *LetterService) Draft(
	ctx context.Context,
	facts domain.CaseFacts,
	opts driving.DraftOptions,
) (*domain.LetterResponse, error) {
	logger.Section("Letter Draft")

	query := facts.Query()
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: case facts are empty", domain.ErrInvalidInput)
	}
	if s.generator == nil {
		return nil, fmt.Errorf("%w: configure a generator with 'lomn settings'", domain.ErrGeneratorUnavailable)
	}

	retrieval, err := s.retrieval.Retrieve(ctx, query, domain.RetrievalOptions{
		K:        opts.K,
		Category: opts.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving evidence: %w", err)
	}

	evidenceWarnings := s.validateEvidence(retrieval.Evidence)

	budget := opts.MaxContextTokens
	if budget <= 0 {
		budget = domain.DefaultMaxContextTokens
	}
	assembly, err := s.assembler.Assemble(facts, retrieval, budget)
	if err != nil {
		return nil, fmt.Errorf("assembling prompt: %w", err)
	}
	logger.Info("Assembled prompt with %d evidence chunks (~%d tokens)",
		len(assembly.Included), assembly.TokensUsed)

	letter, err := s.generate(ctx, assembly.Prompt)
	if err != nil {
		return nil, err
	}

	result := domain.GenerationResult{
		ID:          uuid.New().String(),
		Letter:      letter,
		Facts:       facts,
		Assembly:    *assembly,
		Retrieval:   *retrieval,
		GeneratorID: s.generator.ModelName(),
		CreatedAt:   time.Now().UTC(),
	}

	report := s.reporter.Report(&result)
	logger.Info("Generated letter %s (strength: %s)", result.ID, report.Strength)

	return &domain.LetterResponse{
		Result:           result,
		EvidenceWarnings: evidenceWarnings,
		Report:           *report,
	}, nil
}

// Report recomputes the transparency report for a generation result.
func (s *LetterService) Report(result *domain.GenerationResult) *domain.TransparencyReport {
	return s.reporter.Report(result)
}

// generate calls the generator under the service deadline. Deadline
// expiry maps to ErrGenerationTimeout; any other failure or empty output
// maps to ErrGenerationFailed.
func (s *LetterService) generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger.Debug("Calling generator %s (timeout %s)", s.generator.ModelName(), s.timeout)

	text, err := s.generator.Generate(genCtx, prompt, driven.GenerateOptions{
		MaxTokens:   defaultMaxLetterTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", domain.ErrGenerationTimeout, s.timeout)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: generator returned empty output", domain.ErrGenerationFailed)
	}
	return text, nil
}

// validateEvidence runs the lexicon validator over each retrieved chunk
// before it is used. Warnings inform the caller; they never block.
func (s *LetterService) validateEvidence(evidence []domain.Evidence) []domain.Warning {
	if s.validator == nil {
		return nil
	}
	var warnings []domain.Warning
	for _, ev := range evidence {
		for _, w := range s.validator.Validate(ev.Chunk.Text) {
			w.Source = ev.Chunk.ID
			warnings = append(warnings, w)
		}
	}
	if len(warnings) > 0 {
		logger.Warn("Evidence raised %d lexicon warnings", len(warnings))
	}
	return warnings
}
