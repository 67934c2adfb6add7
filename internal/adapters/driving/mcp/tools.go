package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

// ErrLetterServiceUnavailable is returned when the draft_letter tool is
// invoked without a configured letter service.
var ErrLetterServiceUnavailable = errors.New("letter service is not configured")

// ErrValidationServiceUnavailable is returned when the validate_text tool
// is invoked without a configured validation service.
var ErrValidationServiceUnavailable = errors.New("validation service is not configured")

// RetrieveInput is the input schema for the retrieve_evidence tool.
type RetrieveInput struct {
	Query    string `json:"query" jsonschema:"the clinical query to retrieve evidence for"`
	K        int    `json:"k,omitempty" jsonschema:"maximum number of evidence chunks to return (default 4)"`
	Category string `json:"category,omitempty" jsonschema:"restrict results to one document category: approved, denied, policy or guideline"`
}

// RetrieveOutput is the output schema for the retrieve_evidence tool.
type RetrieveOutput struct {
	Evidence []EvidenceOutput `json:"evidence"`
	Count    int              `json:"count"`
}

// EvidenceOutput represents a single retrieved evidence chunk.
type EvidenceOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Category   string  `json:"category"`
	Payer      string  `json:"payer,omitempty"`
	Diagnosis  string  `json:"diagnosis,omitempty"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// DraftInput is the input schema for the draft_letter tool.
type DraftInput struct {
	Diagnosis             string `json:"diagnosis,omitempty" jsonschema:"the patient's primary diagnosis"`
	Equipment             string `json:"equipment,omitempty" jsonschema:"the requested equipment or treatment"`
	FunctionalLimitations string `json:"functional_limitations,omitempty" jsonschema:"the patient's functional limitations"`
	Rationale             string `json:"rationale,omitempty" jsonschema:"the clinician's rationale for the request"`
	Payer                 string `json:"payer,omitempty" jsonschema:"the insurance payer the letter is addressed to"`
	PatientAge            int    `json:"patient_age,omitempty" jsonschema:"the patient's age"`
	K                     int    `json:"k,omitempty" jsonschema:"evidence chunks to retrieve (default 4)"`
	Category              string `json:"category,omitempty" jsonschema:"restrict evidence to one document category"`
}

// DraftOutput is the output schema for the draft_letter tool.
type DraftOutput struct {
	GenerationID     string           `json:"generation_id"`
	Letter           string           `json:"letter"`
	Generator        string           `json:"generator"`
	Strength         string           `json:"evidence_strength"`
	MeanScore        float64          `json:"mean_score"`
	Sources          []EvidenceOutput `json:"sources"`
	MissingElements  []string         `json:"missing_elements,omitempty"`
	HedgedSentences  []string         `json:"hedged_sentences,omitempty"`
	LetterWarnings   []WarningOutput  `json:"letter_warnings,omitempty"`
	EvidenceWarnings []WarningOutput  `json:"evidence_warnings,omitempty"`
}

// ValidateInput is the input schema for the validate_text tool.
type ValidateInput struct {
	Text string `json:"text" jsonschema:"the letter text to scan for policy-violation language"`
}

// ValidateOutput is the output schema for the validate_text tool.
type ValidateOutput struct {
	Warnings []WarningOutput `json:"warnings"`
	Count    int             `json:"count"`
}

// WarningOutput represents a single lexicon warning.
type WarningOutput struct {
	Category string `json:"category"`
	Term     string `json:"term"`
	Offset   int    `json:"offset"`
	Source   string `json:"source,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_evidence",
		Description: "Retrieve evidence chunks from the clinical corpus ranked by similarity",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "draft_letter",
		Description: "Draft a Letter of Medical Necessity from case facts, with its transparency report",
	}, s.handleDraft)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_text",
		Description: "Scan letter text for language that violates payer policy",
	}, s.handleValidate)
}

// handleRetrieve handles the retrieve_evidence tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = domain.DefaultK
	}

	opts := domain.RetrievalOptions{
		K:        k,
		Category: domain.Category(input.Category),
	}
	result, err := s.ports.Retrieval.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Evidence: make([]EvidenceOutput, len(result.Evidence)),
		Count:    len(result.Evidence),
	}
	for i := range result.Evidence {
		output.Evidence[i] = evidenceOutput(result.Evidence[i])
	}

	return nil, output, nil
}

// handleDraft handles the draft_letter tool invocation.
func (s *Server) handleDraft(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DraftInput,
) (*mcp.CallToolResult, DraftOutput, error) {
	if s.ports.Letter == nil {
		return nil, DraftOutput{}, ErrLetterServiceUnavailable
	}

	facts := domain.CaseFacts{
		Diagnosis:             input.Diagnosis,
		Equipment:             input.Equipment,
		FunctionalLimitations: input.FunctionalLimitations,
		Rationale:             input.Rationale,
		Payer:                 input.Payer,
		PatientAge:            input.PatientAge,
	}
	opts := driving.DraftOptions{
		K:        input.K,
		Category: domain.Category(input.Category),
	}

	resp, err := s.ports.Letter.Draft(ctx, facts, opts)
	if err != nil {
		return nil, DraftOutput{}, err
	}

	output := DraftOutput{
		GenerationID:     resp.Result.ID,
		Letter:           resp.Result.Letter,
		Generator:        resp.Result.GeneratorID,
		Strength:         string(resp.Report.Strength),
		MeanScore:        resp.Report.MeanScore,
		Sources:          make([]EvidenceOutput, len(resp.Result.Assembly.Included)),
		LetterWarnings:   warningOutputs(resp.Report.LetterWarnings),
		EvidenceWarnings: warningOutputs(resp.EvidenceWarnings),
	}
	for i := range resp.Result.Assembly.Included {
		output.Sources[i] = evidenceOutput(resp.Result.Assembly.Included[i])
	}
	for _, gap := range resp.Report.Gaps {
		output.MissingElements = append(output.MissingElements, string(gap))
	}
	for _, marker := range resp.Report.Uncertainty {
		output.HedgedSentences = append(output.HedgedSentences, marker.Sentence)
	}

	return nil, output, nil
}

// handleValidate handles the validate_text tool invocation.
func (s *Server) handleValidate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	if s.ports.Validation == nil {
		return nil, ValidateOutput{}, ErrValidationServiceUnavailable
	}

	warnings := s.ports.Validation.Validate(input.Text)

	output := ValidateOutput{
		Warnings: warningOutputs(warnings),
		Count:    len(warnings),
	}
	return nil, output, nil
}

func evidenceOutput(ev domain.Evidence) EvidenceOutput {
	return EvidenceOutput{
		ChunkID:    ev.Chunk.ID,
		DocumentID: ev.Chunk.DocumentID,
		Category:   string(ev.Chunk.Category),
		Payer:      ev.Chunk.Metadata["payer"],
		Diagnosis:  ev.Chunk.Metadata["diagnosis"],
		Score:      ev.Score,
		Text:       ev.Chunk.Text,
	}
}

func warningOutputs(warnings []domain.Warning) []WarningOutput {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]WarningOutput, len(warnings))
	for i, w := range warnings {
		out[i] = WarningOutput{
			Category: string(w.Category),
			Term:     w.Term,
			Offset:   w.Offset,
			Source:   w.Source,
		}
	}
	return out
}
