package domain

import "time"

// Assembly is a generation prompt together with the exact evidence that
// was packed into it. The transparency reporter attributes against
// Included, never against the wider retrieval result, so chunks dropped
// by the context budget are never claimed as sources.
type Assembly struct {
	// Prompt is the full prompt text sent to the generator.
	Prompt string

	// Included is the evidence embedded in the prompt, in pack order
	// (descending score).
	Included []Evidence

	// TokensUsed is the estimated token count of the prompt.
	TokensUsed int
}

// IncludedChunkIDs returns the IDs of chunks embedded in the prompt.
func (a *Assembly) IncludedChunkIDs() []string {
	ids := make([]string, len(a.Included))
	for i := range a.Included {
		ids[i] = a.Included[i].Chunk.ID
	}
	return ids
}

// GenerationResult captures one generation call and everything that fed it.
// Created once per call and immutable thereafter; the transparency report
// is always recomputable from this value alone.
type GenerationResult struct {
	// ID uniquely identifies this generation.
	ID string

	// Letter is the generated letter text.
	Letter string

	// Facts are the case facts the letter was requested for.
	Facts CaseFacts

	// Assembly is the prompt and the evidence packed into it.
	Assembly Assembly

	// Retrieval is the full retrieval result that fed assembly,
	// including chunks the budget later dropped.
	Retrieval RetrievalResult

	// GeneratorID identifies the generator model used.
	GeneratorID string

	// CreatedAt is when the generation completed.
	CreatedAt time.Time
}
