package services

import (
	"fmt"
	"strings"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driven"
)

// defaultLetterPreamble is the fallback system preamble when no
// PromptStore is configured.
const defaultLetterPreamble = `You are a clinical-writing assistant specializing in Letters of Medical Necessity (LOMNs).
Write clear, insurer-facing, evidence-grounded letters using the following rules:

- Use clinical specificity and appropriate justification.
- Incorporate patterns and reasoning from the retrieved evidence, but DO NOT copy text.
- Address payer requirements, diagnosis, treatment history, level of care, and consequences of denial.
- Maintain a professional and formal tone.`

// Assembler packs retrieved evidence into a generation prompt under a
// token budget. Chunks are packed greedily in descending similarity
// order; a chunk that would overflow the budget is skipped whole, never
// truncated mid-sentence.
type Assembler struct {
	prompts driven.PromptStore
}

// NewAssembler creates a new prompt assembler.
// The prompts store is optional; the embedded preamble is used when nil.
func NewAssembler(prompts driven.PromptStore) *Assembler {
	return &Assembler{prompts: prompts}
}

// Assemble builds the generation prompt for the given case facts and
// retrieval result. maxContextTokens bounds the evidence section of the
// prompt. Returns domain.ErrInsufficientContext when not a single chunk
// fits the budget.
func (a *Assembler) Assemble(
	facts domain.CaseFacts, retrieval *domain.RetrievalResult, maxContextTokens int,
) (*domain.Assembly, error) {
	if retrieval == nil || retrieval.Len() == 0 {
		return nil, fmt.Errorf("%w: no evidence retrieved", domain.ErrInsufficientContext)
	}
	if maxContextTokens <= 0 {
		return nil, fmt.Errorf("%w: context budget must be positive", domain.ErrInvalidInput)
	}

	var (
		blocks   []string
		included []domain.Evidence
		used     int
	)

	// Evidence arrives ranked by descending score; greedy fill in that
	// order keeps the strongest precedent inside the budget.
	for _, ev := range retrieval.Evidence {
		block := evidenceBlock(len(included)+1, ev)
		cost := estimateTokens(block)
		if used+cost > maxContextTokens {
			// Skipped whole; a smaller chunk further down may still fit.
			continue
		}
		blocks = append(blocks, block)
		included = append(included, ev)
		used += cost
	}

	if len(included) == 0 {
		return nil, fmt.Errorf(
			"%w: budget of %d tokens fits no chunk; reduce chunk size or increase the budget",
			domain.ErrInsufficientContext, maxContextTokens)
	}

	prompt := fmt.Sprintf(`%s

REQUEST:
%s

EVIDENCE FOR CONTEXT (do not cite explicitly):
%s

Now write the letter of medical necessity in full.`,
		a.preamble(), facts.Query(), strings.Join(blocks, "\n\n"))

	return &domain.Assembly{
		Prompt:     prompt,
		Included:   included,
		TokensUsed: used,
	}, nil
}

// preamble returns the system preamble, preferring the prompt store.
func (a *Assembler) preamble() string {
	if a.prompts == nil {
		return defaultLetterPreamble
	}
	prompt, err := a.prompts.Load(driven.PromptLetterSystem)
	if err != nil || prompt == "" {
		return defaultLetterPreamble
	}
	return prompt
}

// evidenceBlock renders one evidence chunk with its inline source tag.
// The id in the tag lets attribution map prompt segments back to chunks.
func evidenceBlock(n int, ev domain.Evidence) string {
	return fmt.Sprintf("[E%d] id=%s category=%s, diagnosis=%s, payer=%s\n%s",
		n,
		ev.Chunk.ID,
		ev.Chunk.Category,
		ev.Chunk.Metadata["diagnosis"],
		ev.Chunk.Metadata["payer"],
		ev.Chunk.Text)
}

// estimateTokens approximates token count as one token per four
// characters. Crude, but consistent across assembly and reporting.
func estimateTokens(text string) int {
	return len(text) / 4
}
