package services

import (
	"strings"

	"github.com/lomnlabs/lomn-cli/internal/core/domain"
	"github.com/lomnlabs/lomn-cli/internal/core/ports/driving"
)

// Evidence strength thresholds. The tier rule is deterministic:
//
//	strong:   guideline AND approved sources present, mean score >= 0.50
//	moderate: guideline OR approved source present, mean score >= 0.35
//	limited:  everything else
const (
	strongMeanScore   = 0.50
	moderateMeanScore = 0.35
)

// stakeholderIndicators maps each perspective to the lexical indicators
// checked for in generated letters.
var stakeholderIndicators = map[domain.Stakeholder][]string{
	domain.StakeholderProvider: {
		"physician", "provider", "clinician", "my patient", "treatment plan", "prescribed",
	},
	domain.StakeholderPatient: {
		"the patient", "patient's", "functional", "daily living", "independence",
	},
	domain.StakeholderInsurer: {
		"coverage", "policy", "medically necessary", "criteria", "payer", "plan benefits",
	},
}

// hedgeTerms are uncertainty indicators scanned for sentence by sentence.
var hedgeTerms = []string{
	"may", "might", "could", "possibly", "appears to", "seems to",
	"unclear", "uncertain", "potentially",
}

// requiredElementKeywords maps each required letter element to the
// keywords whose absence marks the element as a gap.
var requiredElementKeywords = map[domain.RequiredElement][]string{
	domain.ElementFunctionalAssessment: {
		"functional", "mobility", "activities of daily living", "ambulate", "transfer",
	},
	domain.ElementEquipmentSpecification: {
		"equipment", "device", "wheelchair", "model", "specification",
	},
	domain.ElementDiagnosisStatement: {
		"diagnosis", "diagnosed", "icd",
	},
	domain.ElementTreatmentHistory: {
		"treatment history", "previously", "trialed", "prior treatment", "failed",
	},
	domain.ElementDenialConsequences: {
		"denial", "denied", "without this", "deterioration", "decline",
	},
}

// Reporter derives transparency reports from generation results. Every
// sub-analysis is a pure function of the result and static configuration,
// so a report can always be recomputed from a persisted result.
type Reporter struct {
	validator driving.ValidationService
}

// NewReporter creates a new transparency reporter.
// The validator is optional; without it letter warnings are omitted.
func NewReporter(validator driving.ValidationService) *Reporter {
	return &Reporter{validator: validator}
}

// Report builds the transparency report for a generation result.
func (r *Reporter) Report(result *domain.GenerationResult) *domain.TransparencyReport {
	report := &domain.TransparencyReport{
		GenerationID: result.ID,
		Attributions: attributions(result.Assembly.Included),
		Stakeholders: stakeholderCoverage(result.Letter),
		Uncertainty:  uncertaintyMarkers(result.Letter),
		Gaps:         elementGaps(result.Letter),
	}

	report.MeanScore = meanScore(result.Assembly.Included)
	report.Strength = evidenceStrength(result.Assembly.Included, report.MeanScore)

	if r.validator != nil {
		report.LetterWarnings = r.validator.Validate(result.Letter)
	}

	return report
}

// attributions lists exactly the chunks embedded in the prompt. Chunks
// retrieved but dropped by the context budget are never attributed.
func attributions(included []domain.Evidence) []domain.SourceAttribution {
	result := make([]domain.SourceAttribution, len(included))
	for i, ev := range included {
		result[i] = domain.SourceAttribution{
			ChunkID:    ev.Chunk.ID,
			DocumentID: ev.Chunk.DocumentID,
			Category:   ev.Chunk.Category,
			Payer:      ev.Chunk.Metadata["payer"],
			Diagnosis:  ev.Chunk.Metadata["diagnosis"],
			Score:      ev.Score,
		}
	}
	return result
}

// meanScore averages the similarity of the attributed evidence.
func meanScore(included []domain.Evidence) float64 {
	if len(included) == 0 {
		return 0
	}
	var sum float64
	for _, ev := range included {
		sum += ev.Score
	}
	return sum / float64(len(included))
}

// evidenceStrength applies the tier rule over the attributed evidence.
func evidenceStrength(included []domain.Evidence, mean float64) domain.EvidenceStrength {
	var hasGuideline, hasApproved bool
	for _, ev := range included {
		switch ev.Chunk.Category {
		case domain.CategoryGuideline:
			hasGuideline = true
		case domain.CategoryApproved:
			hasApproved = true
		}
	}

	switch {
	case hasGuideline && hasApproved && mean >= strongMeanScore:
		return domain.StrengthStrong
	case (hasGuideline || hasApproved) && mean >= moderateMeanScore:
		return domain.StrengthModerate
	default:
		return domain.StrengthLimited
	}
}

// stakeholderCoverage checks each perspective's indicators against the
// letter, in fixed reporting order.
func stakeholderCoverage(letter string) []domain.StakeholderCoverage {
	lowered := strings.ToLower(letter)

	coverage := make([]domain.StakeholderCoverage, 0, len(domain.Stakeholders()))
	for _, stakeholder := range domain.Stakeholders() {
		var matched []string
		for _, term := range stakeholderIndicators[stakeholder] {
			if containsTerm(lowered, term) {
				matched = append(matched, term)
			}
		}
		coverage = append(coverage, domain.StakeholderCoverage{
			Stakeholder:  stakeholder,
			Covered:      len(matched) > 0,
			MatchedTerms: matched,
		})
	}
	return coverage
}

// uncertaintyMarkers returns the letter's sentences containing hedge
// language, in order of appearance.
func uncertaintyMarkers(letter string) []domain.UncertaintyMarker {
	var markers []domain.UncertaintyMarker

	for _, sentence := range splitSentences(letter) {
		lowered := strings.ToLower(sentence)
		var found []string
		for _, term := range hedgeTerms {
			if containsTerm(lowered, term) {
				found = append(found, term)
			}
		}
		if len(found) > 0 {
			markers = append(markers, domain.UncertaintyMarker{
				Sentence: sentence,
				Terms:    found,
			})
		}
	}
	return markers
}

// elementGaps returns the required elements whose keywords are all
// absent from the letter, in fixed reporting order.
func elementGaps(letter string) []domain.RequiredElement {
	lowered := strings.ToLower(letter)

	var gaps []domain.RequiredElement
	for _, element := range domain.RequiredElements() {
		present := false
		for _, keyword := range requiredElementKeywords[element] {
			if containsTerm(lowered, keyword) {
				present = true
				break
			}
		}
		if !present {
			gaps = append(gaps, element)
		}
	}
	return gaps
}

// containsTerm reports whether the lowered text contains the term.
// Single-word terms match on word boundaries so "may" does not match
// "mayor"; multi-word terms match as substrings.
func containsTerm(lowered, term string) bool {
	term = strings.ToLower(term)
	if strings.ContainsRune(term, ' ') {
		return strings.Contains(lowered, term)
	}
	for _, word := range strings.FieldsFunc(lowered, func(r rune) bool {
		return !isWordRune(r)
	}) {
		if word == term {
			return true
		}
	}
	return false
}

// isWordRune reports whether r is part of a word for boundary matching.
func isWordRune(r rune) bool {
	return r == '\'' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// splitSentences splits letter text into sentences.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	// Don't forget the last sentence
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
