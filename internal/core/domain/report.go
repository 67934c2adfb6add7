package domain

// Stakeholder is a perspective the system checks for representation in
// generated letters.
type Stakeholder string

// Available stakeholder perspectives.
const (
	// StakeholderProvider is the prescribing clinician's perspective.
	StakeholderProvider Stakeholder = "provider"

	// StakeholderPatient is the patient's perspective.
	StakeholderPatient Stakeholder = "patient"

	// StakeholderInsurer is the payer's perspective.
	StakeholderInsurer Stakeholder = "insurer"
)

// Stakeholders lists all checked perspectives in reporting order.
func Stakeholders() []Stakeholder {
	return []Stakeholder{StakeholderProvider, StakeholderPatient, StakeholderInsurer}
}

// EvidenceStrength is the tiered label summarising how well the letter is
// grounded in retrieved evidence.
type EvidenceStrength string

// Available evidence strength tiers.
const (
	// StrengthStrong: guideline and approved precedent present with high
	// mean similarity.
	StrengthStrong EvidenceStrength = "strong"

	// StrengthModerate: guideline or approved precedent present with
	// reasonable mean similarity.
	StrengthModerate EvidenceStrength = "moderate"

	// StrengthLimited: neither condition met.
	StrengthLimited EvidenceStrength = "limited"
)

// RequiredElement is a content element a complete Letter of Medical
// Necessity is expected to contain.
type RequiredElement string

// Available required elements.
const (
	// ElementFunctionalAssessment describes the patient's functional status.
	ElementFunctionalAssessment RequiredElement = "functional_assessment"

	// ElementEquipmentSpecification identifies the specific equipment requested.
	ElementEquipmentSpecification RequiredElement = "equipment_specification"

	// ElementDiagnosisStatement states the diagnosis being treated.
	ElementDiagnosisStatement RequiredElement = "diagnosis_statement"

	// ElementTreatmentHistory covers prior treatments tried and failed.
	ElementTreatmentHistory RequiredElement = "treatment_history"

	// ElementDenialConsequences covers the consequences of denial.
	ElementDenialConsequences RequiredElement = "denial_consequences"
)

// RequiredElements lists all checked elements in reporting order.
func RequiredElements() []RequiredElement {
	return []RequiredElement{
		ElementFunctionalAssessment,
		ElementEquipmentSpecification,
		ElementDiagnosisStatement,
		ElementTreatmentHistory,
		ElementDenialConsequences,
	}
}

// SourceAttribution records one evidence chunk that was actually embedded
// in the generation prompt.
type SourceAttribution struct {
	// ChunkID is the chunk embedded in the prompt.
	ChunkID string

	// DocumentID is the chunk's source document.
	DocumentID string

	// Category is the source document category.
	Category Category

	// Payer is the source document payer, if any.
	Payer string

	// Diagnosis is the source document diagnosis, if any.
	Diagnosis string

	// Score is the similarity score the chunk was retrieved with.
	Score float64
}

// StakeholderCoverage records whether lexical indicators for one
// perspective appear in the generated letter.
type StakeholderCoverage struct {
	// Stakeholder is the perspective checked.
	Stakeholder Stakeholder

	// Covered is true if at least one indicator term appears.
	Covered bool

	// MatchedTerms are the indicator terms found.
	MatchedTerms []string
}

// UncertaintyMarker is a sentence in the generated letter containing
// hedge language.
type UncertaintyMarker struct {
	// Sentence is the hedged sentence.
	Sentence string

	// Terms are the hedge terms found in it.
	Terms []string
}

// TransparencyReport is the derived, read-only analysis of one generation.
// It is never persisted as a source of truth: it is always recomputable
// deterministically from the GenerationResult and static configuration.
type TransparencyReport struct {
	// GenerationID links back to the generation analysed.
	GenerationID string

	// Attributions lists exactly the chunks embedded in the prompt,
	// no extras and no omissions.
	Attributions []SourceAttribution

	// Stakeholders is coverage per perspective, in Stakeholders() order.
	Stakeholders []StakeholderCoverage

	// Strength is the tiered evidence strength label.
	Strength EvidenceStrength

	// MeanScore is the mean similarity of the attributed evidence.
	MeanScore float64

	// Uncertainty lists hedged sentences in the letter.
	Uncertainty []UncertaintyMarker

	// Gaps lists required elements absent from the letter.
	Gaps []RequiredElement

	// LetterWarnings are lexicon warnings raised against the letter text.
	LetterWarnings []Warning
}

// LetterResponse is the single structured output delivered to callers:
// a generated letter is never delivered without its evidence list and
// transparency report.
type LetterResponse struct {
	// Result is the generation result, including letter, prompt and
	// retrieval.
	Result GenerationResult

	// EvidenceWarnings are lexicon warnings raised against the retrieved
	// evidence before it was used.
	EvidenceWarnings []Warning

	// Report is the transparency report derived from Result.
	Report TransparencyReport
}
