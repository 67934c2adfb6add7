package domain

// WarningCategory classifies a policy-violation lexicon match.
// These correspond to argument patterns payers reject in Letters of
// Medical Necessity.
type WarningCategory string

// Available warning categories.
const (
	// WarningConvenienceLanguage flags arguments from caregiver or
	// household convenience rather than medical need.
	WarningConvenienceLanguage WarningCategory = "convenience_language"

	// WarningNonPatientUse flags suggestions that anyone other than the
	// patient will use the equipment.
	WarningNonPatientUse WarningCategory = "non_patient_use"

	// WarningPreferenceLanguage flags framing the request as a preference
	// rather than a necessity.
	WarningPreferenceLanguage WarningCategory = "preference_language"

	// WarningCostArgument flags cost-based justification.
	WarningCostArgument WarningCategory = "cost_argument"

	// WarningVagueWellbeing flags vague quality-of-life claims without
	// functional specifics.
	WarningVagueWellbeing WarningCategory = "vague_wellbeing"
)

// IsValid returns true if the warning category is recognised.
func (c WarningCategory) IsValid() bool {
	switch c {
	case WarningConvenienceLanguage, WarningNonPatientUse,
		WarningPreferenceLanguage, WarningCostArgument, WarningVagueWellbeing:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c WarningCategory) String() string {
	return string(c)
}

// Warning is a single lexicon match in a piece of text. Warnings annotate
// the text and never block generation.
type Warning struct {
	// Category is the lexicon category that matched.
	Category WarningCategory

	// Term is the lexicon term that matched.
	Term string

	// Offset is the byte position of the match in the scanned text.
	Offset int

	// Source optionally identifies the scanned text, e.g. the chunk ID
	// when evidence was validated. Empty when the letter itself was.
	Source string
}

// Lexicon maps each warning category to its matched terms. Matching is
// case-insensitive substring matching. The lexicon is loaded once at
// startup into immutable state; reloads swap the whole value.
type Lexicon struct {
	// Version identifies the lexicon revision.
	Version string

	// Terms maps warning categories to their indicator terms.
	Terms map[WarningCategory][]string
}
