package driven

// Prompt names used with PromptStore.Load.
const (
	// PromptLetterSystem is the system preamble placed ahead of the
	// evidence block when drafting a letter.
	PromptLetterSystem = "letter_system"
)

// PromptStore provides access to LLM prompt templates.
// Implementations may load from user-editable files with embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads.
	Reload()

	// Dir returns the prompt directory path.
	Dir() string
}
