package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names with a built-in default return that default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptRequirementExtraction turns one chunk of text into requirement records.
	// The template expects {{previous}}, {{instruction}} and {{text}} placeholders.
	PromptRequirementExtraction = "requirement_extraction"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its built-in prompt.
	SetPromptStore(store PromptStore)
}
