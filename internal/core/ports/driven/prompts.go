package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. Templates use fmt verbs with explicit argument
// indexes so that edited prompts may reorder them.
const (
	// PromptSystem is the system message sent with every suggestion request.
	// No placeholders.
	PromptSystem = "system"

	// PromptSuggestCodes asks for codes for a selected passage.
	// %[1]s selected text, %[2]s document context block (may be empty),
	// %[3]s existing code names.
	PromptSuggestCodes = "suggest_codes"

	// PromptSuggestRefinements asks for codebook refinements.
	// %[1]s bullet list of codes with excerpt and document counts.
	PromptSuggestRefinements = "suggest_refinements"

	// PromptSuggestThemes asks for themes grouping the codes.
	// %[1]s bullet list of codes with excerpt counts.
	PromptSuggestThemes = "suggest_themes"

	// PromptSummarize asks for a summary of a code or theme.
	// %[1]s kind, %[2]s name, %[3]d total excerpts, %[4]s sample excerpts,
	// %[5]s document titles.
	PromptSummarize = "summarize"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses built-in default prompts.
	SetPromptStore(store PromptStore)
}
