package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the
// binary, or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptReasoning is the decision-step prompt. The template expects
	// placeholders for the query, the context summary, the available
	// tools, and the remaining step budget.
	PromptReasoning = "reasoning"

	// PromptSynthesis is the final brief prompt. The template expects
	// placeholders for the query and the formatted source sections.
	PromptSynthesis = "synthesis"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. If no store is injected, services fall back to their
// embedded defaults.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable
	// prompts.
	SetPromptStore(store PromptStore)
}
