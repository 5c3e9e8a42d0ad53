package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptDocumentSystem is the system prompt for document question answering.
	// This prompt has no format placeholders.
	PromptDocumentSystem = "document_system"

	// PromptDocumentQuestion wraps the assembled context and the question.
	// The prompt template expects two %s placeholders: context, then question.
	PromptDocumentQuestion = "document_question"

	// PromptSummariseHistory condenses a conversation transcript.
	// The prompt template expects a %s placeholder for the transcript.
	PromptSummariseHistory = "summarise_history"
)

// DefaultPrompts returns the built-in prompt templates keyed by name.
// They are used when no PromptStore is configured and as the initial
// content of user-editable prompt files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptDocumentSystem: `You are a helpful assistant that answers questions based on provided document excerpts.

Instructions:
1. Answer the question using ONLY the information from the provided context
2. If the context doesn't contain enough information, say so clearly
3. Be specific and cite which document/chunk you're referencing when possible
4. If multiple documents have relevant info, synthesize them
5. Keep answers concise but complete`,

		PromptDocumentQuestion: `Context from documents:
%s

Question: %s

Answer the question based on the context above. Be specific and helpful.`,

		PromptSummariseHistory: `Provide a concise summary of this conversation:

%s

Summary:`,
	}
}
