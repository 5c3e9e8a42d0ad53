package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

// Ensure LLMSummariser implements the interface.
var _ driven.Summariser = (*LLMSummariser)(nil)

// summaryMaxTokens caps the length of generated summaries.
const summaryMaxTokens = 500

// LLMSummariser summarises turns with the generation backend.
type LLMSummariser struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMSummariser creates a summariser backed by llm.
func NewLLMSummariser(llm driven.LLMService) *LLMSummariser {
	return &LLMSummariser{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the built-in prompt is used.
func (s *LLMSummariser) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Summarise returns a concise summary of turns.
func (s *LLMSummariser) Summarise(ctx context.Context, turns []domain.Turn) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if len(turns) == 0 {
		return "", fmt.Errorf("summarise: %w", domain.ErrEmptyInput)
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptSummariseHistory), Transcript(turns))

	summary, err := s.llm.Generate(ctx, "", prompt, driven.GenerateOptions{MaxTokens: summaryMaxTokens})
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("summarise: %w: empty summary", domain.ErrBackendProtocol)
	}
	return summary, nil
}

// Transcript renders turns as alternating "User:" and "AI:" lines.
// Earlier summaries are carried forward so nothing is lost across compactions.
func Transcript(turns []domain.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Origin {
		case domain.TurnOriginSummary:
			fmt.Fprintf(&b, "Summary of earlier conversation: %s\n\n", t.AssistantText)
		default:
			fmt.Fprintf(&b, "User: %s\nAI: %s\n\n", t.UserText, t.AssistantText)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
