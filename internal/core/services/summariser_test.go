package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

func TestTranscript(t *testing.T) {
	turns := []domain.Turn{
		domain.NewSummaryTurn("they talked about Go"),
		domain.NewTurn("What is a slice?", "A view over an array."),
	}

	want := "Summary of earlier conversation: they talked about Go\n\n" +
		"User: What is a slice?\nAI: A view over an array."
	assert.Equal(t, want, Transcript(turns))
}

func TestLLMSummariser_Summarise(t *testing.T) {
	llm := &mockLLMService{reply: "  A short summary.  "}
	s := NewLLMSummariser(llm)

	got, err := s.Summarise(context.Background(), []domain.Turn{domain.NewTurn("hi", "hello")})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", got)

	require.Len(t, llm.generated, 1)
	assert.Contains(t, llm.generated[0], "Provide a concise summary of this conversation:")
	assert.Contains(t, llm.generated[0], "User: hi\nAI: hello")
}

func TestLLMSummariser_CustomPrompt(t *testing.T) {
	llm := &mockLLMService{reply: "done"}
	s := NewLLMSummariser(llm)
	s.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptSummariseHistory: "SUM<%s>",
	}})

	_, err := s.Summarise(context.Background(), []domain.Turn{domain.NewTurn("a", "b")})
	require.NoError(t, err)
	assert.Equal(t, "SUM<User: a\nAI: b>", llm.generated[0])
}

func TestLLMSummariser_Errors(t *testing.T) {
	ctx := context.Background()
	turns := []domain.Turn{domain.NewTurn("a", "b")}

	_, err := NewLLMSummariser(nil).Summarise(ctx, turns)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	_, err = NewLLMSummariser(&mockLLMService{reply: "x"}).Summarise(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = NewLLMSummariser(&mockLLMService{reply: "   "}).Summarise(ctx, turns)
	assert.ErrorIs(t, err, domain.ErrBackendProtocol)

	_, err = NewLLMSummariser(&mockLLMService{generateErr: domain.ErrBackendUnavailable}).Summarise(ctx, turns)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestLoadPrompt_FallsBack(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{}}
	assert.Equal(t, driven.DefaultPrompts()[driven.PromptSummariseHistory], loadPrompt(store, driven.PromptSummariseHistory))
	assert.Equal(t, driven.DefaultPrompts()[driven.PromptDocumentSystem], loadPrompt(nil, driven.PromptDocumentSystem))
}
