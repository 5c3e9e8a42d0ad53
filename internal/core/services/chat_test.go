package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ctxwin/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

func newTestChatService(t *testing.T, llm driven.LLMService, s driven.Summariser, maxTurns, keep int) *ChatService {
	t.Helper()
	budget := domain.DefaultContextBudget()
	budget.MaxTurns = maxTurns
	budget.KeepRecentTurns = keep
	svc, err := NewChatService(budget, llm, s)
	require.NoError(t, err)
	return svc
}

func TestChatService_Send_BuildsMessages(t *testing.T) {
	llm := &mockLLMService{reply: "Hello!"}
	svc := newTestChatService(t, llm, &mockSummariser{}, 20, 5)
	require.NoError(t, svc.SetPersona(domain.PersonaCoder))
	ctx := context.Background()

	_, err := svc.AppendAndMaybeCompact(ctx, domain.NewTurn("earlier", "reply"))
	require.NoError(t, err)

	reply, history, err := svc.Send(ctx, "  hi there ")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)
	require.Len(t, history, 2)
	assert.Equal(t, "hi there", history[1].UserText)
	assert.Equal(t, "Hello!", history[1].AssistantText)

	require.Len(t, llm.chats, 1)
	msgs := llm.chats[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleSystem, Content: domain.PersonaCoder.SystemPrompt()}, msgs[0])
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "earlier"}, msgs[1])
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleAssistant, Content: "reply"}, msgs[2])
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "hi there"}, msgs[3])
}

func TestChatService_Send_Errors(t *testing.T) {
	ctx := context.Background()

	svc := newTestChatService(t, nil, nil, 20, 5)
	_, _, err := svc.Send(ctx, "hello")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svc = newTestChatService(t, &mockLLMService{reply: "x"}, nil, 20, 5)
	_, _, err = svc.Send(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	svc = newTestChatService(t, &mockLLMService{err: domain.ErrBackendProtocol}, nil, 20, 5)
	_, _, err = svc.Send(ctx, "hello")
	assert.ErrorIs(t, err, domain.ErrBackendProtocol)
	assert.Empty(t, svc.History())
}

func TestChatService_CompactsAfterTwentyFirstTurn(t *testing.T) {
	summariser := &mockSummariser{}
	svc := newTestChatService(t, &mockLLMService{}, summariser, 20, 5)
	ctx := context.Background()
	turns := makeTurns(21)

	var history []domain.Turn
	var err error
	for i, turn := range turns {
		history, err = svc.AppendAndMaybeCompact(ctx, turn)
		require.NoError(t, err)
		if i < 20 {
			assert.Len(t, history, i+1)
		}
	}

	require.Len(t, history, 6)
	assert.True(t, history[0].IsSummary())
	assert.Equal(t, turns[16:], history[1:])
	assert.Len(t, summariser.calls, 1)
}

func TestChatService_CompactionFailureKeepsTurns(t *testing.T) {
	svc := newTestChatService(t, &mockLLMService{}, &mockSummariser{err: errors.New("boom")}, 4, 2)
	ctx := context.Background()
	turns := makeTurns(5)

	for _, turn := range turns[:4] {
		_, err := svc.AppendAndMaybeCompact(ctx, turn)
		require.NoError(t, err)
	}

	history, err := svc.AppendAndMaybeCompact(ctx, turns[4])
	assert.ErrorIs(t, err, domain.ErrCompactionFailed)
	assert.Equal(t, turns, history)
	assert.Equal(t, turns, svc.History())
}

func TestChatService_AppendRejectsInvalidOrigin(t *testing.T) {
	svc := newTestChatService(t, nil, nil, 20, 5)
	_, err := svc.AppendAndMaybeCompact(context.Background(), domain.Turn{UserText: "x", Origin: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatService_Compact_OnDemand(t *testing.T) {
	summariser := &mockSummariser{}
	svc := newTestChatService(t, nil, summariser, 3, 1)
	ctx := context.Background()

	history, err := svc.Compact(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, summariser.calls)
}

func TestChatService_Persistence(t *testing.T) {
	store := &mockHistoryStore{turns: makeTurns(2)}
	svc := newTestChatService(t, &mockLLMService{reply: "ok"}, nil, 20, 5)
	svc.SetHistoryStore(store)
	ctx := context.Background()

	require.NoError(t, svc.Restore(ctx))
	assert.Len(t, svc.History(), 2)

	_, _, err := svc.Send(ctx, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)
	assert.Len(t, store.turns, 3)

	require.NoError(t, svc.Clear(ctx))
	assert.True(t, store.cleared)
	assert.Empty(t, svc.History())
}

func TestChatService_RestoreCompactsOversizedHistory(t *testing.T) {
	saved := makeTurns(25)
	store := &mockHistoryStore{turns: saved}
	summariser := &mockSummariser{}
	svc := newTestChatService(t, nil, summariser, 20, 5)
	svc.SetHistoryStore(store)

	require.NoError(t, svc.Restore(context.Background()))

	history := svc.History()
	require.Len(t, history, 6)
	assert.True(t, history[0].IsSummary())
	assert.Equal(t, saved[20:], history[1:])
	require.Len(t, summariser.calls, 1)
	assert.Len(t, summariser.calls[0], 20)
	assert.Len(t, store.turns, 6)
}

func TestChatService_RestoreCompactionFailureKeepsHistory(t *testing.T) {
	store := &mockHistoryStore{turns: makeTurns(25)}
	svc := newTestChatService(t, nil, &mockSummariser{err: errors.New("offline")}, 20, 5)
	svc.SetHistoryStore(store)

	err := svc.Restore(context.Background())

	assert.ErrorIs(t, err, domain.ErrCompactionFailed)
	assert.Len(t, svc.History(), 25)
}

func TestChatService_PersistenceFailureSurfaces(t *testing.T) {
	store := &mockHistoryStore{saveErr: errors.New("disk full")}
	svc := newTestChatService(t, nil, nil, 20, 5)
	svc.SetHistoryStore(store)

	history, err := svc.AppendAndMaybeCompact(context.Background(), domain.NewTurn("q", "a"))
	assert.Error(t, err)
	assert.Len(t, history, 1)
}

func TestChatService_SetPersona(t *testing.T) {
	svc := newTestChatService(t, nil, nil, 20, 5)
	assert.Equal(t, domain.PersonaAssistant, svc.Persona())

	require.NoError(t, svc.SetPersona(domain.PersonaTeacher))
	assert.Equal(t, domain.PersonaTeacher, svc.Persona())

	err := svc.SetPersona("pirate")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.PersonaTeacher, svc.Persona())
}

func TestChatService_Conversations(t *testing.T) {
	svc := newTestChatService(t, nil, nil, 20, 5)
	ctx := context.Background()

	_, err := svc.SaveConversation(ctx, "x")
	assert.Error(t, err)
	_, err = svc.ListConversations(ctx)
	assert.Error(t, err)

	svc.SetConversationStore(memory.NewConversationStore())
	svc.SetProvider("ollama")

	_, err = svc.SaveConversation(ctx, "empty")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = svc.AppendAndMaybeCompact(ctx, domain.NewTurn("q", "a"))
	require.NoError(t, err)

	titled, err := svc.SaveConversation(ctx, "Planning")
	require.NoError(t, err)
	assert.Equal(t, "Planning", titled.Title)
	assert.Equal(t, "ollama", titled.Provider)

	untitled, err := svc.SaveConversation(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConversationTitle(untitled.SavedAt), untitled.Title)

	list, err := svc.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := svc.GetConversation(ctx, titled.ID)
	require.NoError(t, err)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "q", got.Turns[0].UserText)
}

func TestChatService_Stats(t *testing.T) {
	svc := newTestChatService(t, nil, nil, 20, 5)
	_, err := svc.AppendAndMaybeCompact(context.Background(), domain.NewTurn("ab", "cde"))
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 1, stats.Turns)
	assert.Equal(t, 5, stats.TotalChars)
}
