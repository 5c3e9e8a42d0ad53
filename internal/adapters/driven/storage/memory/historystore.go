package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

// Ensure stores implement the interfaces.
var (
	_ driven.HistoryStore      = (*HistoryStore)(nil)
	_ driven.ConversationStore = (*ConversationStore)(nil)
)

// HistoryStore keeps the chat history in memory for the life of the process.
type HistoryStore struct {
	mu    sync.RWMutex
	turns []domain.Turn
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Load returns a copy of the stored history.
func (s *HistoryStore) Load(_ context.Context) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTurns(s.turns), nil
}

// Save replaces the stored history.
func (s *HistoryStore) Save(_ context.Context, turns []domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = cloneTurns(turns)
	return nil
}

// Clear removes the stored history.
func (s *HistoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	return nil
}

// ConversationStore keeps saved conversations in memory.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.SavedConversation
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]domain.SavedConversation),
	}
}

// Save stores a snapshot.
func (s *ConversationStore) Save(_ context.Context, conv *domain.SavedConversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *conv
	stored.Turns = cloneTurns(conv.Turns)
	s.conversations[conv.ID] = stored
	return nil
}

// Get retrieves a snapshot by ID.
func (s *ConversationStore) Get(_ context.Context, id string) (*domain.SavedConversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	conv.Turns = cloneTurns(conv.Turns)
	return &conv, nil
}

// List returns all snapshots without their turns, oldest first.
func (s *ConversationStore) List(_ context.Context) ([]domain.SavedConversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SavedConversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		conv.Turns = nil
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.Before(out[j].SavedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneTurns(turns []domain.Turn) []domain.Turn {
	if turns == nil {
		return nil
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}
