package driven

import (
	"context"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// HistoryStore persists the current chat history between sessions.
type HistoryStore interface {
	// Load returns the stored history, oldest first. Empty when nothing is stored.
	Load(ctx context.Context) ([]domain.Turn, error)

	// Save replaces the stored history with turns.
	Save(ctx context.Context, turns []domain.Turn) error

	// Clear removes the stored history.
	Clear(ctx context.Context) error
}

// ConversationStore persists titled conversation snapshots.
type ConversationStore interface {
	// Save stores a snapshot.
	Save(ctx context.Context, conv *domain.SavedConversation) error

	// Get retrieves a snapshot by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.SavedConversation, error)

	// List returns all snapshots, oldest first, without their turns.
	List(ctx context.Context) ([]domain.SavedConversation, error)
}
