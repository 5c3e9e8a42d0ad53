package driving

import (
	"context"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// ChatService manages a single conversation with a bounded history.
type ChatService interface {
	// Send generates a reply to message, records the exchange, and compacts if needed.
	// The returned history is the one the next prompt will be built from.
	Send(ctx context.Context, message string) (string, []domain.Turn, error)

	// AppendAndMaybeCompact appends a completed turn and compacts the history
	// when it exceeds the budget. On compaction failure the turn is kept,
	// the older turns are untouched, and the error wraps domain.ErrCompactionFailed.
	AppendAndMaybeCompact(ctx context.Context, turn domain.Turn) ([]domain.Turn, error)

	// Compact compacts the history on demand. It is a no-op within budget.
	Compact(ctx context.Context) ([]domain.Turn, error)

	// History returns a copy of the current history, oldest first.
	History() []domain.Turn

	// Stats summarises the current history.
	Stats() domain.HistoryStats

	// Restore loads the persisted history, if any.
	Restore(ctx context.Context) error

	// Clear discards the current and persisted history.
	Clear(ctx context.Context) error

	// SetPersona changes the system prompt used for subsequent replies.
	SetPersona(persona domain.Persona) error

	// Persona returns the active persona.
	Persona() domain.Persona

	// SaveConversation snapshots the current history under title.
	// An empty title uses the default timestamped title.
	SaveConversation(ctx context.Context, title string) (*domain.SavedConversation, error)

	// ListConversations returns saved snapshots without their turns.
	ListConversations(ctx context.Context) ([]domain.SavedConversation, error)

	// GetConversation returns a saved snapshot by ID.
	GetConversation(ctx context.Context, id string) (*domain.SavedConversation, error)
}
