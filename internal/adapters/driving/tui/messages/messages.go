// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the transcript and message input.
	ViewChat ViewType = iota
	// ViewHelp is the keybindings panel.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when switching between views.
type ViewChanged struct {
	View ViewType
}

// MessageSubmitted is sent when the user submits a chat message.
type MessageSubmitted struct {
	Text string
}

// ReplyReceived carries the backend reply and the history after the exchange.
// Err may be set together with a reply when only compaction failed.
type ReplyReceived struct {
	Reply   string
	History []domain.Turn
	Err     error
}

// HistoryRestored carries the persisted history loaded at start-up.
type HistoryRestored struct {
	History []domain.Turn
	Err     error
}

// HistoryCompacted carries the history after an on-demand compaction.
type HistoryCompacted struct {
	History []domain.Turn
	Err     error
}

// HistoryCleared signals the history was discarded.
type HistoryCleared struct {
	Err error
}

// ConversationSaved signals a snapshot was written.
type ConversationSaved struct {
	Conversation *domain.SavedConversation
	Err          error
}

// PersonaChanged signals the active persona was switched.
type PersonaChanged struct {
	Persona domain.Persona
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
