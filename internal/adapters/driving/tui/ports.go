// Package tui provides an interactive terminal chat interface for ctxwin.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ctxwin/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat holds the conversation and its bounded history.
	Chat driving.ChatService

	// MaxTurns is the history length at which compaction triggers.
	// Shown in the status bar; zero hides it.
	MaxTurns int
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(chat driving.ChatService, maxTurns int) *Ports {
	return &Ports{
		Chat:     chat,
		MaxTurns: maxTurns,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
