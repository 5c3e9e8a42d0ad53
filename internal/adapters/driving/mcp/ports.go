package mcp

import (
	"github.com/custodia-labs/ctxwin/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Documents answers questions from loaded documents.
	Documents driving.DocumentQAService

	// Chat exposes the chat history as a resource. Optional.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
