package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	mu sync.Mutex

	reply      string
	sendErr    error
	compactErr error
	clearErr   error
	saveErr    error
	restoreErr error

	turns    []domain.Turn
	persona  domain.Persona
	sent     []string
	saved    []string
	cleared  bool
	restored bool
}

func (m *mockChatService) Send(_ context.Context, message string) (string, []domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, message)
	if m.reply == "" {
		return "", m.turns, m.sendErr
	}
	m.turns = append(m.turns, domain.NewTurn(message, m.reply))
	return m.reply, append([]domain.Turn(nil), m.turns...), m.sendErr
}

func (m *mockChatService) AppendAndMaybeCompact(_ context.Context, turn domain.Turn) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
	return m.turns, nil
}

func (m *mockChatService) Compact(_ context.Context) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.compactErr != nil {
		return m.turns, m.compactErr
	}
	if len(m.turns) > 1 {
		m.turns = append([]domain.Turn{domain.NewSummaryTurn("summary")}, m.turns[len(m.turns)-1])
	}
	return m.turns, nil
}

func (m *mockChatService) History() []domain.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Turn(nil), m.turns...)
}

func (m *mockChatService) Stats() domain.HistoryStats {
	return domain.ComputeHistoryStats(m.History())
}

func (m *mockChatService) Restore(_ context.Context) error {
	m.restored = true
	return m.restoreErr
}

func (m *mockChatService) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = true
	m.turns = nil
	return nil
}

func (m *mockChatService) SetPersona(persona domain.Persona) error {
	if !persona.IsValid() {
		return domain.ErrInvalidInput
	}
	m.persona = persona
	return nil
}

func (m *mockChatService) Persona() domain.Persona {
	if m.persona == "" {
		return domain.PersonaAssistant
	}
	return m.persona
}

func (m *mockChatService) SaveConversation(_ context.Context, title string) (*domain.SavedConversation, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.saved = append(m.saved, title)
	if title == "" {
		title = "Conversation"
	}
	return &domain.SavedConversation{ID: "conv-1", Title: title, Turns: m.History()}, nil
}

func (m *mockChatService) ListConversations(_ context.Context) ([]domain.SavedConversation, error) {
	return nil, nil
}

func (m *mockChatService) GetConversation(_ context.Context, _ string) (*domain.SavedConversation, error) {
	return nil, domain.ErrNotFound
}
