package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driving"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// chatMaxTokens caps the length of a chat reply.
const chatMaxTokens = 4096

// ChatService is the chat-mode context assembler. It keeps one conversation,
// compacts it after every turn, and builds each prompt from the bounded history.
type ChatService struct {
	llm           driven.LLMService
	compactor     *HistoryCompactor
	historyStore  driven.HistoryStore
	conversations driven.ConversationStore
	provider      string

	mu      sync.Mutex
	turns   []domain.Turn
	persona domain.Persona
}

// NewChatService creates a chat service.
// The llm and summariser parameters are optional (can be nil).
func NewChatService(
	budget domain.ContextBudget,
	llm driven.LLMService,
	summariser driven.Summariser,
) (*ChatService, error) {
	compactor, err := NewHistoryCompactor(budget, summariser)
	if err != nil {
		return nil, err
	}
	return &ChatService{
		llm:       llm,
		compactor: compactor,
		persona:   domain.PersonaAssistant,
	}, nil
}

// SetHistoryStore sets the store the history is persisted to after every change.
func (s *ChatService) SetHistoryStore(store driven.HistoryStore) {
	s.historyStore = store
}

// SetConversationStore sets the store for saved conversation snapshots.
func (s *ChatService) SetConversationStore(store driven.ConversationStore) {
	s.conversations = store
}

// SetProvider records the backend name saved with conversation snapshots.
func (s *ChatService) SetProvider(provider string) {
	s.provider = provider
}

// Send generates a reply to message and records the exchange.
// When the reply succeeds but compaction fails, the reply is still returned
// together with the error.
func (s *ChatService) Send(ctx context.Context, message string) (string, []domain.Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", nil, fmt.Errorf("%w: message is empty", domain.ErrEmptyInput)
	}
	if s.llm == nil {
		return "", nil, domain.ErrLLMUnavailable
	}

	messages := s.buildMessages(message)
	logger.Debug("Sending %d messages to %s", len(messages), s.llm.ModelName())

	done := logger.Timed("chat reply")
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: chatMaxTokens})
	done()
	if err != nil {
		return "", nil, fmt.Errorf("generate reply: %w", err)
	}

	history, err := s.AppendAndMaybeCompact(ctx, domain.NewTurn(message, reply))
	return reply, history, err
}

// buildMessages renders the system prompt, the current history, and the new message.
func (s *ChatService) buildMessages(message string) []driven.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]driven.ChatMessage, 0, 2*len(s.turns)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: s.persona.SystemPrompt()})
	for _, t := range s.turns {
		messages = append(messages,
			driven.ChatMessage{Role: driven.RoleUser, Content: t.UserText},
			driven.ChatMessage{Role: driven.RoleAssistant, Content: t.AssistantText},
		)
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: message})
	return messages
}

// AppendAndMaybeCompact appends turn and compacts the history if it exceeds the budget.
func (s *ChatService) AppendAndMaybeCompact(ctx context.Context, turn domain.Turn) ([]domain.Turn, error) {
	if !turn.Origin.IsValid() {
		return nil, fmt.Errorf("%w: turn origin %q", domain.ErrInvalidInput, turn.Origin)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, turn)
	return s.compactLocked(ctx)
}

// Compact compacts the history on demand.
func (s *ChatService) Compact(ctx context.Context) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compactLocked(ctx)
}

func (s *ChatService) compactLocked(ctx context.Context) ([]domain.Turn, error) {
	compacted, compactErr := s.compactor.Compact(ctx, s.turns)
	if compactErr == nil {
		s.turns = compacted
	}

	persistErr := s.persistLocked(ctx)
	return s.snapshotLocked(), errors.Join(compactErr, persistErr)
}

func (s *ChatService) persistLocked(ctx context.Context) error {
	if s.historyStore == nil {
		return nil
	}
	if err := s.historyStore.Save(ctx, s.turns); err != nil {
		logger.Warn("Failed to save history: %v", err)
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *ChatService) snapshotLocked() []domain.Turn {
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// History returns a copy of the current history.
func (s *ChatService) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Stats summarises the current history.
func (s *ChatService) Stats() domain.HistoryStats {
	return domain.ComputeHistoryStats(s.History())
}

// Restore loads the persisted history, if a store is configured, and
// compacts it when it exceeds max_turns.
func (s *ChatService) Restore(ctx context.Context) error {
	if s.historyStore == nil {
		return nil
	}
	turns, err := s.historyStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = turns
	logger.Info("Restored %d turns", len(turns))

	// A history saved under a larger budget is brought back within this one.
	if !s.compactor.NeedsCompaction(s.turns) {
		return nil
	}
	_, err = s.compactLocked(ctx)
	return err
}

// Clear discards the current and persisted history.
func (s *ChatService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.turns = nil
	s.mu.Unlock()

	if s.historyStore == nil {
		return nil
	}
	if err := s.historyStore.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// SetPersona changes the system prompt for subsequent replies.
func (s *ChatService) SetPersona(persona domain.Persona) error {
	if !persona.IsValid() {
		return fmt.Errorf("%w: unknown persona %q", domain.ErrInvalidInput, persona)
	}
	s.mu.Lock()
	s.persona = persona
	s.mu.Unlock()
	return nil
}

// Persona returns the active persona.
func (s *ChatService) Persona() domain.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// SaveConversation snapshots the current history under title.
func (s *ChatService) SaveConversation(ctx context.Context, title string) (*domain.SavedConversation, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store unavailable")
	}

	history := s.History()
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: conversation is empty", domain.ErrEmptyInput)
	}

	now := time.Now()
	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultConversationTitle(now)
	}

	conv := &domain.SavedConversation{
		ID:       uuid.New().String(),
		Title:    title,
		SavedAt:  now,
		Provider: s.provider,
		Turns:    history,
	}
	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns saved snapshots without their turns.
func (s *ChatService) ListConversations(ctx context.Context) ([]domain.SavedConversation, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store unavailable")
	}
	return s.conversations.List(ctx)
}

// GetConversation returns a saved snapshot by ID.
func (s *ChatService) GetConversation(ctx context.Context, id string) (*domain.SavedConversation, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store unavailable")
	}
	return s.conversations.Get(ctx, id)
}
