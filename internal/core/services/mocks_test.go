package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu          sync.Mutex
	reply       string
	err         error
	generated   []string
	systems     []string
	chats       [][]driven.ChatMessage
	generateErr error
}

func (m *mockLLMService) Generate(_ context.Context, system, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systems = append(m.systems, system)
	m.generated = append(m.generated, prompt)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.reply, m.err
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats = append(m.chats, messages)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string          { return "mock-model" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

func (m *mockLLMService) generateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.generated)
}

// mockSummariser implements driven.Summariser for testing.
type mockSummariser struct {
	calls [][]domain.Turn
	err   error
}

func (m *mockSummariser) Summarise(_ context.Context, turns []domain.Turn) (string, error) {
	m.calls = append(m.calls, turns)
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("summary of %d turns", len(turns)), nil
}

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	files map[string]string
}

func (m *mockLoader) Load(_ context.Context, path string) (string, error) {
	if strings.HasSuffix(path, ".exe") {
		return "", fmt.Errorf("%w: .exe", domain.ErrUnsupportedFormat)
	}
	text, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
	}
	return text, nil
}

func (m *mockLoader) SupportedExtensions() []string { return []string{".txt"} }

// mockHistoryStore implements driven.HistoryStore for testing.
type mockHistoryStore struct {
	turns   []domain.Turn
	saves   int
	saveErr error
	cleared bool
}

func (m *mockHistoryStore) Load(_ context.Context) ([]domain.Turn, error) {
	return m.turns, nil
}

func (m *mockHistoryStore) Save(_ context.Context, turns []domain.Turn) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.turns = append([]domain.Turn(nil), turns...)
	return nil
}

func (m *mockHistoryStore) Clear(_ context.Context) error {
	m.cleared = true
	m.turns = nil
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// mockValidator implements driven.AIConfigValidator for testing.
type mockValidator struct {
	err      error
	validate *domain.LLMSettings
}

func (m *mockValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.validate = cfg
	return m.err
}

func makeTurns(n int) []domain.Turn {
	turns := make([]domain.Turn, n)
	for i := range turns {
		turns[i] = domain.NewTurn(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}
	return turns
}
