package mcp

import (
	"context"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// mockDocumentService is a mock implementation of driving.DocumentQAService.
type mockDocumentService struct {
	documents []*domain.Document
	answer    *domain.Answer
	assembled *domain.AssembledContext
	loaded    *domain.Document
	err       error

	loadedPath string
	loadedName string
	loadedText string
	cleared    bool
}

func (m *mockDocumentService) Load(_ context.Context, path string) (*domain.Document, error) {
	m.loadedPath = path
	return m.loaded, m.err
}

func (m *mockDocumentService) LoadText(_ context.Context, name, text string) (*domain.Document, error) {
	m.loadedName = name
	m.loadedText = text
	return m.loaded, m.err
}

func (m *mockDocumentService) LoadMany(_ context.Context, _ []string) ([]*domain.Document, map[string]error) {
	return m.documents, nil
}

func (m *mockDocumentService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockDocumentService) AssembleContext(_ context.Context, _ string) (*domain.AssembledContext, error) {
	return m.assembled, m.err
}

func (m *mockDocumentService) Documents() []*domain.Document {
	return m.documents
}

func (m *mockDocumentService) ChunkCount() int {
	total := 0
	for _, doc := range m.documents {
		total += len(doc.Chunks)
	}
	return total
}

func (m *mockDocumentService) Clear() {
	m.cleared = true
	m.documents = nil
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	turns []domain.Turn
}

func (m *mockChatService) Send(_ context.Context, _ string) (string, []domain.Turn, error) {
	return "", m.turns, nil
}

func (m *mockChatService) AppendAndMaybeCompact(_ context.Context, turn domain.Turn) ([]domain.Turn, error) {
	m.turns = append(m.turns, turn)
	return m.turns, nil
}

func (m *mockChatService) Compact(_ context.Context) ([]domain.Turn, error) {
	return m.turns, nil
}

func (m *mockChatService) History() []domain.Turn {
	return m.turns
}

func (m *mockChatService) Stats() domain.HistoryStats {
	return domain.ComputeHistoryStats(m.turns)
}

func (m *mockChatService) Restore(_ context.Context) error {
	return nil
}

func (m *mockChatService) Clear(_ context.Context) error {
	m.turns = nil
	return nil
}

func (m *mockChatService) SetPersona(_ domain.Persona) error {
	return nil
}

func (m *mockChatService) Persona() domain.Persona {
	return domain.PersonaAssistant
}

func (m *mockChatService) SaveConversation(_ context.Context, _ string) (*domain.SavedConversation, error) {
	return nil, nil
}

func (m *mockChatService) ListConversations(_ context.Context) ([]domain.SavedConversation, error) {
	return nil, nil
}

func (m *mockChatService) GetConversation(_ context.Context, _ string) (*domain.SavedConversation, error) {
	return nil, domain.ErrNotFound
}

func testDocument(id, name, text string, chunks int) *domain.Document {
	doc := &domain.Document{
		ID:       id,
		Name:     name,
		Path:     "/docs/" + name,
		FullText: text,
	}
	for i := 0; i < chunks; i++ {
		doc.Chunks = append(doc.Chunks, domain.NewChunk(text, i, name, 0))
	}
	return doc
}
