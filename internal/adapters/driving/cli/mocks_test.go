package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// mockDocumentService records calls and answers from canned values.
type mockDocumentService struct {
	docs      []*domain.Document
	failures  map[string]error
	answer    *domain.Answer
	askErr    error
	assembled *domain.AssembledContext
	asked     []string
	cleared   bool
}

func (m *mockDocumentService) Load(_ context.Context, path string) (*domain.Document, error) {
	if err, ok := m.failures[path]; ok {
		return nil, err
	}
	doc := testDocument(filepath.Base(path), "alpha beta gamma delta")
	doc.Path = path
	m.docs = append(m.docs, doc)
	return doc, nil
}

func (m *mockDocumentService) LoadText(_ context.Context, name, text string) (*domain.Document, error) {
	doc := testDocument(name, text)
	m.docs = append(m.docs, doc)
	return doc, nil
}

func (m *mockDocumentService) LoadMany(ctx context.Context, paths []string) ([]*domain.Document, map[string]error) {
	var docs []*domain.Document
	failures := make(map[string]error)
	for _, p := range paths {
		doc, err := m.Load(ctx, p)
		if err != nil {
			failures[p] = err
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failures
}

func (m *mockDocumentService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	if len(m.docs) == 0 {
		return nil, domain.ErrNoDocumentsLoaded
	}
	if m.askErr != nil {
		return nil, m.askErr
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Question:          question,
		Answer:            "The answer is 42.",
		Confidence:        domain.ConfidenceHigh,
		ChunksUsed:        1,
		DocumentsSearched: len(m.docs),
		Sources: []domain.Citation{
			{Document: m.docs[0].Name, ChunkIndex: 0, Score: 0.75, Preview: "alpha beta"},
		},
	}, nil
}

func (m *mockDocumentService) AssembleContext(_ context.Context, _ string) (*domain.AssembledContext, error) {
	if m.assembled != nil {
		return m.assembled, nil
	}
	return &domain.AssembledContext{}, nil
}

func (m *mockDocumentService) Documents() []*domain.Document {
	return m.docs
}

func (m *mockDocumentService) ChunkCount() int {
	n := 0
	for _, d := range m.docs {
		n += len(d.Chunks)
	}
	return n
}

func (m *mockDocumentService) Clear() {
	m.docs = nil
	m.cleared = true
}

// mockChatService echoes messages back and keeps history in memory.
type mockChatService struct {
	history       []domain.Turn
	persona       domain.Persona
	sendErr       error
	compactTo     []domain.Turn
	compactErr    error
	restoreErr    error
	restored      bool
	cleared       bool
	conversations []domain.SavedConversation
}

func newMockChatService() *mockChatService {
	return &mockChatService{persona: domain.PersonaAssistant}
}

func (m *mockChatService) Send(_ context.Context, message string) (string, []domain.Turn, error) {
	reply := "echo: " + message
	m.history = append(m.history, domain.NewTurn(message, reply))
	return reply, m.History(), m.sendErr
}

func (m *mockChatService) AppendAndMaybeCompact(_ context.Context, turn domain.Turn) ([]domain.Turn, error) {
	m.history = append(m.history, turn)
	return m.History(), nil
}

func (m *mockChatService) Compact(_ context.Context) ([]domain.Turn, error) {
	if m.compactErr != nil {
		return m.History(), m.compactErr
	}
	if m.compactTo != nil {
		m.history = m.compactTo
	}
	return m.History(), nil
}

func (m *mockChatService) History() []domain.Turn {
	out := make([]domain.Turn, len(m.history))
	copy(out, m.history)
	return out
}

func (m *mockChatService) Stats() domain.HistoryStats {
	return domain.ComputeHistoryStats(m.history)
}

func (m *mockChatService) Restore(_ context.Context) error {
	m.restored = true
	return m.restoreErr
}

func (m *mockChatService) Clear(_ context.Context) error {
	m.history = nil
	m.cleared = true
	return nil
}

func (m *mockChatService) SetPersona(persona domain.Persona) error {
	if !persona.IsValid() {
		return fmt.Errorf("%w: unknown persona %q", domain.ErrInvalidInput, persona)
	}
	m.persona = persona
	return nil
}

func (m *mockChatService) Persona() domain.Persona {
	return m.persona
}

func (m *mockChatService) SaveConversation(_ context.Context, title string) (*domain.SavedConversation, error) {
	if len(m.history) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if title == "" {
		title = "Conversation"
	}
	conv := domain.SavedConversation{
		ID:      fmt.Sprintf("conv-%d", len(m.conversations)+1),
		Title:   title,
		SavedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Turns:   m.History(),
	}
	m.conversations = append(m.conversations, conv)
	return &conv, nil
}

func (m *mockChatService) ListConversations(_ context.Context) ([]domain.SavedConversation, error) {
	out := make([]domain.SavedConversation, len(m.conversations))
	for i, c := range m.conversations {
		c.Turns = nil
		out[i] = c
	}
	return out, nil
}

func (m *mockChatService) GetConversation(_ context.Context, id string) (*domain.SavedConversation, error) {
	for _, c := range m.conversations {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockSettingsService stores settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	setCalls    map[string]string
	setErr      error
	validateErr error
	llmErr      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		setCalls: make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetBudget(budget domain.ContextBudget) error {
	m.settings.Budget = budget
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetPersona(persona domain.Persona) error {
	m.settings.Chat.Persona = persona
	return nil
}

func (m *mockSettingsService) SetValue(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.llmErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	documents *mockDocumentService
	chat      *mockChatService
	settings  *mockSettingsService
}

// setupTestServices installs fresh mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	origDoc, origChat, origSettings := documentService, chatService, settingsService
	origWatcher, origMax, origBootstrap := promptWatcher, maxTurns, bootstrap

	ts := &testServices{
		documents: &mockDocumentService{},
		chat:      newMockChatService(),
		settings:  newMockSettingsService(),
	}
	documentService = ts.documents
	chatService = ts.chat
	settingsService = ts.settings
	promptWatcher = nil
	maxTurns = 20
	bootstrap = nil

	return ts, func() {
		documentService, chatService, settingsService = origDoc, origChat, origSettings
		promptWatcher, maxTurns, bootstrap = origWatcher, origMax, origBootstrap
		closeServices = nil
	}
}

// execute runs the root command with args and stdin, returning stdout and stderr.
// Flag values persist on the shared command tree, so they are reset first.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetErr(nil)
	}()

	err := Execute(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func testDocument(name, text string) *domain.Document {
	return &domain.Document{
		ID:       "doc-" + name,
		Name:     name,
		FullText: text,
		Chunks:   []domain.Chunk{domain.NewChunk(text, 0, name, 0)},
		LoadedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

var errBoom = errors.New("boom")
