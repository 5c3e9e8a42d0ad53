package main

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ctxwin/internal/adapters/driven/ai"
	"github.com/custodia-labs/ctxwin/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ctxwin/internal/adapters/driven/loader"
	"github.com/custodia-labs/ctxwin/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ctxwin/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ctxwin/internal/adapters/driving/cli"
	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/core/services"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// Subdirectories of the config directory.
const (
	promptsDir = "prompts"
	dataDir    = "data"
)

// bootstrap wires adapters into services once global flags are known.
// An unreachable backend is not fatal: commands that only assemble context
// still work, and commands that generate report domain.ErrLLMUnavailable.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	dir := opts.ConfigDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	logger.Section("bootstrap")
	logger.Debug("config dir: %s", dir)

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	backend := ai.Initialise(&settings.LLM)
	for _, w := range backend.Warnings {
		logger.Warn("generation disabled: %s", w)
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, promptsDir))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	documents, err := services.NewDocumentService(settings.Budget, loader.New(), backend.LLMService)
	if err != nil {
		backend.Close()
		return nil, err
	}
	documents.SetPromptStore(prompts)

	var summariser driven.Summariser
	if backend.Available() {
		s := services.NewLLMSummariser(backend.LLMService)
		s.SetPromptStore(prompts)
		summariser = s
	}

	chat, err := services.NewChatService(settings.Budget, backend.LLMService, summariser)
	if err != nil {
		backend.Close()
		return nil, err
	}
	if err := chat.SetPersona(settings.Chat.Persona); err != nil {
		logger.Warn("ignoring persona: %v", err)
	}
	if backend.Available() {
		chat.SetProvider(fmt.Sprintf("%s/%s", settings.LLM.Provider, backend.LLMService.ModelName()))
	}

	var store *sqlite.Store
	switch settings.Chat.HistoryBackend {
	case domain.HistoryBackendMemory:
		chat.SetHistoryStore(memory.NewHistoryStore())
		chat.SetConversationStore(memory.NewConversationStore())
	default:
		store, err = sqlite.NewStore(filepath.Join(dir, dataDir))
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("opening history: %w", err)
		}
		logger.Debug("history database: %s", store.Path())
		chat.SetHistoryStore(store.HistoryStore())
		chat.SetConversationStore(store.ConversationStore())
	}

	return &cli.Services{
		Documents: documents,
		Chat:      chat,
		Settings:  settingsService,
		Prompts:   prompts,
		MaxTurns:  settings.Budget.MaxTurns,
		Close: func() error {
			backend.Close()
			if store != nil {
				return store.Close()
			}
			return nil
		},
	}, nil
}
