package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyChunkSize       = "budget.chunk_size"
	KeyChunkOverlap    = "budget.chunk_overlap"
	KeyTopK            = "budget.top_k"
	KeyMinRelevance    = "budget.min_relevance"
	KeyMaxTurns        = "budget.max_turns"
	KeyKeepRecentTurns = "budget.keep_recent_turns"
	KeyLLMProvider     = "llm.provider"
	KeyLLMModel        = "llm.model"
	KeyLLMBaseURL      = "llm.base_url"
	KeyLLMAPIKey       = "llm.api_key"
	KeyLLMRateLimit    = "llm.requests_per_minute"
	KeyChatPersona     = "chat.persona"
	KeyHistoryBackend  = "history.backend"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// A missing API key falls back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.LLM.Provider)
	model := s.configStore.GetString(KeyLLMModel)
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}
	apiKey := s.configStore.GetString(KeyLLMAPIKey)
	if apiKey == "" && provider.APIKeyEnv() != "" {
		apiKey = s.getenv(provider.APIKeyEnv())
	}

	settings := &domain.AppSettings{
		Budget: domain.ContextBudget{
			ChunkSize:       s.getInt(KeyChunkSize, defaults.Budget.ChunkSize),
			ChunkOverlap:    s.getInt(KeyChunkOverlap, defaults.Budget.ChunkOverlap),
			TopK:            s.getInt(KeyTopK, defaults.Budget.TopK),
			MinRelevance:    s.getFloat(KeyMinRelevance, defaults.Budget.MinRelevance),
			MaxTurns:        s.getInt(KeyMaxTurns, defaults.Budget.MaxTurns),
			KeepRecentTurns: s.getInt(KeyKeepRecentTurns, defaults.Budget.KeepRecentTurns),
		},
		LLM: domain.LLMSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(KeyLLMBaseURL), // No default - adapters pick their own
			APIKey:            apiKey,
			RequestsPerMinute: s.getInt(KeyLLMRateLimit, 0),
		},
		Chat: domain.ChatSettings{
			Persona:        s.getPersona(defaults.Chat.Persona),
			HistoryBackend: s.getHistoryBackend(defaults.Chat.HistoryBackend),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyChunkSize, settings.Budget.ChunkSize},
		{KeyChunkOverlap, settings.Budget.ChunkOverlap},
		{KeyTopK, settings.Budget.TopK},
		{KeyMinRelevance, settings.Budget.MinRelevance},
		{KeyMaxTurns, settings.Budget.MaxTurns},
		{KeyKeepRecentTurns, settings.Budget.KeepRecentTurns},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMRateLimit, settings.LLM.RequestsPerMinute},
		{KeyChatPersona, settings.Chat.Persona.String()},
		{KeyHistoryBackend, string(settings.Chat.HistoryBackend)},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Keys from the environment are never written to disk
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.getenv(settings.LLM.Provider.APIKeyEnv()) {
		if err := s.configStore.Set(KeyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyLLMAPIKey, err)
		}
	}

	return nil
}

// SetBudget validates and stores a context budget.
func (s *SettingsService) SetBudget(budget domain.ContextBudget) error {
	if err := budget.Validate(); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Budget = budget
	return s.Save(settings)
}

// SetLLMProvider configures the generation backend.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if apiKey == "" && provider.APIKeyEnv() != "" {
		apiKey = s.getenv(provider.APIKeyEnv())
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s (set %s or pass a key)", provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.APIKey = apiKey

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	return s.Save(settings)
}

// SetPersona changes the default chat persona.
func (s *SettingsService) SetPersona(persona domain.Persona) error {
	if !persona.IsValid() {
		return fmt.Errorf("invalid persona: %s", persona)
	}
	return s.configStore.Set(KeyChatPersona, persona.String())
}

// SettableKeys returns the keys SetValue accepts, sorted.
func SettableKeys() []string {
	keys := []string{
		KeyChunkSize, KeyChunkOverlap, KeyTopK, KeyMinRelevance, KeyMaxTurns, KeyKeepRecentTurns,
		KeyLLMProvider, KeyLLMModel, KeyLLMBaseURL, KeyLLMAPIKey, KeyLLMRateLimit,
		KeyChatPersona, KeyHistoryBackend,
	}
	sort.Strings(keys)
	return keys
}

// SetValue parses and stores a single key.
func (s *SettingsService) SetValue(key, value string) error {
	value = strings.TrimSpace(value)

	settings, err := s.Get()
	if err != nil {
		return err
	}

	intValue := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return n, nil
	}

	budget := settings.Budget
	switch key {
	case KeyChunkSize:
		budget.ChunkSize, err = intValue()
	case KeyChunkOverlap:
		budget.ChunkOverlap, err = intValue()
	case KeyTopK:
		budget.TopK, err = intValue()
	case KeyMaxTurns:
		budget.MaxTurns, err = intValue()
	case KeyKeepRecentTurns:
		budget.KeepRecentTurns, err = intValue()
	case KeyMinRelevance:
		budget.MinRelevance, err = strconv.ParseFloat(value, 64)
		if err != nil {
			err = fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidInput, key, value)
		}
	case KeyLLMProvider:
		return s.SetLLMProvider(domain.AIProvider(value), "", "")
	case KeyLLMModel:
		return s.configStore.Set(KeyLLMModel, value)
	case KeyLLMBaseURL:
		return s.configStore.Set(KeyLLMBaseURL, value)
	case KeyLLMAPIKey:
		return s.configStore.Set(KeyLLMAPIKey, value)
	case KeyLLMRateLimit:
		n, err := intValue()
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(KeyLLMRateLimit, n)
	case KeyChatPersona:
		return s.SetPersona(domain.Persona(value))
	case KeyHistoryBackend:
		backend := domain.HistoryBackend(value)
		if !backend.IsValid() {
			return fmt.Errorf("%w: history backend must be sqlite or memory, got %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(KeyHistoryBackend, value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return err
	}
	return s.SetBudget(budget)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Budget.Validate(); err != nil {
		return err
	}
	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", settings.LLM.Provider)
	}
	if settings.LLM.Provider.RequiresAPIKey() && settings.LLM.APIKey == "" {
		return fmt.Errorf("API key required for %s (set %s)", settings.LLM.Provider, settings.LLM.Provider.APIKeyEnv())
	}
	return nil
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, def float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(def domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.configStore.GetString(KeyLLMProvider))
	if p.IsValid() {
		return p
	}
	return def
}

func (s *SettingsService) getPersona(def domain.Persona) domain.Persona {
	p := domain.Persona(s.configStore.GetString(KeyChatPersona))
	if p.IsValid() {
		return p
	}
	return def
}

func (s *SettingsService) getHistoryBackend(def domain.HistoryBackend) domain.HistoryBackend {
	b := domain.HistoryBackend(s.configStore.GetString(KeyHistoryBackend))
	if b.IsValid() {
		return b
	}
	return def
}
