package domain

const unknownDescription = "Unknown"

// AIProvider identifies a generation backend provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable consulted when no key is configured.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// AllLLMProviders returns the providers in menu order, local first.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderAnthropic, AIProviderOpenAI}
}

// DefaultLLMModels returns the default model per provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "phi3:mini",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-sonnet-4-20250514",
	}
}

// LLMSettings holds generation backend configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerMinute throttles backend calls. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// HistoryBackend selects where chat history is persisted.
type HistoryBackend string

// Available history backends.
const (
	HistoryBackendSQLite HistoryBackend = "sqlite"
	HistoryBackendMemory HistoryBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b HistoryBackend) IsValid() bool {
	return b == HistoryBackendSQLite || b == HistoryBackendMemory
}

// ChatSettings holds chat mode configuration.
type ChatSettings struct {
	// Persona selects the system prompt.
	Persona Persona

	// HistoryBackend selects history persistence.
	HistoryBackend HistoryBackend
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Budget bounds assembled contexts.
	Budget ContextBudget

	// LLM holds generation backend settings.
	LLM LLMSettings

	// Chat holds chat mode settings.
	Chat ChatSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The backend defaults to a local Ollama instance, which needs no key.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Budget: DefaultContextBudget(),
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Chat: ChatSettings{
			Persona:        PersonaAssistant,
			HistoryBackend: HistoryBackendSQLite,
		},
	}
}
