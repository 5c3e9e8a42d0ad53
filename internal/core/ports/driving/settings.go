package driving

import "github.com/custodia-labs/ctxwin/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetBudget validates and stores a context budget.
	SetBudget(budget domain.ContextBudget) error

	// SetLLMProvider configures the generation backend.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetPersona changes the default chat persona.
	SetPersona(persona domain.Persona) error

	// SetValue parses and stores a single dot-notation key such as "budget.top_k".
	// Budget keys are validated against the whole budget before saving.
	SetValue(key, value string) error

	// Validate checks that the current settings are usable.
	Validate() error

	// ValidateLLMConfig checks that the configured backend is reachable.
	ValidateLLMConfig() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
