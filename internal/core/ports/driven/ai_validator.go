package driven

import "github.com/custodia-labs/ctxwin/internal/core/domain"

// AIConfigValidator validates generation backend configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying backend.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error
}
