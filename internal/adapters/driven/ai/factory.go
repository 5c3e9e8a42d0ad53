// Package ai provides factory functions for creating generation backend adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ctxwin/internal/adapters/driven/llm"
	anthropicllm "github.com/custodia-labs/ctxwin/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/ctxwin/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ctxwin/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of backend initialisation.
type InitResult struct {
	LLMService driven.LLMService
	Warnings   []string // Non-fatal issues that left the backend unset.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Available reports whether a backend was initialised.
func (r *InitResult) Available() bool {
	return r.LLMService != nil
}

// Initialise creates and validates the configured backend.
// A missing or unreachable backend is reported as a warning rather than an
// error so callers can still assemble context without generation.
func Initialise(settings *domain.LLMSettings) *InitResult {
	result := &InitResult{}

	if settings == nil || !settings.IsConfigured() {
		result.Warnings = append(result.Warnings, "no LLM provider configured")
		return result
	}

	svc, err := CreateAndValidateLLMService(settings)
	if err != nil {
		logger.Warn("LLM initialisation failed: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}

	result.LLMService = svc
	return result
}

// CreateAndValidateLLMService creates a backend and pings it.
// The returned error wraps domain.ErrLLMUnavailable and says how to fix it.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'ctxwin config set llm.provider' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'ctxwin config show' to check settings",
			domain.ErrLLMUnavailable, err)
	}

	logger.Debug("LLM backend ready: %s %s", settings.Provider, svc.ModelName())
	return svc, nil
}

// ValidateLLMConfig creates a throwaway backend for settings and pings it.
// Unconfigured settings are not an error.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

func ping(svc driven.LLMService) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// The service is throttled when settings carry a request rate.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		svc, err = createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return llm.NewThrottled(svc, settings.RequestsPerMinute), nil
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
