package services

import (
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// loadPrompt loads a prompt from store, falling back to the built-in default.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		prompt, err := store.Load(name)
		if err == nil && prompt != "" {
			return prompt
		}
		if err != nil {
			logger.Warn("Failed to load prompt %q, using default: %v", name, err)
		}
	}
	return driven.DefaultPrompts()[name]
}
