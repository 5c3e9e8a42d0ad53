// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the ctxwin directory (~/.ctxwin by default).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates with change watching
package file
