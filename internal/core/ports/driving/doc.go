// Package driving defines what the CLI, the chat UI, and the MCP server
// may ask of the core: document question answering, chat with a bounded
// history, and settings.
//
// Implementations live in internal/core/services.
package driving
