// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentLoader: Extracts plain text from a document file
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Generation backend. Without it, questions can still be
//     assembled into contexts but not answered.
//   - Summariser: Condenses old turns. Without it, history is never compacted.
//   - HistoryStore: Chat history persistence. Without it, history lives in memory.
//   - ConversationStore: Saved conversation snapshots.
//   - PromptStore: Customisable prompt templates. Without it, defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driving package
package driven
