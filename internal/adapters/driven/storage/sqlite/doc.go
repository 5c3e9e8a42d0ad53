// Package sqlite persists chat history and saved conversations in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One Store serves both interfaces over a single database:
//
//   - HistoryStore: the current chat history, replaced wholesale on save
//   - ConversationStore: titled snapshots of past conversations
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.ctxwin/data/history.db
package sqlite
