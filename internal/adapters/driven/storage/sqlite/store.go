package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ctxwin/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ctxwin/internal/core/domain"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

// DatabaseFile is the file name of the history database.
const DatabaseFile = "history.db"

// Store is a SQLite-backed store that serves the history and conversation
// interfaces through wrapper types sharing one connection pool.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database in dataDir and applies
// pending migrations. If dataDir is empty, defaults to ~/.ctxwin/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ctxwin", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// HistoryStore returns a HistoryStore backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// ConversationStore returns a ConversationStore backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
// Each migration runs in its own transaction together with its version row.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Load returns the stored history ordered by position.
func (h *historyStore) Load(ctx context.Context) ([]domain.Turn, error) {
	rows, err := h.store.db.QueryContext(ctx, `
		SELECT user_text, assistant_text, origin, created_at
		FROM history_turns
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// Save replaces the stored history in a single transaction.
func (h *historyStore) Save(ctx context.Context, turns []domain.Turn) error {
	tx, err := h.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM history_turns"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history_turns (position, user_text, assistant_text, origin, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, turn := range turns {
		if _, err := stmt.ExecContext(ctx, i, turn.UserText, turn.AssistantText,
			originOrDefault(turn.Origin), turn.Timestamp.UTC()); err != nil {
			return fmt.Errorf("inserting turn %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Clear removes the stored history.
func (h *historyStore) Clear(ctx context.Context) error {
	if _, err := h.store.db.ExecContext(ctx, "DELETE FROM history_turns"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// ==================== Conversation Store ====================

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// Save stores or replaces a snapshot and its turns.
func (c *conversationStore) Save(ctx context.Context, conv *domain.SavedConversation) error {
	if conv == nil || conv.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	savedAt := conv.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, provider, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			provider = excluded.provider,
			saved_at = excluded.saved_at
	`, conv.ID, conv.Title, conv.Provider, savedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM conversation_turns WHERE conversation_id = ?", conv.ID); err != nil {
		return fmt.Errorf("replacing conversation turns: %w", err)
	}

	for i, turn := range conv.Turns {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO conversation_turns
				(conversation_id, position, user_text, assistant_text, origin, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, conv.ID, i, turn.UserText, turn.AssistantText, originOrDefault(turn.Origin), turn.Timestamp.UTC())
		if err != nil {
			return fmt.Errorf("inserting conversation turn %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a snapshot with its turns.
func (c *conversationStore) Get(ctx context.Context, id string) (*domain.SavedConversation, error) {
	var conv domain.SavedConversation
	err := c.store.db.QueryRowContext(ctx, `
		SELECT id, title, provider, saved_at FROM conversations WHERE id = ?
	`, id).Scan(&conv.ID, &conv.Title, &conv.Provider, &conv.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	rows, err := c.store.db.QueryContext(ctx, `
		SELECT user_text, assistant_text, origin, created_at
		FROM conversation_turns
		WHERE conversation_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying conversation turns: %w", err)
	}
	defer rows.Close()

	conv.Turns, err = scanTurns(rows)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// List returns all snapshots without turns, oldest first.
func (c *conversationStore) List(ctx context.Context) ([]domain.SavedConversation, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, title, provider, saved_at FROM conversations
		ORDER BY saved_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedConversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var conv domain.SavedConversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.Provider, &conv.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

// ==================== Helpers ====================

// scanTurns reads turn rows in query order.
func scanTurns(rows *sql.Rows) ([]domain.Turn, error) {
	var turns []domain.Turn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var turn domain.Turn
		var origin string
		if err := rows.Scan(&turn.UserText, &turn.AssistantText, &origin, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turn.Origin = domain.TurnOrigin(origin)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}

// originOrDefault stores unset origins as normal turns.
func originOrDefault(o domain.TurnOrigin) string {
	if o == "" {
		return string(domain.TurnOriginNormal)
	}
	return string(o)
}
