package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mschrader15/hypothesis-sync/internal/adapters/driven/history/sqlite/migrations"
	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// Store is a SQLite-backed sync history store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store at the specified data directory.
// If dataDir is empty, defaults to ~/.hypothesis-sync/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hypothesis-sync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL mode keeps the previous checkpoint readable during a commit
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Load returns the persisted history, or an empty one before the first
// commit.
func (s *Store) Load(ctx context.Context) (*domain.SyncHistory, error) {
	history := domain.NewSyncHistory()

	var lastSync sql.NullTime
	row := s.db.QueryRowContext(ctx, `
		SELECT cursor, last_sync, total_documents, total_highlights
		FROM sync_state WHERE id = 1
	`)
	err := row.Scan(&history.Cursor, &lastSync, &history.Totals.Documents, &history.Totals.Highlights)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("loading sync state: %w", err)
	}
	if lastSync.Valid {
		history.LastSync = lastSync.Time
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, title, uri, path, content_hash, highlight_count, pending_deletion, updated_at
		FROM document_map
	`)
	if err != nil {
		return nil, fmt.Errorf("loading document map: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.DocumentEntry
		var pending int
		if err := rows.Scan(&e.DocumentID, &e.Title, &e.URI, &e.Path,
			&e.ContentHash, &e.HighlightCount, &pending, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document entry: %w", err)
		}
		e.PendingDeletion = pending != 0
		history.DocumentMap[e.DocumentID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document map: %w", err)
	}
	return history, nil
}

// Commit replaces the persisted history in one transaction.
func (s *Store) Commit(ctx context.Context, history *domain.SyncHistory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning commit: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after a successful commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_state (id, cursor, last_sync, total_documents, total_highlights)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cursor = excluded.cursor,
			last_sync = excluded.last_sync,
			total_documents = excluded.total_documents,
			total_highlights = excluded.total_highlights
	`, history.Cursor, nullTime(history.LastSync), history.Totals.Documents, history.Totals.Highlights)
	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_map"); err != nil {
		return fmt.Errorf("clearing document map: %w", err)
	}

	for _, e := range history.DocumentMap {
		pending := 0
		if e.PendingDeletion {
			pending = 1
		}
		updatedAt := e.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO document_map
				(document_id, title, uri, path, content_hash, highlight_count, pending_deletion, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, e.DocumentID, e.Title, e.URI, e.Path, e.ContentHash, e.HighlightCount, pending, updatedAt)
		if err != nil {
			return fmt.Errorf("saving document entry %s: %w", e.DocumentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}
	return nil
}

// Reset clears cursor, document map and totals.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM sync_state"); err != nil {
		return fmt.Errorf("clearing sync state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM document_map"); err != nil {
		return fmt.Errorf("clearing document map: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}

// nullTime converts a zero time to NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
