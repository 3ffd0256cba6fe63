package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/codebook/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StateStore = (*Store)(nil)

// Store is a SQLite-backed driven.StateStore. Each key holds one blob and a
// version counter that Save checks before writing.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.codebook/data/codebook.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".codebook", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "codebook.db")

	// WAL lets a watcher read while the CLI writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := newStoreWithDB(db, dbPath)
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func newStoreWithDB(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations in version order.
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
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

// Load returns the blob stored under key and its version.
func (s *Store) Load(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		blob    []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT blob, version FROM state WHERE key = ?", key).Scan(&blob, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("loading state %q: %w", key, err)
	}
	return blob, version, nil
}

// Save writes blob under key when the stored version equals version.
// Version 0 means the key must not exist yet.
func (s *Store) Save(ctx context.Context, key string, blob []byte, version int64) (int64, error) {
	now := time.Now().UTC()

	var (
		res sql.Result
		err error
	)
	if version == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO state (key, blob, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, blob, now)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE state SET blob = ?, version = version + 1, updated_at = ?
			 WHERE key = ? AND version = ?`,
			blob, now, key, version)
	}
	if err != nil {
		return 0, fmt.Errorf("saving state %q: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("saving state %q: %w", key, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("state %q is not at version %d: %w", key, version, domain.ErrConflict)
	}
	return version + 1, nil
}
