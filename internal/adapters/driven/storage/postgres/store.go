package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StateStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS codebook_state (
	key TEXT PRIMARY KEY,
	blob BYTEA NOT NULL,
	version BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// dbtx is the subset of pgxpool.Pool used by Store.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL implementation of driven.StateStore.
type Store struct {
	db    dbtx
	close func()
}

// NewStore connects to databaseURL and creates the state table if needed.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	config.MaxConns = 4

	// Transaction poolers such as PgBouncer reject prepared statements.
	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: pool, close: pool.Close}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

// Load returns the blob stored under key and its version.
func (s *Store) Load(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		blob    []byte
		version int64
	)
	err := s.db.QueryRow(ctx, `SELECT blob, version FROM codebook_state WHERE key = $1`, key).Scan(&blob, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load state %q: %w", key, err)
	}
	return blob, version, nil
}

// Save writes blob under key when the stored version equals version.
// Version 0 means the key must not exist yet.
func (s *Store) Save(ctx context.Context, key string, blob []byte, version int64) (int64, error) {
	now := time.Now().UTC()

	var (
		tag pgconn.CommandTag
		err error
	)
	if version == 0 {
		tag, err = s.db.Exec(ctx, `
			INSERT INTO codebook_state (key, blob, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (key) DO NOTHING`,
			key, blob, now)
	} else {
		tag, err = s.db.Exec(ctx, `
			UPDATE codebook_state SET blob = $1, version = version + 1, updated_at = $2
			WHERE key = $3 AND version = $4`,
			blob, now, key, version)
	}
	if err != nil {
		return 0, fmt.Errorf("save state %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("state %q is not at version %d: %w", key, version, domain.ErrConflict)
	}
	return version + 1, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
