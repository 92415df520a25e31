// Package postgres implements the workflow store on PostgreSQL using pgx.
//
// It satisfies storage.Storage so the search service and transports can run
// against a shared platform database instead of the local SQLite file.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store is a storage.Storage backed by PostgreSQL.
type Store struct {
	db     DB
	logger *zerolog.Logger
}

var _ storage.Storage = (*Store)(nil)

// Connect opens a connection pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string, logger *zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(pool, logger), nil
}

// New wraps an existing pool (or a test double).
func New(db DB, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Store{db: db, logger: logger}
}

// Init creates the schema when it does not exist yet.
func (s *Store) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, ddl := range schema {
		if _, err := s.db.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS workflows (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'General',
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_by TEXT NOT NULL DEFAULT '',
		is_public BOOLEAN NOT NULL DEFAULT false,
		version TEXT NOT NULL DEFAULT '1.0.0',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workflows_created_by ON workflows(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_workflows_public ON workflows(is_public)`,
	`CREATE INDEX IF NOT EXISTS idx_workflows_category ON workflows(LOWER(category))`,
	`CREATE INDEX IF NOT EXISTS idx_workflows_created_at ON workflows(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS search_history (
		id BIGSERIAL PRIMARY KEY,
		search_id TEXT NOT NULL UNIQUE,
		query_hash TEXT NOT NULL,
		intent TEXT NOT NULL DEFAULT 'search',
		timestamp TIMESTAMPTZ NOT NULL,
		results_count INTEGER NOT NULL
	)`,
}

// Close releases the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
