/*
Package storage implements the persistent workflow store and search history.

This package provides SQLite-based storage for workflow records and search
analytics. Workflow reads fail loudly when the database is unavailable, while
analytics writes degrade gracefully and never interrupt a search.

The database is stored at ~/.workflow-hub/workflows.db by default and uses
modernc.org/sqlite (a pure Go, CGo-free implementation).
*/
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// SaveWorkflow inserts or replaces a workflow and returns the stored copy.
	SaveWorkflow(ctx context.Context, wf Workflow) (Workflow, error)

	// GetWorkflow retrieves a workflow by ID.
	GetWorkflow(ctx context.Context, id string) (Workflow, error)

	// DeleteWorkflow removes a workflow by ID.
	DeleteWorkflow(ctx context.Context, id string) error

	// ListWorkflows returns workflows newest first.
	ListWorkflows(ctx context.Context, opts ListOptions) ([]Workflow, error)

	// FetchCandidates returns every workflow that may match a search.
	FetchCandidates(ctx context.Context, q CandidateQuery) ([]Workflow, error)

	// RecordSearch records a search query for analytics.
	RecordSearch(search SearchRecord) error

	// Cleanup removes old search history based on retention policy.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   *zerolog.Logger
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
}

// DefaultDBPath returns ~/.workflow-hub/workflows.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".workflow-hub", "workflows.db"), nil
}

// NewStorage creates a new SQLite storage instance at dbPath.
//
// An empty dbPath selects DefaultDBPath. If the home directory cannot be
// resolved the storage is created disabled: analytics become no-ops and
// workflow operations return ErrStorageDisabled.
func NewStorage(dbPath string, logger *zerolog.Logger) *SQLiteStorage {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if dbPath == "" {
		p, err := DefaultDBPath()
		if err != nil {
			logger.Warn().Err(err).Msg("workflow storage disabled")
			return &SQLiteStorage{enabled: false, logger: logger}
		}
		dbPath = p
	}

	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
		logger:  logger,
	}
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled. The error is returned from
// Init and every later workflow call reports ErrStorageDisabled.
func (s *SQLiteStorage) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return s.initErr
	}

	s.initOnce.Do(func() {
		if s.dbPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
				s.fail(fmt.Errorf("failed to create db directory: %w", err))
				return
			}
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			s.fail(fmt.Errorf("failed to open database: %w", err))
			return
		}
		// A single connection keeps :memory: databases coherent and
		// serializes writers the way SQLite expects.
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			s.fail(fmt.Errorf("failed to ping database: %w", err))
			return
		}

		if err := s.runMigrations(); err != nil {
			s.fail(fmt.Errorf("failed to run migrations: %w", err))
			return
		}
	})

	return s.initErr
}

func (s *SQLiteStorage) fail(err error) {
	s.initErr = err
	s.enabled = false
	s.logger.Warn().Err(err).Str("path", s.dbPath).Msg("workflow storage disabled")
}

// ready reports whether workflow operations may use the database.
// Callers must hold s.mu so that Close cannot release the handle mid-call.
func (s *SQLiteStorage) ready() error {
	if !s.enabled || s.db == nil {
		if s.initErr != nil {
			return fmt.Errorf("%w: %v", ErrStorageDisabled, s.initErr)
		}
		return ErrStorageDisabled
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	s.enabled = false
	return nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}
