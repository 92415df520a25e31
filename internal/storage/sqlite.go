/*
Package storage provides SQLite database migrations and helper functions.

This file contains schema definitions, migration logic, and tag
serialization utilities for the storage layer.
*/
package storage

import (
	"encoding/json"
	"fmt"
)

// timeLayout is fixed-width so that text ordering matches time ordering and
// keeps sub-second precision for created_at tie-breaks.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if s.db == nil {
		return nil
	}

	// Create migrations table
	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	// Get current version
	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	// Run migrations in order
	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
		{version: 2, name: "search_history", up: s.migration002SearchHistory},
	}

	for _, m := range migrations {
		if version < m.version {
			s.logger.Info().Int("version", m.version).Str("name", m.name).Msg("running migration")
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	query := "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"
	row := s.db.QueryRow(query)

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(version int, name string) error {
	query := "INSERT INTO schema_migrations (version, name) VALUES (?, ?)"
	_, err := s.db.Exec(query, version, name)
	return err
}

// migration001InitialSchema creates the workflows table.
func (s *SQLiteStorage) migration001InitialSchema() error {
	// category_key holds the Go-lowercased category so that pushed-down
	// category filters agree with the in-memory comparison for non-ASCII text.
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'General',
			category_key TEXT NOT NULL DEFAULT 'general',
			tags TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL DEFAULT '',
			is_public INTEGER NOT NULL DEFAULT 0,
			version TEXT NOT NULL DEFAULT '1.0.0',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create workflows table: %w", err)
	}

	indexes := []struct {
		name string
		ddl  string
	}{
		{"idx_workflows_created_by", `CREATE INDEX IF NOT EXISTS idx_workflows_created_by ON workflows(created_by)`},
		{"idx_workflows_public", `CREATE INDEX IF NOT EXISTS idx_workflows_public ON workflows(is_public)`},
		{"idx_workflows_category", `CREATE INDEX IF NOT EXISTS idx_workflows_category ON workflows(category_key)`},
		{"idx_workflows_created_at", `CREATE INDEX IF NOT EXISTS idx_workflows_created_at ON workflows(created_at DESC)`},
	}
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", idx.name, err)
		}
	}

	return nil
}

// migration002SearchHistory creates the search analytics table.
func (s *SQLiteStorage) migration002SearchHistory() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id TEXT NOT NULL UNIQUE,
			query_hash TEXT NOT NULL,
			intent TEXT NOT NULL DEFAULT 'search',
			timestamp TEXT NOT NULL,
			results_count INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create search_history table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_search_history_timestamp
		ON search_history(timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create search_history timestamp index: %w", err)
	}

	return nil
}

// tagsToJSON converts a tag list to JSON for storage.
func tagsToJSON(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}

// jsonToTags parses JSON storage back to a tag list.
func jsonToTags(jsonStr string) ([]string, error) {
	tags := []string{}
	if jsonStr == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(jsonStr), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
