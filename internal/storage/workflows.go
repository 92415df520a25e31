package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const workflowColumns = `id, name, description, category, tags, created_by, is_public, version, created_at, updated_at`

// SaveWorkflow inserts or replaces a workflow.
//
// The workflow is validated and defaulted by PrepareWorkflow first. When a
// workflow with the same ID exists its original created_at is kept.
func (s *SQLiteStorage) SaveWorkflow(ctx context.Context, wf Workflow) (Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return Workflow{}, err
	}

	wf, err := PrepareWorkflow(wf, time.Now())
	if err != nil {
		return Workflow{}, err
	}

	tagsJSON, err := tagsToJSON(wf.Tags)
	if err != nil {
		return Workflow{}, err
	}

	query := `
		INSERT INTO workflows (` + workflowColumns + `, category_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			category_key = excluded.category_key,
			tags = excluded.tags,
			created_by = excluded.created_by,
			is_public = excluded.is_public,
			version = excluded.version,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		wf.ID,
		wf.Name,
		wf.Description,
		wf.Category,
		tagsJSON,
		wf.CreatedBy,
		boolToInt(wf.IsPublic),
		wf.Version,
		wf.CreatedAt.UTC().Format(timeLayout),
		wf.UpdatedAt.UTC().Format(timeLayout),
		strings.ToLower(wf.Category),
	)
	if err != nil {
		return Workflow{}, fmt.Errorf("failed to save workflow %s: %w", wf.ID, err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT created_at FROM workflows WHERE id = ?`, wf.ID)
	var createdAt string
	if err := row.Scan(&createdAt); err == nil {
		if t, perr := time.Parse(timeLayout, createdAt); perr == nil {
			wf.CreatedAt = t
		}
	}

	return wf, nil
}

// GetWorkflow retrieves a workflow by ID.
func (s *SQLiteStorage) GetWorkflow(ctx context.Context, id string) (Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return Workflow{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = ?`, id)
	wf, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Workflow{}, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if err != nil {
		return Workflow{}, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}
	return wf, nil
}

// DeleteWorkflow removes a workflow by ID.
func (s *SQLiteStorage) DeleteWorkflow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return nil
}

// ListWorkflows returns workflows ordered newest first.
func (s *SQLiteStorage) ListWorkflows(ctx context.Context, opts ListOptions) ([]Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		where []string
		args  []any
	)
	if opts.OnlyPublic {
		where = append(where, "is_public = 1")
	}
	if opts.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, opts.CreatedBy)
	}

	query := `SELECT ` + workflowColumns + ` FROM workflows`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return s.queryWorkflows(ctx, query, args...)
}

// FetchCandidates returns the workflows a search may score.
//
// Visibility, category, isPublic and createdBy are evaluated in SQL. Tags are
// stored as JSON text, so tag intersection is left to the caller.
func (s *SQLiteStorage) FetchCandidates(ctx context.Context, q CandidateQuery) ([]Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}

	query, args := buildCandidateQuery(q)

	workflows, err := s.queryWorkflows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	return workflows, nil
}

// buildCandidateQuery renders the pushed-down candidate filter as SQL.
func buildCandidateQuery(q CandidateQuery) (string, []any) {
	var (
		where []string
		args  []any
	)

	if q.RequesterID == "" {
		where = append(where, "is_public = 1")
	} else {
		where = append(where, "(is_public = 1 OR created_by = ?)")
		args = append(args, q.RequesterID)
	}
	if q.Category != "" {
		where = append(where, "category_key = ?")
		args = append(args, strings.ToLower(q.Category))
	}
	if q.IsPublic != nil {
		where = append(where, "is_public = ?")
		args = append(args, boolToInt(*q.IsPublic))
	}
	if q.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, q.CreatedBy)
	}

	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE ` + strings.Join(where, " AND ")
	return query, args
}

func (s *SQLiteStorage) queryWorkflows(ctx context.Context, query string, args ...any) ([]Workflow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workflows := []Workflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (Workflow, error) {
	var (
		wf                   Workflow
		tagsJSON             string
		isPublic             int
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&wf.ID,
		&wf.Name,
		&wf.Description,
		&wf.Category,
		&tagsJSON,
		&wf.CreatedBy,
		&isPublic,
		&wf.Version,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Workflow{}, err
	}

	tags, err := jsonToTags(tagsJSON)
	if err != nil {
		return Workflow{}, fmt.Errorf("workflow %s: bad tags column: %w", wf.ID, err)
	}
	wf.Tags = tags
	wf.IsPublic = isPublic != 0

	if wf.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Workflow{}, fmt.Errorf("workflow %s: bad created_at: %w", wf.ID, err)
	}
	if wf.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return Workflow{}, fmt.Errorf("workflow %s: bad updated_at: %w", wf.ID, err)
	}

	return wf, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
