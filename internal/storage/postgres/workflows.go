package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

const workflowColumns = `id, name, description, category, tags, created_by, is_public, version, created_at, updated_at`

// SaveWorkflow inserts or updates a workflow, keeping the original created_at.
func (s *Store) SaveWorkflow(ctx context.Context, wf storage.Workflow) (storage.Workflow, error) {
	wf, err := storage.PrepareWorkflow(wf, time.Now())
	if err != nil {
		return storage.Workflow{}, err
	}

	query := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			created_by = EXCLUDED.created_by,
			is_public = EXCLUDED.is_public,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`

	var createdAt time.Time
	err = s.db.QueryRow(ctx, query,
		wf.ID,
		wf.Name,
		wf.Description,
		wf.Category,
		wf.Tags,
		wf.CreatedBy,
		wf.IsPublic,
		wf.Version,
		wf.CreatedAt,
		wf.UpdatedAt,
	).Scan(&createdAt)
	if err != nil {
		return storage.Workflow{}, fmt.Errorf("failed to save workflow %s: %w", wf.ID, err)
	}
	wf.CreatedAt = createdAt

	return wf, nil
}

// GetWorkflow retrieves a workflow by ID.
func (s *Store) GetWorkflow(ctx context.Context, id string) (storage.Workflow, error) {
	row := s.db.QueryRow(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = $1`, id)
	wf, err := scanWorkflow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Workflow{}, fmt.Errorf("%w: %s", storage.ErrWorkflowNotFound, id)
	}
	if err != nil {
		return storage.Workflow{}, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}
	return wf, nil
}

// DeleteWorkflow removes a workflow by ID.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrWorkflowNotFound, id)
	}
	return nil
}

// ListWorkflows returns workflows ordered newest first.
func (s *Store) ListWorkflows(ctx context.Context, opts storage.ListOptions) ([]storage.Workflow, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var b queryBuilder
	if opts.OnlyPublic {
		b.where("is_public = true")
	}
	if opts.CreatedBy != "" {
		b.where("created_by = " + b.arg(opts.CreatedBy))
	}

	query := `SELECT ` + workflowColumns + ` FROM workflows` + b.clause() +
		` ORDER BY created_at DESC, id ASC LIMIT ` + b.arg(limit) + ` OFFSET ` + b.arg(offset)

	return s.queryWorkflows(ctx, query, b.args...)
}

// FetchCandidates returns the workflows a search may score. Every field of
// the candidate query, including tag overlap, is evaluated in SQL.
func (s *Store) FetchCandidates(ctx context.Context, q storage.CandidateQuery) ([]storage.Workflow, error) {
	query, args := buildCandidateQuery(q)

	workflows, err := s.queryWorkflows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	return workflows, nil
}

func buildCandidateQuery(q storage.CandidateQuery) (string, []any) {
	var b queryBuilder

	if q.RequesterID == "" {
		b.where("is_public = true")
	} else {
		b.where("(is_public = true OR created_by = " + b.arg(q.RequesterID) + ")")
	}
	if q.Category != "" {
		b.where("LOWER(category) = " + b.arg(strings.ToLower(q.Category)))
	}
	if q.IsPublic != nil {
		b.where("is_public = " + b.arg(*q.IsPublic))
	}
	if q.CreatedBy != "" {
		b.where("created_by = " + b.arg(q.CreatedBy))
	}
	if len(q.Tags) > 0 {
		b.where("tags && " + b.arg(q.Tags) + "::text[]")
	}

	return `SELECT ` + workflowColumns + ` FROM workflows` + b.clause(), b.args
}

func (s *Store) queryWorkflows(ctx context.Context, query string, args ...any) ([]storage.Workflow, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workflows := []storage.Workflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return workflows, nil
}

func scanWorkflow(row pgx.Row) (storage.Workflow, error) {
	var wf storage.Workflow
	if err := row.Scan(
		&wf.ID,
		&wf.Name,
		&wf.Description,
		&wf.Category,
		&wf.Tags,
		&wf.CreatedBy,
		&wf.IsPublic,
		&wf.Version,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	); err != nil {
		return storage.Workflow{}, err
	}
	if wf.Tags == nil {
		wf.Tags = []string{}
	}
	return wf, nil
}

// queryBuilder numbers positional parameters as conditions are added.
type queryBuilder struct {
	conds []string
	args  []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *queryBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}
