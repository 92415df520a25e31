package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

var columns = []string{"id", "name", "description", "category", "tags", "created_by", "is_public", "version", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return New(mock, nil), mock
}

func TestBuildCandidateQuery(t *testing.T) {
	public := true

	tests := []struct {
		name      string
		query     storage.CandidateQuery
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "anonymous",
			query:     storage.CandidateQuery{},
			wantWhere: " WHERE is_public = true",
			wantArgs:  nil,
		},
		{
			name:      "requester",
			query:     storage.CandidateQuery{RequesterID: "alice"},
			wantWhere: " WHERE (is_public = true OR created_by = $1)",
			wantArgs:  []any{"alice"},
		},
		{
			name: "all filters",
			query: storage.CandidateQuery{
				RequesterID: "alice",
				Category:    "Notification",
				IsPublic:    &public,
				CreatedBy:   "bob",
				Tags:        []string{"slack"},
			},
			wantWhere: " WHERE (is_public = true OR created_by = $1) AND LOWER(category) = $2 AND is_public = $3 AND created_by = $4 AND tags && $5::text[]",
			wantArgs:  []any{"alice", "notification", true, "bob", []string{"slack"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildCandidateQuery(tt.query)
			assert.Equal(t, "SELECT "+workflowColumns+" FROM workflows"+tt.wantWhere, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestStore_FetchCandidates(t *testing.T) {
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     storage.CandidateQuery
		mockSetup func(pgxmock.PgxPoolIface)
		wantIDs   []string
		wantErr   bool
	}{
		{
			name:  "returns rows",
			query: storage.CandidateQuery{RequesterID: "alice"},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(columns).
					AddRow("wf-1", "Slack Notification Bot", "sends slack alerts", "notification", []string{"slack"}, "alice", true, "1.0.0", created, created).
					AddRow("wf-2", "Private", "mine", "General", []string{}, "alice", false, "1.0.0", created, created)
				mock.ExpectQuery(`SELECT .+ FROM workflows WHERE \(is_public = true OR created_by = \$1\)`).
					WithArgs("alice").
					WillReturnRows(rows)
			},
			wantIDs: []string{"wf-1", "wf-2"},
		},
		{
			name:  "empty result",
			query: storage.CandidateQuery{},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM workflows WHERE is_public = true`).
					WillReturnRows(pgxmock.NewRows(columns))
			},
			wantIDs: []string{},
		},
		{
			name:  "database error",
			query: storage.CandidateQuery{},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM workflows`).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.mockSetup(mock)

			got, err := store.FetchCandidates(context.Background(), tt.query)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				ids := make([]string, 0, len(got))
				for _, wf := range got {
					ids = append(ids, wf.ID)
				}
				assert.Equal(t, tt.wantIDs, ids)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_GetWorkflowNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM workflows WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(columns))

	_, err := store.GetWorkflow(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrWorkflowNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteWorkflow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM workflows WHERE id = \$1`).
		WithArgs("wf-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM workflows WHERE id = \$1`).
		WithArgs("wf-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, store.DeleteWorkflow(context.Background(), "wf-1"))
	assert.ErrorIs(t, store.DeleteWorkflow(context.Background(), "wf-1"), storage.ErrWorkflowNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveWorkflow(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO workflows`).
		WithArgs("wf-1", "Daily report", "", "General", []string{"report"}, "alice", true, "1.0.0", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	saved, err := store.SaveWorkflow(context.Background(), storage.Workflow{
		ID:        "wf-1",
		Name:      "Daily report",
		Tags:      []string{"report"},
		CreatedBy: "alice",
		IsPublic:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, "General", saved.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveWorkflowRejectsInvalid(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.SaveWorkflow(context.Background(), storage.Workflow{})
	assert.ErrorIs(t, err, storage.ErrInvalidWorkflow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetSearchStats(t *testing.T) {
	store, mock := newMockStore(t)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT intent, COUNT\(\*\)`).
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"intent", "count", "zero"}).
			AddRow("chat", 3, 1).
			AddRow("search", 2, 2))

	stats, err := store.GetSearchStats(since)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.ZeroResults)
	assert.Equal(t, map[string]int{"chat": 3, "search": 2}, stats.ByIntent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
