/*
Package storage provides tests for the storage layer.
*/
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// newTestStorage opens an initialized store in a temp directory.
func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	storage := NewStorage(dbPath, nil)
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

// TestNewStorage verifies storage construction.
func TestNewStorage(t *testing.T) {
	storage := NewStorage("", nil)
	if storage == nil {
		t.Fatal("NewStorage returned nil")
	}
	if storage.enabled && storage.Path() == "" {
		t.Error("enabled storage should have a default path")
	}
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	storage := NewStorage(dbPath, nil)
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer storage.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}

	version, err := storage.getCurrentMigrationVersion()
	if err != nil {
		t.Fatalf("getCurrentMigrationVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected migration version 2, got %d", version)
	}
}

// TestInitIsIdempotent verifies reopening an existing database.
func TestInitIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first := NewStorage(dbPath, nil)
	if err := first.Init(); err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	first.Close()

	second := NewStorage(dbPath, nil)
	if err := second.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	second.Close()
}

// TestSaveAndGetWorkflow verifies round-tripping a workflow.
func TestSaveAndGetWorkflow(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	saved, err := storage.SaveWorkflow(ctx, Workflow{
		Name:        "Slack Notification Bot",
		Description: "sends slack alerts",
		Category:    "notification",
		Tags:        []string{"slack", "alerts", "slack"},
		CreatedBy:   "alice",
		IsPublic:    true,
	})
	if err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	if saved.ID == "" {
		t.Fatal("expected generated ID")
	}
	if saved.Version != DefaultVersion {
		t.Errorf("Expected default version %q, got %q", DefaultVersion, saved.Version)
	}

	got, err := storage.GetWorkflow(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetWorkflow failed: %v", err)
	}

	if got.Name != "Slack Notification Bot" {
		t.Errorf("Expected name 'Slack Notification Bot', got %q", got.Name)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "slack" || got.Tags[1] != "alerts" {
		t.Errorf("Expected tags [slack alerts], got %v", got.Tags)
	}
	if !got.IsPublic {
		t.Error("Expected workflow to be public")
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("CreatedAt mismatch: %v vs %v", got.CreatedAt, saved.CreatedAt)
	}
}

// TestSaveWorkflowKeepsCreatedAt verifies updates do not move created_at.
func TestSaveWorkflowKeepsCreatedAt(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := storage.SaveWorkflow(ctx, Workflow{ID: "wf-1", Name: "first", CreatedAt: created})
	if err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	second, err := storage.SaveWorkflow(ctx, Workflow{ID: "wf-1", Name: "renamed"})
	if err != nil {
		t.Fatalf("SaveWorkflow (update) failed: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", first.CreatedAt, second.CreatedAt)
	}

	got, err := storage.GetWorkflow(ctx, "wf-1")
	if err != nil {
		t.Fatalf("GetWorkflow failed: %v", err)
	}
	if got.Name != "renamed" {
		t.Errorf("Expected updated name, got %q", got.Name)
	}
}

// TestSaveWorkflowValidation verifies invalid workflows are rejected.
func TestSaveWorkflowValidation(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.SaveWorkflow(context.Background(), Workflow{Name: "   "})
	if !errors.Is(err, ErrInvalidWorkflow) {
		t.Errorf("Expected ErrInvalidWorkflow, got %v", err)
	}
}

// TestDeleteWorkflow verifies removal and not-found reporting.
func TestDeleteWorkflow(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	saved, err := storage.SaveWorkflow(ctx, Workflow{Name: "to delete"})
	if err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	if err := storage.DeleteWorkflow(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteWorkflow failed: %v", err)
	}

	if _, err := storage.GetWorkflow(ctx, saved.ID); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("Expected ErrWorkflowNotFound after delete, got %v", err)
	}

	if err := storage.DeleteWorkflow(ctx, saved.ID); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("Expected ErrWorkflowNotFound on second delete, got %v", err)
	}
}

// TestListWorkflows verifies ordering and filters of plain listing.
func TestListWorkflows(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fixtures := []Workflow{
		{ID: "a", Name: "oldest public", IsPublic: true, CreatedBy: "alice", CreatedAt: base},
		{ID: "b", Name: "private", IsPublic: false, CreatedBy: "alice", CreatedAt: base.Add(time.Hour)},
		{ID: "c", Name: "newest public", IsPublic: true, CreatedBy: "bob", CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, wf := range fixtures {
		if _, err := storage.SaveWorkflow(ctx, wf); err != nil {
			t.Fatalf("SaveWorkflow(%s) failed: %v", wf.ID, err)
		}
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "all", opts: ListOptions{}, want: []string{"c", "b", "a"}},
		{name: "public only", opts: ListOptions{OnlyPublic: true}, want: []string{"c", "a"}},
		{name: "by owner", opts: ListOptions{CreatedBy: "alice"}, want: []string{"b", "a"}},
		{name: "paged", opts: ListOptions{Limit: 1, Offset: 1}, want: []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ListWorkflows(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListWorkflows failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d workflows, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

// TestFetchCandidates verifies the pushed-down candidate filters.
func TestFetchCandidates(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	fixtures := []Workflow{
		{ID: "pub-notify", Name: "n", Category: "Notification", IsPublic: true, CreatedBy: "alice"},
		{ID: "priv-alice", Name: "p", Category: "notification", IsPublic: false, CreatedBy: "alice"},
		{ID: "pub-data", Name: "d", Category: "data-processing", IsPublic: true, CreatedBy: "bob"},
	}
	for _, wf := range fixtures {
		if _, err := storage.SaveWorkflow(ctx, wf); err != nil {
			t.Fatalf("SaveWorkflow(%s) failed: %v", wf.ID, err)
		}
	}

	private := false

	tests := []struct {
		name  string
		query CandidateQuery
		want  map[string]bool
	}{
		{
			name:  "anonymous sees public only",
			query: CandidateQuery{},
			want:  map[string]bool{"pub-notify": true, "pub-data": true},
		},
		{
			name:  "owner sees own private",
			query: CandidateQuery{RequesterID: "alice"},
			want:  map[string]bool{"pub-notify": true, "priv-alice": true, "pub-data": true},
		},
		{
			name:  "other user does not see private",
			query: CandidateQuery{RequesterID: "bob"},
			want:  map[string]bool{"pub-notify": true, "pub-data": true},
		},
		{
			name:  "category is case-insensitive",
			query: CandidateQuery{RequesterID: "alice", Category: "NOTIFICATION"},
			want:  map[string]bool{"pub-notify": true, "priv-alice": true},
		},
		{
			name:  "explicit private filter",
			query: CandidateQuery{RequesterID: "alice", IsPublic: &private},
			want:  map[string]bool{"priv-alice": true},
		},
		{
			name:  "created by",
			query: CandidateQuery{CreatedBy: "bob"},
			want:  map[string]bool{"pub-data": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.FetchCandidates(ctx, tt.query)
			if err != nil {
				t.Fatalf("FetchCandidates failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d candidates, got %d", len(tt.want), len(got))
			}
			for _, wf := range got {
				if !tt.want[wf.ID] {
					t.Errorf("unexpected candidate %s", wf.ID)
				}
			}
		})
	}
}

// TestRecordSearchAndStats verifies search history recording and aggregation.
func TestRecordSearchAndStats(t *testing.T) {
	storage := newTestStorage(t)

	records := []SearchRecord{
		{SearchID: "s1", QueryHash: HashQuery("slack"), Intent: "chat", Timestamp: time.Now(), ResultsCount: 2},
		{SearchID: "s2", QueryHash: HashQuery("xyz"), Intent: "search", Timestamp: time.Now(), ResultsCount: 0},
		{SearchID: "s3", QueryHash: HashQuery("chat"), Intent: "chat", Timestamp: time.Now(), ResultsCount: 1},
	}
	for _, r := range records {
		if err := storage.RecordSearch(r); err != nil {
			t.Fatalf("RecordSearch failed: %v", err)
		}
	}

	stats, err := storage.GetSearchStats(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetSearchStats failed: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Expected 3 searches, got %d", stats.Total)
	}
	if stats.ZeroResults != 1 {
		t.Errorf("Expected 1 zero-result search, got %d", stats.ZeroResults)
	}
	if stats.ByIntent["chat"] != 2 {
		t.Errorf("Expected 2 chat searches, got %d", stats.ByIntent["chat"])
	}
}

// TestCleanup verifies retention-based deletion of search history.
func TestCleanup(t *testing.T) {
	storage := newTestStorage(t)

	old := SearchRecord{SearchID: "old", QueryHash: "h", Intent: "search", Timestamp: time.Now().Add(-48 * time.Hour)}
	recent := SearchRecord{SearchID: "new", QueryHash: "h", Intent: "search", Timestamp: time.Now()}
	storage.RecordSearch(old)
	storage.RecordSearch(recent)

	if err := storage.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	stats, err := storage.GetSearchStats(time.Now().Add(-72 * time.Hour))
	if err != nil {
		t.Fatalf("GetSearchStats failed: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Expected 1 search after cleanup, got %d", stats.Total)
	}
}

// TestHashQuery verifies query hashing consistency.
func TestHashQuery(t *testing.T) {
	query := "test query for hashing"

	hash1 := HashQuery(query)
	hash2 := HashQuery(query)

	if hash1 != hash2 {
		t.Error("HashQuery produced inconsistent results")
	}

	if len(hash1) != 64 { // SHA256 hex = 64 chars
		t.Errorf("Expected hash length 64, got %d", len(hash1))
	}
}

// TestDisabledStorage verifies behavior when the DB cannot be opened.
func TestDisabledStorage(t *testing.T) {
	// A regular file where a directory is expected makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	storage := NewStorage(filepath.Join(blocker, "sub", "test.db"), nil)
	if err := storage.Init(); err == nil {
		t.Fatal("expected Init to fail")
	}

	// Analytics degrade silently
	if err := storage.RecordSearch(SearchRecord{SearchID: "x"}); err != nil {
		t.Errorf("RecordSearch should return nil on disabled storage, got: %v", err)
	}

	// Workflow reads surface the failure
	_, err := storage.FetchCandidates(context.Background(), CandidateQuery{})
	if !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("Expected ErrStorageDisabled, got %v", err)
	}
}

// TestCloseDuringUse verifies calls racing Close either finish or report
// ErrStorageDisabled.
func TestCloseDuringUse(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if _, err := storage.SaveWorkflow(ctx, Workflow{ID: "wf-1", Name: "Slack bot", IsPublic: true}); err != nil {
		t.Fatalf("SaveWorkflow failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 50; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			if _, err := storage.FetchCandidates(ctx, CandidateQuery{}); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := storage.GetWorkflow(ctx, "wf-1"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			storage.RecordSearch(SearchRecord{SearchID: "s", QueryHash: "h", Intent: "general", Timestamp: time.Now()})
		}()
		go func() {
			defer wg.Done()
			storage.Cleanup(time.Hour)
		}()
	}

	if err := storage.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, ErrStorageDisabled) {
			t.Errorf("expected ErrStorageDisabled after Close, got %v", err)
		}
	}

	if _, err := storage.FetchCandidates(ctx, CandidateQuery{}); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("expected ErrStorageDisabled, got %v", err)
	}
}
