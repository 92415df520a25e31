package storage

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxNameLength is the longest accepted workflow name.
	MaxNameLength = 200

	// MaxDescriptionLength is the longest accepted workflow description.
	MaxDescriptionLength = 1000

	// DefaultCategory is assigned to workflows saved without a category.
	DefaultCategory = "General"

	// DefaultVersion is assigned to workflows saved without a version.
	DefaultVersion = "1.0.0"
)

// PrepareWorkflow validates wf and fills in defaults before it is written.
// It assigns an ID when missing, stamps timestamps and normalizes tags.
// Every store calls it so that records look the same regardless of backend.
func PrepareWorkflow(wf Workflow, now time.Time) (Workflow, error) {
	wf.Name = strings.TrimSpace(wf.Name)
	wf.Description = strings.TrimSpace(wf.Description)
	wf.Category = strings.TrimSpace(wf.Category)
	wf.CreatedBy = strings.TrimSpace(wf.CreatedBy)

	if wf.Name == "" {
		return wf, fmt.Errorf("%w: name is required", ErrInvalidWorkflow)
	}
	if utf8.RuneCountInString(wf.Name) > MaxNameLength {
		return wf, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidWorkflow, MaxNameLength)
	}
	if utf8.RuneCountInString(wf.Description) > MaxDescriptionLength {
		return wf, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidWorkflow, MaxDescriptionLength)
	}

	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	if wf.Category == "" {
		wf.Category = DefaultCategory
	}
	if wf.Version == "" {
		wf.Version = DefaultVersion
	}
	wf.Tags = NormalizeTags(wf.Tags)

	now = now.UTC()
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = now
	}
	wf.UpdatedAt = now

	return wf, nil
}

// NormalizeTags trims tags, drops empty ones and removes exact duplicates
// while keeping first-occurrence order. It never returns nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
