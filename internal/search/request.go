package search

import (
	"strings"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

const (
	// DefaultLimit applies when a request carries no limit.
	DefaultLimit = 10
	// MaxLimit is the hard upper bound on results per search.
	MaxLimit = 50
)

// Filters narrows the candidate set. Zero values mean "not declared".
type Filters struct {
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	IsPublic  *bool    `json:"isPublic,omitempty"`
	CreatedBy string   `json:"createdBy,omitempty"`
}

// Request is a single search call.
type Request struct {
	Query       string   `json:"query"`
	Filters     *Filters `json:"filters,omitempty"`
	Limit       *int     `json:"limit,omitempty"`
	RequesterID string   `json:"requesterId,omitempty"`
}

// Validate rejects requests whose query is empty after trimming.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrInvalidQuery
	}
	return nil
}

func (r Request) filters() Filters {
	if r.Filters == nil {
		return Filters{}
	}
	return *r.Filters
}

// candidateQuery converts the request into the storage-native subset of its
// filters. Tag intersection is left to the in-memory filter.
func (r Request) candidateQuery() storage.CandidateQuery {
	f := r.filters()
	return storage.CandidateQuery{
		RequesterID: r.RequesterID,
		Category:    f.Category,
		IsPublic:    f.IsPublic,
		CreatedBy:   f.CreatedBy,
		Tags:        f.Tags,
	}
}

// clampLimit resolves the effective limit: absent means defaultLimit, any
// explicit value is clamped into [1, maxLimit].
func clampLimit(limit *int, defaultLimit, maxLimit int) int {
	if limit == nil {
		return defaultLimit
	}
	return min(max(*limit, 1), maxLimit)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }
