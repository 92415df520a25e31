/*
Package storage provides data models for workflow records and search history.

Workflow records are owned by the storage layer; the search engine only reads
snapshots of them and never writes back.
*/
package storage

import "time"

// Workflow is a shared workflow document as persisted by the store.
type Workflow struct {
	// ID is the unique workflow identifier (UUID when generated locally).
	ID string `json:"id" yaml:"id,omitempty"`

	// Name is the display title of the workflow.
	Name string `json:"name" yaml:"name"`

	// Description is free text describing what the workflow does.
	Description string `json:"description" yaml:"description,omitempty"`

	// Category is a coarse grouping such as "notification" or "General".
	Category string `json:"category" yaml:"category,omitempty"`

	// Tags are free-form labels; order is preserved, duplicates carry no meaning.
	Tags []string `json:"tags" yaml:"tags,omitempty"`

	// CreatedBy identifies the owner of the workflow.
	CreatedBy string `json:"createdBy" yaml:"createdBy,omitempty"`

	// IsPublic marks the workflow as visible to every requester.
	IsPublic bool `json:"isPublic" yaml:"isPublic,omitempty"`

	// Version is the workflow document version (defaults to 1.0.0).
	Version string `json:"version" yaml:"version,omitempty"`

	// CreatedAt is when the workflow was first stored.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt,omitempty"`

	// UpdatedAt is when the workflow was last saved.
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// CandidateQuery carries the filters a store can evaluate natively when
// fetching search candidates. Callers must still re-check every predicate
// in memory; stores are free to ignore any field.
type CandidateQuery struct {
	// RequesterID restricts private workflows to their owner. Empty means
	// only public workflows are visible.
	RequesterID string

	// Category is compared case-insensitively when non-empty.
	Category string

	// IsPublic is compared exactly when non-nil.
	IsPublic *bool

	// CreatedBy is compared exactly when non-empty.
	CreatedBy string

	// Tags requests a non-empty intersection with the workflow tags.
	Tags []string
}

// ListOptions controls plain (unranked) workflow listing.
type ListOptions struct {
	// Limit caps the number of returned workflows (0 means 20).
	Limit int

	// Offset skips the first N workflows.
	Offset int

	// OnlyPublic restricts the listing to public workflows.
	OnlyPublic bool

	// CreatedBy restricts the listing to one owner when non-empty.
	CreatedBy string
}

// SearchRecord represents a search query for analytics.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// QueryHash is the SHA256 hash of the search query for privacy.
	QueryHash string `json:"query_hash"`

	// Intent is the classified intent of the query.
	Intent string `json:"intent"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`
}
