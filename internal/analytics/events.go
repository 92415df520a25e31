/*
Package analytics records search history in the background.

Transports enqueue a SearchEvent after each successful search; a single
goroutine batches the events into storage. Recording never blocks a search
and never influences ranking. Raw query text is not kept: only its SHA-256
hash is stored.
*/
package analytics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// SearchEvent describes one completed search.
type SearchEvent struct {
	// SearchID uniquely identifies the search.
	SearchID string

	// QueryHash is the SHA-256 hash of the normalized query.
	QueryHash string

	// Intent is the classified intent of the query.
	Intent string

	// ResultsCount is the number of results returned.
	ResultsCount int

	// Timestamp is when the search completed.
	Timestamp time.Time
}

// NewSearchEvent creates an event with a fresh search ID.
func NewSearchEvent(query, intent string, resultsCount int) SearchEvent {
	return SearchEvent{
		SearchID:     uuid.NewString(),
		QueryHash:    storage.HashQuery(strings.ToLower(strings.TrimSpace(query))),
		Intent:       intent,
		ResultsCount: resultsCount,
		Timestamp:    time.Now().UTC(),
	}
}

// ToStorage converts the event to the storage model.
func (e SearchEvent) ToStorage() storage.SearchRecord {
	return storage.SearchRecord{
		SearchID:     e.SearchID,
		QueryHash:    e.QueryHash,
		Intent:       e.Intent,
		Timestamp:    e.Timestamp,
		ResultsCount: e.ResultsCount,
	}
}
