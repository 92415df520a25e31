package search

import "errors"

var (
	// ErrInvalidQuery is returned when the query text is empty or blank.
	ErrInvalidQuery = errors.New("query must not be empty")

	// ErrCandidateFetch wraps failures of the candidate source.
	ErrCandidateFetch = errors.New("failed to fetch workflow candidates")

	// ErrCandidateSourceRequired is returned when a service is built without storage.
	ErrCandidateSourceRequired = errors.New("candidate source required")
)
