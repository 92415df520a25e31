package storage

import "errors"

var (
	// ErrStorageDisabled is returned when the database could not be opened.
	ErrStorageDisabled = errors.New("workflow storage is unavailable")

	// ErrWorkflowNotFound is returned when no workflow has the requested ID.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrInvalidWorkflow is returned when a workflow fails validation on save.
	ErrInvalidWorkflow = errors.New("invalid workflow")
)
