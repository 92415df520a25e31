package config

import (
	"errors"
	"fmt"
)

// PermissionError reports a workflow-hub config file that cannot be read or
// written by the current user.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // Suggested fix command
	Details string // Additional context
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Details != "" {
		msg += e.Details + "\n"
	}
	msg += "💡 Fix: " + e.Fix
	return msg
}

// ConfigNotFoundError represents missing config file. Callers that can run on
// defaults check for it with errors.As.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

// FieldError names the config key that failed validation, in the dotted
// form used by the JSON file (e.g. "search.maxLimit").
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
	}
	return e.Field + " " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// InvalidConfigError represents malformed config or out-of-range values.
// Field is set when a single key is at fault.
type InvalidConfigError struct {
	Path    string
	Field   string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	if e.Message != "" {
		msg += e.Message + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}

// fieldHints suggests a fix for keys whose valid range is not obvious from
// the message alone.
var fieldHints = map[string]string{
	"storage.driver":          `Set storage.driver to "sqlite" or "postgres", or export ` + EnvStorageDriver,
	"storage.postgresDsn":     "Set storage.postgresDsn or export " + EnvPostgresDSN,
	"search.maxLimit":         fmt.Sprintf("Searches never return more than %d results", hardMaxLimit),
	"search.defaultLimit":     "search.defaultLimit is used when a request has no limit and must not exceed search.maxLimit",
	"logging.level":           "Use one of trace, debug, info, warn, error",
	"analytics.retentionDays": "Use 0 to keep search history forever",
}

// newInvalidConfigError wraps a validation failure for path, carrying the
// failing field and its hint when err is a *FieldError.
func newInvalidConfigError(path string, err error, fallbackHint string) *InvalidConfigError {
	invalid := &InvalidConfigError{
		Path:    path,
		Message: err.Error(),
		Hint:    fallbackHint,
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		invalid.Field = fe.Field
		if hint, ok := fieldHints[fe.Field]; ok {
			invalid.Hint = hint
		}
	}
	return invalid
}
