package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// hardMaxLimit mirrors the search engine's upper bound on results.
const hardMaxLimit = 50

// Validate checks that every section holds usable values. Failures are
// reported as *FieldError.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			return &FieldError{Field: "storage.postgresDsn", Message: "is required for the postgres driver"}
		}
	default:
		return &FieldError{
			Field:   "storage.driver",
			Message: fmt.Sprintf("%q is not supported (use %q or %q)", c.Storage.Driver, DriverSQLite, DriverPostgres),
		}
	}

	if c.Search.MaxLimit < 1 || c.Search.MaxLimit > hardMaxLimit {
		return &FieldError{
			Field:   "search.maxLimit",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", hardMaxLimit, c.Search.MaxLimit),
		}
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return &FieldError{
			Field:   "search.defaultLimit",
			Message: fmt.Sprintf("must be between 1 and search.maxLimit (%d), got %d", c.Search.MaxLimit, c.Search.DefaultLimit),
		}
	}

	if c.HTTP.Addr == "" {
		return &FieldError{Field: "http.addr", Message: "must not be empty"}
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return &FieldError{Field: "logging.level", Message: fmt.Sprintf("%q is invalid", c.Logging.Level), Err: err}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return &FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("%q is not supported (use \"json\" or \"console\")", c.Logging.Format),
		}
	}

	if c.Analytics.RetentionDays < 0 {
		return &FieldError{Field: "analytics.retentionDays", Message: "must not be negative"}
	}

	return nil
}
