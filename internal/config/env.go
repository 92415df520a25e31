package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvStorageDriver  = "WORKFLOW_HUB_STORAGE_DRIVER"
	EnvDBPath         = "WORKFLOW_HUB_DB_PATH"
	EnvPostgresDSN    = "WORKFLOW_HUB_POSTGRES_DSN"
	EnvDefaultLimit   = "WORKFLOW_HUB_DEFAULT_LIMIT"
	EnvMaxLimit       = "WORKFLOW_HUB_MAX_LIMIT"
	EnvHTTPAddr       = "WORKFLOW_HUB_HTTP_ADDR"
	EnvAllowedOrigins = "WORKFLOW_HUB_ALLOWED_ORIGINS"
	EnvLogLevel       = "WORKFLOW_HUB_LOG_LEVEL"
	EnvLogFormat      = "WORKFLOW_HUB_LOG_FORMAT"
	EnvAnalytics      = "WORKFLOW_HUB_ANALYTICS_ENABLED"
	EnvRetentionDays  = "WORKFLOW_HUB_ANALYTICS_RETENTION_DAYS"
)

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with any WORKFLOW_HUB_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvStorageDriver); ok {
		cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok {
		cfg.Storage.Path = v
	}
	if v, ok := os.LookupEnv(EnvPostgresDSN); ok {
		cfg.Storage.PostgresDSN = v
	}
	if err := envInt(EnvDefaultLimit, &cfg.Search.DefaultLimit); err != nil {
		return err
	}
	if err := envInt(EnvMaxLimit, &cfg.Search.MaxLimit); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		cfg.HTTP.Addr = v
	}
	if v, ok := os.LookupEnv(EnvAllowedOrigins); ok {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvAnalytics); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAnalytics, err)
		}
		cfg.Analytics.Enabled = enabled
	}
	return envInt(EnvRetentionDays, &cfg.Analytics.RetentionDays)
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
