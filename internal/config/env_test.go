package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvStorageDriver, " Postgres ")
	t.Setenv(EnvPostgresDSN, "postgres://hub@localhost/workflows")
	t.Setenv(EnvDefaultLimit, "20")
	t.Setenv(EnvMaxLimit, "40")
	t.Setenv(EnvAllowedOrigins, "https://a.example.com, ,https://b.example.com")
	t.Setenv(EnvAnalytics, "false")
	t.Setenv(EnvRetentionDays, "7")

	cfg := NewConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Storage.Driver != DriverPostgres {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Storage.PostgresDSN != "postgres://hub@localhost/workflows" {
		t.Errorf("dsn = %q", cfg.Storage.PostgresDSN)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 40 {
		t.Errorf("limits = %+v", cfg.Search)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.HTTP.AllowedOrigins, want) {
		t.Errorf("origins = %v, want %v", cfg.HTTP.AllowedOrigins, want)
	}
	if cfg.Analytics.Enabled || cfg.Analytics.RetentionDays != 7 {
		t.Errorf("analytics = %+v", cfg.Analytics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config should be valid: %v", err)
	}
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv(EnvMaxLimit, "lots")

	err := ApplyEnv(NewConfig())
	if err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
	if !strings.Contains(err.Error(), EnvMaxLimit) {
		t.Errorf("error should name the variable, got: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("WORKFLOW_HUB_HTTP_ADDR=:6060\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv(EnvHTTPAddr, "")
	os.Unsetenv(EnvHTTPAddr)

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv(EnvHTTPAddr); got != ":6060" {
		t.Errorf("%s = %q, want :6060", EnvHTTPAddr, got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}
