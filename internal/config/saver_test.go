package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWrite(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.json")

	data := []byte(`{"test": "data"}`)
	if err := atomicWrite(testPath, data); err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}

	if _, err := os.Stat(testPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file was not cleaned up")
	}

	readData, err := os.ReadFile(testPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(readData) != string(data) {
		t.Errorf("content mismatch: got %q, want %q", string(readData), string(data))
	}
}

func TestAtomicWriteCreatesDir(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "subdir", "config.json")

	if err := atomicWrite(testPath, []byte(`{}`)); err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}
	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}
}

func TestBackupConfigFirstRun(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.json")

	if err := backupConfig(testPath); err != nil {
		t.Fatalf("backupConfig failed on first run: %v", err)
	}
	if _, err := os.Stat(testPath + ".bak"); !os.IsNotExist(err) {
		t.Error("backup should not exist on first run")
	}
}

func TestSaveCreatesBackup(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.json")

	cfg := NewConfig()
	cfg.HTTP.Addr = ":1111"
	if err := Save(cfg, testPath); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	cfg.HTTP.Addr = ":2222"
	if err := Save(cfg, testPath); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	bakData, err := os.ReadFile(testPath + ".bak")
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if !strings.Contains(string(bakData), `":1111"`) || strings.Contains(string(bakData), `":2222"`) {
		t.Error("backup should contain old config, not new config")
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.json")

	cfg := NewConfig()
	cfg.Storage.Driver = "mysql"

	err := Save(cfg, testPath)
	if _, ok := err.(*InvalidConfigError); !ok {
		t.Fatalf("expected *InvalidConfigError, got %v", err)
	}
	if _, statErr := os.Stat(testPath); !os.IsNotExist(statErr) {
		t.Error("invalid config should not be written")
	}
}
