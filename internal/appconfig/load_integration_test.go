// internal/appconfig/load_integration_test.go
package appconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })
}

func TestLoadDefaultPath(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}

	payload := `{ "metricsAddr": ":9464", "fixture": { "maxTime": "500ms" } }`
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, tempDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ConfigPath != DefaultConfigPath {
		t.Fatalf("expected config path %q, got %q", DefaultConfigPath, cfg.ConfigPath)
	}
	if cfg.MetricsAddr != ":9464" {
		t.Fatalf("expected metrics addr, got %q", cfg.MetricsAddr)
	}
}

func TestLoadLegacyFallback(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "redqueen.json"), []byte(`{ "logLevel": "debug" }`), 0o644); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}
	chdir(t, tempDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LogLevelName() != "debug" {
		t.Fatalf("expected level from legacy file, got %q", cfg.LogLevelName())
	}
}

func TestLoadMissingFileError(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load(""); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
	if _, err := Load("missing.yaml"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound for explicit path, got %v", err)
	}
}
