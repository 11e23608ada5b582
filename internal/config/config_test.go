package config

import (
	"os"
	"path/filepath"
	"testing"
)

var configKeys = []string{
	"CONFIG_FILE", "API_PORT", "LOG_LEVEL", "STORAGE_BACKEND", "STORAGE_PATH",
	"B2_KEY_ID", "B2_APP_KEY", "B2_BUCKET", "B2_API_URL", "MAX_UPLOAD_BYTES",
	"API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST", "ASYNC_ENABLED", "NATS_SUBJECT",
	"RESILIENCE_BREAKER_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorageBackend != StorageBackendB2 {
		t.Fatalf("expected default backend b2, got %q", cfg.StorageBackend)
	}
	if cfg.B2KeyID != "" || cfg.B2Bucket != "" {
		t.Fatalf("expected empty B2 credentials by default")
	}
	if cfg.MaxUploadBytes != 32<<20 {
		t.Fatalf("expected 32MiB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.AsyncEnabled {
		t.Fatalf("expected async pipeline disabled by default")
	}
	if !cfg.ResilienceBreakerEnabled {
		t.Fatalf("expected breaker enabled by default")
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "LocalFS")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("ASYNC_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorageBackend != StorageBackendLocalFS {
		t.Fatalf("expected localfs backend, got %q", cfg.StorageBackend)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIRateLimitBurst != 10 {
		t.Fatalf("expected invalid burst to fall back to 10, got %d", cfg.APIRateLimitBurst)
	}
	if !cfg.AsyncEnabled {
		t.Fatalf("expected async enabled")
	}
}

func TestLoadRejectsUnknownStorageBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "s3")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestLoadReadsConfigFileWithEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "compliance.yaml")
	content := `
api:
  port: "9000"
  maxUploadBytes: 1024
log:
  level: debug
storage:
  backend: b2
  b2:
    keyId: key-from-file
    bucket: policies
async:
  enabled: true
resilience:
  breakerEnabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "7000" {
		t.Fatalf("expected env to override file port, got %q", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" || cfg.MaxUploadBytes != 1024 {
		t.Fatalf("expected file values, got level=%q max=%d", cfg.LogLevel, cfg.MaxUploadBytes)
	}
	if cfg.B2KeyID != "key-from-file" || cfg.B2Bucket != "policies" {
		t.Fatalf("unexpected b2 settings %+v", cfg)
	}
	if !cfg.AsyncEnabled || cfg.ResilienceBreakerEnabled {
		t.Fatalf("expected file booleans to apply, got async=%v breaker=%v", cfg.AsyncEnabled, cfg.ResilienceBreakerEnabled)
	}
}

func TestLoadFailsOnBrokenConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
