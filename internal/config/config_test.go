package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":3000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":3000")
	}
	if cfg.DatabaseURL != DefaultDatabaseURL {
		t.Fatalf("DatabaseURL = %q, want default", cfg.DatabaseURL)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true by default")
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if !cfg.LogRedact {
		t.Fatalf("LogRedact = false, want true by default")
	}
	if cfg.StoreConnectRetries != 5 {
		t.Fatalf("StoreConnectRetries = %d, want 5", cfg.StoreConnectRetries)
	}
}

func TestLoadPortAndDatabaseOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgresql://db.internal/care")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8081" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8081")
	}
	if cfg.DatabaseURL != "postgresql://db.internal/care" {
		t.Fatalf("DatabaseURL = %q, want DATABASE_URL value", cfg.DatabaseURL)
	}

	t.Setenv("REMOTE_URL", "postgresql://remote/care")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "postgresql://remote/care" {
		t.Fatalf("DatabaseURL = %q, want REMOTE_URL to take precedence", cfg.DatabaseURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                 "http",
		"APP_SHUTDOWN_TIMEOUT": "soon",
		"APP_ALLOW_ANY_ORIGIN": "maybe",
		"FEED_BUFFER":          "0",
		"LOG_FORMAT":           "xml",
		"DB_CONNECT_RETRIES":   "-1",
		"LOG_REDACT_PII":       "sometimes",
	}
	for key, value := range cases {
		setCoreEnvEmpty(t)
		t.Setenv(key, value)
		if _, err := Load(); err == nil {
			t.Fatalf("Load() with %s=%q should fail", key, value)
		}
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV",
		"PORT",
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_READ_HEADER_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"STATIC_DIR",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"REMOTE_URL",
		"DATABASE_URL",
		"FEED_BUFFER",
		"LOG_REDACT_PII",
		"DB_CONNECT_RETRIES",
		"DB_CONNECT_RETRY_BASE",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
