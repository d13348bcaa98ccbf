package config

import (
	"strings"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != "0.0.0.0:8080" {
		t.Fatalf("unexpected http address: %s", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != "banquet.db" {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath)
	}
	if cfg.UploadsDir != "uploads" {
		t.Fatalf("unexpected uploads dir: %s", cfg.UploadsDir)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.FortuneModel == "" {
		t.Fatalf("expected a default fortune model")
	}
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("BANQUET_HTTP_ADDRESS", "127.0.0.1:9999")
	t.Setenv("BANQUET_FORTUNE_API_KEY", "secret-key")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != "127.0.0.1:9999" {
		t.Fatalf("env override not applied: %s", cfg.HTTPAddress)
	}
	if cfg.FortuneAPIKey != "secret-key" {
		t.Fatalf("env override not applied for api key")
	}
}

func TestLoadRejectsBlankDatabasePath(t *testing.T) {
	configViper := NewViper()
	configViper.Set("database.path", "   ")

	if _, err := Load(configViper); err == nil || !strings.Contains(err.Error(), "database.path") {
		t.Fatalf("expected database.path validation error, got %v", err)
	}
}

func TestLoadRequiresSigningSecretWithPasscode(t *testing.T) {
	configViper := NewViper()
	configViper.Set("admin.passcode", "open-sesame")

	if _, err := Load(configViper); err == nil || !strings.Contains(err.Error(), "admin.signing_secret") {
		t.Fatalf("expected signing secret validation error, got %v", err)
	}

	configViper.Set("admin.signing_secret", "secret")
	if _, err := Load(configViper); err != nil {
		t.Fatalf("unexpected error once secret set: %v", err)
	}
}
