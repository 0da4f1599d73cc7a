package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	m := &Manager{configDir: t.TempDir()}

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load should not error when file doesn't exist: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("expected default timeout, got %d", cfg.TimeoutSeconds)
	}
	if cfg.PageSize != DefaultPageSize || cfg.SearchLimit != DefaultSearchLimit {
		t.Errorf("expected default page size/search limit, got %d/%d", cfg.PageSize, cfg.SearchLimit)
	}
}

func TestSaveAndLoad(t *testing.T) {
	m := &Manager{configDir: t.TempDir()}

	if m.Exists() {
		t.Error("Exists should be false before Save")
	}
	if err := m.Save(&Config{BaseURL: "https://api.example.com", PageSize: 10}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !m.Exists() {
		t.Error("Exists should be true after Save")
	}

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Errorf("expected saved base URL, got %q", cfg.BaseURL)
	}
	if cfg.PageSize != 10 {
		t.Errorf("expected saved page size, got %d", cfg.PageSize)
	}
	// Unset fields still get defaults.
	if cfg.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("expected default timeout, got %d", cfg.TimeoutSeconds)
	}
}

func TestEnvOverrides(t *testing.T) {
	m := &Manager{configDir: t.TempDir()}

	t.Setenv("SABIA_API_URL", "https://override.example.com")
	t.Setenv("SABIA_TIMEOUT", "5")

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://override.example.com" {
		t.Errorf("env should override base URL, got %q", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds != 5 {
		t.Errorf("env should override timeout, got %d", cfg.TimeoutSeconds)
	}

	t.Setenv("SABIA_TIMEOUT", "not-a-number")
	cfg, err = m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("invalid env timeout should fall back to default, got %d", cfg.TimeoutSeconds)
	}
}
