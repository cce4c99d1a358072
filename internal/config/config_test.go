package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pptrans/internal/types"
)

func managerAt(t *testing.T, dir string) *ConfigManager {
	t.Helper()
	m, err := NewConfigManager(filepath.Join(dir, DefaultConfigFileName))
	if err != nil {
		t.Fatalf("NewConfigManager() error = %v", err)
	}
	return m
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := managerAt(t, t.TempDir())
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := m.GetConfig()
	if cfg.OpenAIModel != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.OpenAIModel, DefaultModel)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("batch size = %d, want %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("concurrency = %d, want %d", cfg.Concurrency, DefaultConcurrency)
	}
}

func TestLoadInvalidJSONUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	m := managerAt(t, dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.GetModel() != DefaultModel {
		t.Errorf("model = %q, want default", m.GetModel())
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	m := managerAt(t, dir)

	m.SetConfig(&types.Config{
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-4o",
		BatchSize:    25,
		GlossaryPath: "/tmp/glossary.txt",
	})
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m2 := managerAt(t, dir)
	if err := m2.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m2.GetAPIKey() != "sk-test" {
		t.Errorf("api key = %q", m2.GetAPIKey())
	}
	if m2.GetModel() != "gpt-4o" {
		t.Errorf("model = %q", m2.GetModel())
	}
	if m2.GetBatchSize() != 25 {
		t.Errorf("batch size = %d", m2.GetBatchSize())
	}
	if m2.GetGlossaryPath() != "/tmp/glossary.txt" {
		t.Errorf("glossary path = %q", m2.GetGlossaryPath())
	}
	// Unset numeric fields are backfilled with defaults.
	if m2.GetConcurrency() != DefaultConcurrency {
		t.Errorf("concurrency = %d, want default", m2.GetConcurrency())
	}
}

func TestAPIKeyFallsBackToEnv(t *testing.T) {
	m := managerAt(t, t.TempDir())
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvOpenAIAPIKey, "sk-from-env")
	if got := m.GetAPIKey(); got != "sk-from-env" {
		t.Errorf("GetAPIKey() = %q, want env fallback", got)
	}

	if err := m.SetAPIKey("sk-explicit"); err != nil {
		t.Fatal(err)
	}
	if got := m.GetAPIKey(); got != "sk-explicit" {
		t.Errorf("GetAPIKey() = %q, config value must win", got)
	}
}

func TestBaseURLFallsBackToEnv(t *testing.T) {
	m := managerAt(t, t.TempDir())
	m.SetConfig(&types.Config{})
	t.Setenv(EnvOpenAIBaseURL, "https://proxy.example.com/v1")
	if got := m.GetBaseURL(); got != "https://proxy.example.com/v1" {
		t.Errorf("GetBaseURL() = %q, want env fallback", got)
	}
}

func TestUpdateConfigPersists(t *testing.T) {
	dir := t.TempDir()
	m := managerAt(t, dir)

	err := m.UpdateConfig("sk-new", "", "gpt-4o", 10, 5, 2, "", "")
	if err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}

	data, err := os.ReadFile(m.GetConfigPath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var cfg types.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("saved config is not valid JSON: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-new" || cfg.BatchSize != 10 || cfg.Concurrency != 5 || cfg.MaxRetries != 2 {
		t.Errorf("saved config = %+v", cfg)
	}
	// Untouched fields keep their defaults.
	if cfg.OpenAIBaseURL != DefaultBaseURL {
		t.Errorf("base url = %q, want default preserved", cfg.OpenAIBaseURL)
	}
}

func TestSetLastInput(t *testing.T) {
	m := managerAt(t, t.TempDir())
	m.SetLastInput("/decks/q3.pptx")
	if got := m.GetLastInput(); got != "/decks/q3.pptx" {
		t.Errorf("GetLastInput() = %q", got)
	}
}
