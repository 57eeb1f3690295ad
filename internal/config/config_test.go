package config

import (
	"testing"
)

// mockBackend is an in-memory ConfigBackend.
type mockBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newMockBackend() *mockBackend {
	return &mockBackend{strings: map[string]string{}, ints: map[string]int{}}
}

func (m *mockBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *mockBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mockBackend) SetString(key, val string) error {
	m.strings[key] = val
	return nil
}

func (m *mockBackend) SetInt(key string, val int) error {
	m.ints[key] = val
	return nil
}

func (m *mockBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

// TestDefaults verifies all default values survive an empty backend.
func TestDefaults(t *testing.T) {
	cfg, err := loadWith(newMockBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("Ollama.BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.Model != "llama3.2" {
		t.Errorf("Ollama.Model = %q, want %q", cfg.Ollama.Model, "llama3.2")
	}
	if cfg.Chat.HistoryWindow != 16 {
		t.Errorf("Chat.HistoryWindow = %d, want 16", cfg.Chat.HistoryWindow)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

// TestBackendValues verifies backend values override defaults.
func TestBackendValues(t *testing.T) {
	b := newMockBackend()
	b.ints["server.port"] = 5200
	b.ints["chat.history_window"] = 8
	b.strings["ollama.model"] = "qwen2.5:7b"
	b.strings["log.level"] = "debug"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5200 {
		t.Errorf("Server.Port = %d, want 5200", cfg.Server.Port)
	}
	if cfg.Chat.HistoryWindow != 8 {
		t.Errorf("Chat.HistoryWindow = %d, want 8", cfg.Chat.HistoryWindow)
	}
	if cfg.Ollama.Model != "qwen2.5:7b" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

// TestEnvOverride verifies that environment variables beat backend values.
func TestEnvOverride(t *testing.T) {
	b := newMockBackend()
	b.strings["ollama.model"] = "backend-model"
	b.ints["server.port"] = 5200

	t.Setenv("ARIA_OLLAMA_MODEL", "env-model")
	t.Setenv("ARIA_SERVER_PORT", "6300")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Ollama.Model != "env-model" {
		t.Errorf("Ollama.Model = %q, want env override", cfg.Ollama.Model)
	}
	if cfg.Server.Port != 6300 {
		t.Errorf("Server.Port = %d, want env override", cfg.Server.Port)
	}
}

// TestEnvOverrideInvalidInt verifies a malformed integer env var is ignored.
func TestEnvOverrideInvalidInt(t *testing.T) {
	t.Setenv("ARIA_SERVER_PORT", "not-a-port")

	cfg, err := loadWith(newMockBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want default retained", cfg.Server.Port)
	}
}

func TestShowAll(t *testing.T) {
	infos := ShowAll(defaults())
	if len(infos) != len(specs) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(specs))
	}
	for _, info := range infos {
		if info.Key == "" || info.EnvVar == "" {
			t.Errorf("incomplete key info: %+v", info)
		}
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	want := map[string]bool{
		"server.port":         true,
		"ollama.base_url":     true,
		"ollama.model":        true,
		"storage.data_dir":    true,
		"chat.history_window": true,
		"log.level":           true,
	}
	if len(keys) != len(want) {
		t.Fatalf("ValidKeys = %v", keys)
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
	}
}
