package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: openai
  max_tokens: 2048
  temperature: 0.3
  openai:
    model: gpt-4o-mini
embedding:
  provider: openai
  model: text-embedding-3-small
  dimensions: 1536
index:
  backend: sqlite
  path: /var/lib/chefai/index.db
chunking:
  size: 500
  overlap: 50
  recipe_size: 1000
  recipe_overlap: 100
retrieval:
  top_k: 2
retry:
  max_attempts: 5
  base_delay: 250ms
recipes:
  db_path: /var/lib/chefai/recipes.db
  dedupe: content
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MODEL_TEMPERATURE", "OPENAI_MODEL",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS",
		"INDEX_BACKEND", "INDEX_PATH",
		"CHUNK_SIZE", "CHUNK_OVERLAP", "RECIPE_CHUNK_SIZE", "RECIPE_CHUNK_OVERLAP",
		"RETRIEVAL_TOP_K", "RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY",
		"RECIPES_DB", "RECIPES_DEDUPE",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"MODEL_PROVIDER":       "openai",
		"MODEL_MAX_TOKENS":     "2048",
		"MODEL_TEMPERATURE":    "0.3",
		"OPENAI_MODEL":         "gpt-4o-mini",
		"EMBEDDING_PROVIDER":   "openai",
		"EMBEDDING_MODEL":      "text-embedding-3-small",
		"EMBEDDING_DIMENSIONS": "1536",
		"INDEX_BACKEND":        "sqlite",
		"INDEX_PATH":           "/var/lib/chefai/index.db",
		"CHUNK_SIZE":           "500",
		"CHUNK_OVERLAP":        "50",
		"RECIPE_CHUNK_SIZE":    "1000",
		"RECIPE_CHUNK_OVERLAP": "100",
		"RETRIEVAL_TOP_K":      "2",
		"RETRY_MAX_ATTEMPTS":   "5",
		"RETRY_BASE_DELAY":     "250ms",
		"RECIPES_DB":           "/var/lib/chefai/recipes.db",
		"RECIPES_DEDUPE":       "content",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: ollama
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading — it should NOT be overwritten.
	t.Setenv("MODEL_PROVIDER", "azure")

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("MODEL_PROVIDER"); got != "azure" {
		t.Errorf("MODEL_PROVIDER: expected env override %q, got %q", "azure", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestFloat32Str(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float32
		want string
	}{
		{0.0, ""},
		{0.2, "0.2"},
		{0.3, "0.3"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		if got := float32Str(tt.in); got != tt.want {
			t.Errorf("float32Str(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
