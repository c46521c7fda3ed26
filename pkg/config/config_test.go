package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embeddings.Provider != "mock" || cfg.VectorStore.Type != "memory" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Splitter.ChunkSize != 1000 || cfg.Splitter.ChunkOverlap != 200 {
		t.Errorf("splitter defaults = %+v", cfg.Splitter)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("top_k = %d", cfg.Retrieval.TopK)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-secret")

	path := writeConfig(t, `
embeddings:
  provider: openai
  api_key: ${TEST_OPENAI_KEY}
llm:
  provider: openai
  api_key: $TEST_OPENAI_KEY
vector_store:
  type: memory
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embeddings.APIKey != "sk-secret" {
		t.Errorf("embeddings api_key = %q", cfg.Embeddings.APIKey)
	}
	if cfg.LLM.APIKey != "sk-secret" {
		t.Errorf("llm api_key = %q", cfg.LLM.APIKey)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
embeddings:
  provider: ollama
llm:
  provider: ollama
vector_store:
  type: badger
  path: /tmp/vectors
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embeddings.Dimensions != 768 {
		t.Errorf("ollama dimensions = %d, want 768", cfg.Embeddings.Dimensions)
	}
	if cfg.VectorStore.Dimensions != 768 {
		t.Errorf("store dimensions = %d, want embeddings default", cfg.VectorStore.Dimensions)
	}
	if cfg.Agent.MaxIterations != 5 {
		t.Errorf("max_iterations = %d", cfg.Agent.MaxIterations)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"unknown embeddings provider",
			func(c *Config) { c.Embeddings.Provider = "cohere" },
			"embeddings provider",
		},
		{
			"unknown llm provider",
			func(c *Config) { c.LLM.Provider = "claude" },
			"llm provider",
		},
		{
			"unknown store type",
			func(c *Config) { c.VectorStore.Type = "weaviate" },
			"vector store type",
		},
		{
			"overlap too large",
			func(c *Config) { c.Splitter.ChunkOverlap = c.Splitter.ChunkSize },
			"chunk_overlap",
		},
		{
			"qdrant without url",
			func(c *Config) { c.VectorStore.Type = "qdrant" },
			"requires url",
		},
		{
			"pgvector without dsn",
			func(c *Config) { c.VectorStore.Type = "pgvector" },
			"requires dsn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
vector_store:
  type: qdrant
`)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "embeddings: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
