// Package config loads the application configuration from YAML with .env
// support and $ENV_VAR expansion, validates it, and supplies documented
// defaults for everything left unset.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// EmbeddingsConfig selects and configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is one of "openai", "ollama" or "mock".
	Provider string `yaml:"provider"`

	Model      string `yaml:"model,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Host       string `yaml:"host,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"`
}

// LLMConfig selects and configures the chat model provider.
type LLMConfig struct {
	// Provider is one of "openai", "ollama", "gemini" or "mock".
	Provider string `yaml:"provider"`

	Model        string   `yaml:"model,omitempty"`
	APIKey       string   `yaml:"api_key,omitempty"`
	BaseURL      string   `yaml:"base_url,omitempty"`
	Host         string   `yaml:"host,omitempty"`
	Temperature  *float32 `yaml:"temperature,omitempty"`
	MaxTokens    *int     `yaml:"max_tokens,omitempty"`
	SystemPrompt string   `yaml:"system_prompt,omitempty"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	// Type is one of "memory", "badger", "qdrant" or "pgvector".
	Type string `yaml:"type"`

	// Path is the on-disk location for the badger backend.
	Path     string `yaml:"path,omitempty"`
	InMemory bool   `yaml:"in_memory,omitempty"`

	// URL and Collection configure the qdrant backend.
	URL        string `yaml:"url,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`

	// DSN configures the pgvector backend.
	DSN string `yaml:"dsn,omitempty"`

	Dimensions int `yaml:"dimensions,omitempty"`
}

// RetrievalConfig tunes the query-time search.
type RetrievalConfig struct {
	TopK               int     `yaml:"top_k,omitempty"`
	ScoreThreshold     float64 `yaml:"score_threshold,omitempty"`
	Diverse            bool    `yaml:"diverse,omitempty"`
	DiversityThreshold float64 `yaml:"diversity_threshold,omitempty"`
}

// SplitterConfig tunes document chunking.
type SplitterConfig struct {
	ChunkSize      int `yaml:"chunk_size,omitempty"`
	ChunkOverlap   int `yaml:"chunk_overlap,omitempty"`
	MinChunkLength int `yaml:"min_chunk_length,omitempty"`
}

// AgentConfig tunes the tool-calling agent.
type AgentConfig struct {
	MaxIterations int    `yaml:"max_iterations,omitempty"`
	SystemPrompt  string `yaml:"system_prompt,omitempty"`
}

// LoggingConfig tunes diagnostic output.
type LoggingConfig struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	Level string `yaml:"level,omitempty"`

	// Pretty switches to human-readable console output.
	Pretty bool `yaml:"pretty,omitempty"`
}

// Config is the root application configuration.
type Config struct {
	Embeddings  EmbeddingsConfig  `yaml:"embeddings"`
	LLM         LLMConfig         `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval,omitempty"`
	Splitter    SplitterConfig    `yaml:"splitter,omitempty"`
	Agent       AgentConfig       `yaml:"agent,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`

	// DataDir is the default document location when no sources are given.
	DataDir string `yaml:"data_dir,omitempty"`
}

// Default returns the configuration used when no file exists: mock
// providers and an in-memory store, runnable without any external service.
func Default() *Config {
	cfg := &Config{
		Embeddings:  EmbeddingsConfig{Provider: "mock"},
		LLM:         LLMConfig{Provider: "mock"},
		VectorStore: VectorStoreConfig{Type: "memory"},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from path. A .env file next to the working
// directory is loaded first (missing is fine), then $VAR and ${VAR}
// references in the YAML are expanded from the environment before decoding.
// A missing config file returns defaults rather than an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.Expand(string(data), func(name string) string {
		return os.Getenv(name)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "mock"
	}
	if cfg.Embeddings.Dimensions == 0 {
		switch cfg.Embeddings.Provider {
		case "ollama":
			cfg.Embeddings.Dimensions = 768
		default:
			cfg.Embeddings.Dimensions = 1536
		}
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "mock"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Dimensions == 0 {
		cfg.VectorStore.Dimensions = cfg.Embeddings.Dimensions
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "documents"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.DiversityThreshold == 0 {
		cfg.Retrieval.DiversityThreshold = 0.8
	}
	if cfg.Splitter.ChunkSize == 0 {
		cfg.Splitter.ChunkSize = 1000
	}
	if cfg.Splitter.ChunkOverlap == 0 {
		cfg.Splitter.ChunkOverlap = 200
	}
	if cfg.Splitter.MinChunkLength == 0 {
		cfg.Splitter.MinChunkLength = 20
	}
	if cfg.Agent.MaxIterations == 0 {
		cfg.Agent.MaxIterations = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
}

var (
	embeddingProviders = map[string]bool{"openai": true, "ollama": true, "mock": true}
	llmProviders       = map[string]bool{"openai": true, "ollama": true, "gemini": true, "mock": true}
	storeTypes         = map[string]bool{"memory": true, "badger": true, "qdrant": true, "pgvector": true}
)

// Validate checks enum fields and cross-field constraints.
func (c *Config) Validate() error {
	if !embeddingProviders[c.Embeddings.Provider] {
		return fmt.Errorf("unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if !llmProviders[c.LLM.Provider] {
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if !storeTypes[c.VectorStore.Type] {
		return fmt.Errorf("unknown vector store type %q", c.VectorStore.Type)
	}
	if c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Splitter.ChunkOverlap, c.Splitter.ChunkSize)
	}
	if c.Splitter.MinChunkLength < 0 || c.Retrieval.TopK < 0 {
		return fmt.Errorf("negative values are not allowed")
	}
	if c.VectorStore.Type == "qdrant" && c.VectorStore.URL == "" {
		return fmt.Errorf("vector store type qdrant requires url")
	}
	if c.VectorStore.Type == "pgvector" && c.VectorStore.DSN == "" {
		return fmt.Errorf("vector store type pgvector requires dsn")
	}
	return nil
}
