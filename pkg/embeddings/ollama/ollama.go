// Package ollama provides an embeddings provider backed by a local Ollama
// server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/ragify-ai/ragify/pkg/embeddings"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

const defaultModel = "nomic-embed-text"

// Config holds Ollama embeddings configuration.
type Config struct {
	// Optional. Ollama server host (defaults to localhost:11434 or the
	// OLLAMA_HOST env var).
	Host string

	// Optional. Embedding model name. Defaults to nomic-embed-text.
	Model string

	// Optional. Vector size the model produces. Defaults to 768, which
	// matches nomic-embed-text.
	Dimensions int
}

// Option interface for functional options pattern
type Option interface {
	Apply(*Config)
}

type configOption struct{ config *Config }

func (o configOption) Apply(cfg *Config) { *cfg = *o.config }

// WithConfig sets custom Ollama embeddings configuration.
func WithConfig(config *Config) Option {
	return configOption{config: config}
}

// Client implements the embeddings.Embedder interface for Ollama.
//
// Example:
//
//	embedder, _ := ollama.New()
//	vecs, _ := embedder.EmbedDocuments(ctx, chunks)
type Client struct {
	client *api.Client
	config *Config
}

var _ embeddings.Embedder = (*Client)(nil)

// New creates an Ollama embeddings client.
func New(opts ...Option) (*Client, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 768
	}

	var client *api.Client
	if cfg.Host != "" {
		base, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
		}
		client = api.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
	}

	return &Client{client: client, config: cfg}, nil
}

// EmbedQuery embeds a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) (retrieval.EmbeddingVector, error) {
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of texts, one vector per input in input
// order. Blank texts become zero vectors without a server call.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([]retrieval.EmbeddingVector, error) {
	return embeddings.EmbedBatch(ctx, texts, c.config.Dimensions, c.embed)
}

// Dimensions returns the configured vector size.
func (c *Client) Dimensions() int { return c.config.Dimensions }

func (c *Client) embed(ctx context.Context, texts []string) ([]retrieval.EmbeddingVector, error) {
	resp, err := c.client.Embed(ctx, &api.EmbedRequest{
		Model: c.config.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed request: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs",
			len(resp.Embeddings), len(texts))
	}

	out := make([]retrieval.EmbeddingVector, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = retrieval.EmbeddingVector(emb)
	}
	return out, nil
}
