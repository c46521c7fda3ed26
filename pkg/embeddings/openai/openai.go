// Package openai provides an embeddings provider backed by OpenAI's
// embeddings API.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/ragify-ai/ragify/pkg/embeddings"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

const defaultModel = "text-embedding-3-small"

// Config holds OpenAI embeddings configuration.
//
// All fields are optional with sensible defaults.
type Config struct {
	// Optional. API key for OpenAI authentication.
	// Defaults to the OPENAI_API_KEY environment variable.
	APIKey string

	// Optional. Base URL for OpenAI-compatible endpoints.
	BaseURL string

	// Optional. Embedding model name. Defaults to text-embedding-3-small.
	Model string

	// Optional. Output dimensionality. Defaults to 1536. Models of the
	// text-embedding-3 family accept reduced dimensions.
	Dimensions int
}

// Option interface for functional options pattern
type Option interface {
	Apply(*Config)
}

type configOption struct{ config *Config }

func (o configOption) Apply(cfg *Config) { *cfg = *o.config }

// WithConfig sets custom OpenAI embeddings configuration.
func WithConfig(config *Config) Option {
	return configOption{config: config}
}

// Client implements the embeddings.Embedder interface for OpenAI.
//
// Example:
//
//	embedder, _ := openai.New()
//	vec, _ := embedder.EmbedQuery(ctx, "what is a vector store?")
type Client struct {
	client *openai.Client
	config *Config
}

var _ embeddings.Embedder = (*Client)(nil)

// New creates an OpenAI embeddings client.
func New(opts ...Option) (*Client, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required, set OPENAI_API_KEY or Config.APIKey")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 1536
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	return &Client{client: &client, config: cfg}, nil
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
// order. Blank texts become zero vectors without an API call.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([]retrieval.EmbeddingVector, error) {
	return embeddings.EmbedBatch(ctx, texts, c.config.Dimensions, c.embed)
}

// Dimensions returns the configured output vector size.
func (c *Client) Dimensions() int { return c.config.Dimensions }

func (c *Client) embed(ctx context.Context, texts []string) ([]retrieval.EmbeddingVector, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.config.Model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}
	if c.config.Model != defaultModel || c.config.Dimensions != 1536 {
		params.Dimensions = openai.Int(int64(c.config.Dimensions))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs",
			len(resp.Data), len(texts))
	}

	out := make([]retrieval.EmbeddingVector, len(resp.Data))
	for _, item := range resp.Data {
		vec := make(retrieval.EmbeddingVector, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		out[item.Index] = vec
	}
	return out, nil
}
