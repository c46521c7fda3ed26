// Package ollama provides a language model client for a local Ollama
// server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/ragify-ai/ragify/pkg/ai"
)

// Config holds Ollama-specific configuration.
//
// All fields are optional with sensible defaults.
//
// Example:
//
//	config := &ollama.Config{
//		Host:        "http://192.168.1.100:11434",
//		Temperature: ai.Float32Ptr(0.8),
//	}
type Config struct {
	// Optional. Ollama server host (defaults to localhost:11434 or the
	// OLLAMA_HOST env var).
	Host string

	// Optional. Controls randomness in token selection (0.0-2.0).
	Temperature *float32

	// Optional. Nucleus sampling parameter (0.0-1.0).
	TopP *float32

	// Optional. Maximum number of tokens in the response.
	MaxTokens *int

	// Optional. Strings that stop text generation when encountered.
	Stop []string

	// Optional. Controls how long the model stays loaded ("5m", "1h",
	// "-1" to keep indefinitely).
	KeepAlive string
}

// Option interface for functional options pattern
type Option interface {
	Apply(*Config)
}

type configOption struct{ config *Config }

func (o configOption) Apply(cfg *Config) { *cfg = *o.config }

// WithConfig sets custom Ollama configuration.
func WithConfig(config *Config) Option {
	return configOption{config: config}
}

// Client implements the ai.Client interface for Ollama.
//
// Example:
//
//	client, _ := ollama.New("llama3.2")
//	answer, _ := client.Chat(ctx, messages)
type Client struct {
	client *api.Client
	model  string
	config *Config
}

var _ ai.Client = (*Client)(nil)

// New creates an Ollama chat client for the given model.
func New(model string, opts ...Option) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	cfg := &Config{}
	for _, opt := range opts {
		opt.Apply(cfg)
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

	return &Client{client: client, model: model, config: cfg}, nil
}

// Chat generates a completion for the conversation. The response is
// accumulated from Ollama's stream into a single string.
func (c *Client) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: convertMessages(messages),
		Options:  c.buildOptions(),
	}
	if c.config.KeepAlive != "" {
		d, err := time.ParseDuration(c.config.KeepAlive)
		if err != nil {
			return "", fmt.Errorf("invalid keep_alive %q: %w", c.config.KeepAlive, err)
		}
		req.KeepAlive = &api.Duration{Duration: d}
	}

	var b strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return b.String(), nil
}

func (c *Client) buildOptions() map[string]any {
	opts := make(map[string]any)
	if c.config.Temperature != nil {
		opts["temperature"] = *c.config.Temperature
	}
	if c.config.TopP != nil {
		opts["top_p"] = *c.config.TopP
	}
	if c.config.MaxTokens != nil {
		opts["num_predict"] = *c.config.MaxTokens
	}
	if len(c.config.Stop) > 0 {
		opts["stop"] = c.config.Stop
	}
	return opts
}

func convertMessages(messages []ai.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}
