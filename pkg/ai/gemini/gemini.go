// Package gemini provides a language model client for Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/ragify-ai/ragify/pkg/ai"
)

// Config holds Gemini-specific configuration.
//
// All fields are optional with sensible defaults.
type Config struct {
	// Optional. API key for Gemini authentication.
	// Defaults to the GOOGLE_API_KEY environment variable.
	APIKey string

	// Optional. Controls randomness in token selection (0.0-2.0).
	Temperature *float32

	// Optional. Nucleus sampling parameter (0.0-1.0).
	TopP *float32

	// Optional. Maximum number of tokens in the response.
	MaxTokens *int

	// Optional. System instruction prepended to every conversation.
	SystemInstruction string
}

// Option interface for functional options pattern
type Option interface {
	Apply(*Config)
}

type configOption struct{ config *Config }

func (o configOption) Apply(cfg *Config) { *cfg = *o.config }

// WithConfig sets custom Gemini configuration.
func WithConfig(config *Config) Option {
	return configOption{config: config}
}

// Client implements the ai.Client interface for Gemini.
//
// Example:
//
//	client, _ := gemini.New("gemini-2.0-flash")
//	answer, _ := client.Chat(ctx, messages)
type Client struct {
	client *genai.Client
	model  string
	config *Config
}

var _ ai.Client = (*Client)(nil)

// New creates a Gemini chat client for the given model.
func New(model string, opts ...Option) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	cfg := &Config{}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required, set GOOGLE_API_KEY or Config.APIKey")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{client: client, model: model, config: cfg}, nil
}

// Chat generates a completion for the conversation. System messages are
// folded into the request's system instruction; user and assistant turns
// map to Gemini's user/model roles.
func (c *Client) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	genCfg := c.buildGenerateConfig()

	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			genCfg.SystemInstruction = genai.Text(msg.Content)[0]
		case ai.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("conversation has no user content")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return resp.Text(), nil
}

func (c *Client) buildGenerateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if c.config.Temperature != nil {
		cfg.Temperature = genai.Ptr(*c.config.Temperature)
	}
	if c.config.TopP != nil {
		cfg.TopP = genai.Ptr(*c.config.TopP)
	}
	if c.config.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*c.config.MaxTokens)
	}
	if c.config.SystemInstruction != "" {
		cfg.SystemInstruction = genai.Text(c.config.SystemInstruction)[0]
	}
	return cfg
}
