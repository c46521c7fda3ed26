// Package openai provides a language model client for OpenAI's Chat
// Completions API.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/ragify-ai/ragify/pkg/ai"
)

// Config holds OpenAI-specific configuration.
//
// All fields are optional with sensible defaults.
//
// Example:
//
//	config := &openai.Config{
//		APIKey:      "sk-...",
//		Temperature: ai.Float32Ptr(0.8),
//	}
type Config struct {
	// Optional. API key for OpenAI authentication.
	// Defaults to the OPENAI_API_KEY environment variable.
	APIKey string

	// Optional. Base URL for OpenAI-compatible endpoints.
	BaseURL string

	// Optional. Controls randomness in token selection (0.0-2.0).
	Temperature *float32

	// Optional. Nucleus sampling parameter (0.0-1.0).
	TopP *float32

	// Optional. Maximum number of tokens in the response.
	MaxTokens *int

	// Optional. Strings that stop text generation when encountered.
	Stop []string
}

// Option interface for functional options pattern
type Option interface {
	Apply(*Config)
}

type configOption struct{ config *Config }

func (o configOption) Apply(cfg *Config) { *cfg = *o.config }

// WithConfig sets custom OpenAI configuration.
func WithConfig(config *Config) Option {
	return configOption{config: config}
}

// Client implements the ai.Client interface for OpenAI.
//
// Example:
//
//	client, _ := openai.New("gpt-4o-mini")
//	answer, _ := client.Chat(ctx, messages)
type Client struct {
	client *openai.Client
	model  shared.ChatModel
	config *Config
}

var _ ai.Client = (*Client)(nil)

// New creates an OpenAI chat client for the given model.
func New(model string, opts ...Option) (*Client, error) {
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
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	return &Client{
		client: &client,
		model:  shared.ChatModel(model),
		config: cfg,
	}, nil
}

// Chat generates a completion for the conversation.
func (c *Client) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: convertMessages(messages),
	}
	if c.config.Temperature != nil {
		params.Temperature = openai.Float(float64(*c.config.Temperature))
	}
	if c.config.TopP != nil {
		params.TopP = openai.Float(float64(*c.config.TopP))
	}
	if c.config.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*c.config.MaxTokens))
	}
	if len(c.config.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: c.config.Stop,
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []ai.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case ai.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
