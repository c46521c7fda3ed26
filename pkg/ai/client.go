// Package ai defines the language model client contract shared by all
// providers, plus the prompt construction used for retrieval-augmented
// generation.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client interface - interface for AI providers
type Client interface {
	// Chat generates a completion for the conversation. The returned string
	// is the assistant's full response text, which may be a tool-call JSON
	// envelope when the provider decides to call tools.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Generate asks the client for a completion of a single user prompt.
func Generate(ctx context.Context, client Client, prompt string) (string, error) {
	return client.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}})
}

// Config holds LLM model configuration parameters
type Config struct {
	Temperature *float32 `json:"temperature,omitempty"` // 0.0 - 2.0, controls randomness
	TopP        *float32 `json:"top_p,omitempty"`       // 0.0 - 1.0, nucleus sampling
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // Maximum tokens to generate
	Stop        []string `json:"stop,omitempty"`        // Stop sequences
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Temperature: Float32Ptr(0.7),
	}
}

// Helper functions for pointer creation
func Float32Ptr(f float32) *float32 { return &f }
func IntPtr(i int) *int             { return &i }
func BoolPtr(b bool) *bool          { return &b }

// RAGPrompt assembles the retrieval-augmented generation prompt: the
// retrieved documents as numbered context blocks followed by the question.
// With no documents the question is asked directly.
func RAGPrompt(query string, docs []retrieval.Document) string {
	if len(docs) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString("Use the following context to answer the question. ")
	b.WriteString("If the context does not contain the answer, say so.\n\nContext:\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, doc.Content)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\nAnswer:", query)
	return b.String()
}
