package rag

import (
	"context"
	"fmt"

	"github.com/ragify-ai/ragify/pkg/ai"
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// GeneratorConfig configures the answer generation stage.
type GeneratorConfig struct {
	// SystemPrompt is prepended as a system message when set.
	SystemPrompt string
}

// Generator produces an answer from the query and the retrieved documents.
//
// Reads KeyQuery and KeyRetrievedDocuments, writes KeyResponse and
// KeyResponseGenerated. With no retrieved documents the query is answered
// without context rather than failing.
type Generator struct {
	ragify.Base
	client ai.Client
	cfg    GeneratorConfig
}

// NewGenerator creates a generator component around a model client.
func NewGenerator(client ai.Client, cfg GeneratorConfig) *Generator {
	g := &Generator{client: client, cfg: cfg}
	g.Base = ragify.NewBase("generator")
	return g
}

// Run asks the model for an answer grounded in the retrieved documents.
func (g *Generator) Run(ctx context.Context, rec ragify.Record) (ragify.Record, error) {
	query := rec.String(KeyQuery)
	if query == "" {
		return nil, fmt.Errorf("query is required for generation")
	}
	docs, _ := rec[KeyRetrievedDocuments].([]retrieval.Document)

	messages := make([]ai.Message, 0, 2)
	if g.cfg.SystemPrompt != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: g.cfg.SystemPrompt})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: ai.RAGPrompt(query, docs)})

	response, err := g.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	rec[KeyResponse] = response
	rec[KeyResponseGenerated] = true
	return rec, nil
}
