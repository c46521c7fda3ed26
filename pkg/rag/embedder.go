package rag

import (
	"context"
	"fmt"

	"github.com/ragify-ai/ragify/pkg/embeddings"
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// Embedder generates vectors for processed documents.
//
// Reads KeyProcessedDocuments (falling back to KeyDocuments), writes
// KeyEmbeddings and KeyDocumentsWithEmbeddings in matching order. Blank
// documents get zero vectors, so the pairing always holds.
type Embedder struct {
	ragify.Base
	provider embeddings.Embedder
}

// NewEmbedder creates an embedder component around a provider.
func NewEmbedder(provider embeddings.Embedder) *Embedder {
	e := &Embedder{provider: provider}
	e.Base = ragify.NewBase("embedder")
	return e
}

// Run embeds every document's content.
func (e *Embedder) Run(ctx context.Context, rec ragify.Record) (ragify.Record, error) {
	docs, ok := rec[KeyProcessedDocuments].([]retrieval.Document)
	if !ok {
		docs, _ = rec[KeyDocuments].([]retrieval.Document)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	vectors, err := e.provider.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d documents: %w", len(docs), err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents",
			len(vectors), len(docs))
	}

	rec[KeyEmbeddings] = vectors
	rec[KeyDocumentsWithEmbeddings] = docs
	return rec, nil
}
