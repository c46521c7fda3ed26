// Package embeddings defines the embedding provider contract and the
// batch-embedding behavior shared by all providers.
package embeddings

import (
	"context"
	"strings"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) (retrieval.EmbeddingVector, error)

	// EmbedDocuments embeds a batch of texts. The result has exactly one
	// vector per input, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([]retrieval.EmbeddingVector, error)

	// Dimensions returns the vector size this embedder produces.
	Dimensions() int
}

// EmbedBatch embeds texts through embed while substituting zero vectors for
// blank entries, preserving input order and count.
//
// Blank texts (empty or whitespace-only) never reach the provider: most
// embedding APIs reject them, and a zero vector keeps positional pairing
// with the source documents intact while guaranteeing the placeholder can
// never outrank a real match under cosine scoring.
func EmbedBatch(ctx context.Context, texts []string, dims int,
	embed func(ctx context.Context, texts []string) ([]retrieval.EmbeddingVector, error),
) ([]retrieval.EmbeddingVector, error) {
	nonBlank := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) != "" {
			nonBlank = append(nonBlank, text)
			positions = append(positions, i)
		}
	}

	out := make([]retrieval.EmbeddingVector, len(texts))
	for i := range out {
		out[i] = make(retrieval.EmbeddingVector, dims)
	}
	if len(nonBlank) == 0 {
		return out, nil
	}

	vectors, err := embed(ctx, nonBlank)
	if err != nil {
		return nil, err
	}
	for i, pos := range positions {
		out[pos] = vectors[i]
	}
	return out, nil
}
