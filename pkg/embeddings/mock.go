package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// MockEmbedder provides deterministic embeddings for testing.
//
// Vectors are derived from an FNV hash of the text, so the same text always
// embeds to the same unit vector and different texts usually differ.
type MockEmbedder struct {
	Dims int

	// Err, when set, is returned by every embedding call.
	Err error

	// Calls counts EmbedQuery and EmbedDocuments invocations.
	Calls int
}

// NewMockEmbedder creates a mock embedder with the given dimensionality.
func NewMockEmbedder(dims int) *MockEmbedder {
	return &MockEmbedder{Dims: dims}
}

// EmbedQuery embeds a single text deterministically.
func (m *MockEmbedder) EmbedQuery(_ context.Context, text string) (retrieval.EmbeddingVector, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.vectorFor(text), nil
}

// EmbedDocuments embeds each text deterministically, blanks as zero vectors.
func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([]retrieval.EmbeddingVector, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return EmbedBatch(ctx, texts, m.Dims, func(_ context.Context, kept []string) ([]retrieval.EmbeddingVector, error) {
		out := make([]retrieval.EmbeddingVector, len(kept))
		for i, text := range kept {
			out[i] = m.vectorFor(text)
		}
		return out, nil
	})
}

// Dimensions returns the configured vector size.
func (m *MockEmbedder) Dimensions() int { return m.Dims }

func (m *MockEmbedder) vectorFor(text string) retrieval.EmbeddingVector {
	h := fnv.New64a()
	fmt.Fprint(h, text)
	seed := h.Sum64()

	vec := make(retrieval.EmbeddingVector, m.Dims)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		v := float64(int64(seed>>32)) / float64(math.MaxInt32)
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
