package retrieval

import (
	"context"
	"errors"
	"math"
)

// Common store errors.
var (
	// ErrDimensionMismatch is returned when a vector's length does not match
	// the store's configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch is returned by Add when the number of documents and
	// vectors differ.
	ErrCountMismatch = errors.New("document and vector counts differ")
)

// VectorStore is the storage contract used by indexing and query pipelines.
//
// All backends report similarity scores on a unified scale where higher
// means more similar, regardless of whether the underlying engine ranks by
// distance or by similarity. Callers never need to know which convention
// the engine uses internally.
type VectorStore interface {
	// Add stores documents with their embedding vectors. docs[i] pairs with
	// vectors[i]; the two slices must be the same length.
	Add(ctx context.Context, docs []Document, vectors []EmbeddingVector) error

	// Search returns up to query.Limit documents ranked by similarity,
	// most similar first, with Score populated. When query.Threshold is
	// positive, results below it are excluded after ranking, so the
	// threshold can only shrink the result set.
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Clear removes all stored documents.
	Clear(ctx context.Context) error

	// Type identifies the backend ("memory", "badger", "qdrant", "pgvector").
	Type() string

	// Close releases backend resources. Safe to call more than once.
	Close() error
}

// CosineSimilarity computes the cosine similarity between two vectors of
// equal length. Returns 0 for zero vectors so blank-text placeholder
// embeddings never rank above real matches.
func CosineSimilarity(a, b EmbeddingVector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MatchesFilter reports whether a document's metadata satisfies every
// equality condition in filter. A nil or empty filter matches everything.
func MatchesFilter(doc Document, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := doc.Metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
