// Package memory provides an in-memory vector store backed by brute-force
// cosine similarity search. It is the default backend for tests and small
// corpora.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

type entry struct {
	doc    retrieval.Document
	vector retrieval.EmbeddingVector
}

// Store is a thread-safe in-memory vector store.
type Store struct {
	mu      sync.RWMutex
	entries []entry
	dims    int
}

// New creates an empty in-memory store. The vector dimensionality is fixed
// by the first Add and enforced afterwards.
func New() *Store {
	return &Store{}
}

// Add stores documents paired with their vectors.
func (s *Store) Add(_ context.Context, docs []retrieval.Document, vectors []retrieval.EmbeddingVector) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%w: %d documents, %d vectors",
			retrieval.ErrCountMismatch, len(docs), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range docs {
		if s.dims == 0 {
			s.dims = len(vectors[i])
		} else if len(vectors[i]) != s.dims {
			return fmt.Errorf("%w: got %d, store holds %d",
				retrieval.ErrDimensionMismatch, len(vectors[i]), s.dims)
		}
		s.entries = append(s.entries, entry{doc: docs[i], vector: vectors[i]})
	}
	return nil
}

// Search ranks all stored documents by cosine similarity to the query
// vector, most similar first, then applies limit and threshold.
func (s *Store) Search(_ context.Context, query retrieval.SearchQuery) (*retrieval.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dims != 0 && len(query.Vector) != s.dims {
		return nil, fmt.Errorf("%w: query has %d, store holds %d",
			retrieval.ErrDimensionMismatch, len(query.Vector), s.dims)
	}

	scored := make([]retrieval.Document, 0, len(s.entries))
	for _, e := range s.entries {
		if !retrieval.MatchesFilter(e.doc, query.Filter) {
			continue
		}
		doc := e.doc
		doc.Score = retrieval.CosineSimilarity(query.Vector, e.vector)
		scored = append(scored, doc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	limit := query.Limit
	if limit <= 0 || limit > len(scored) {
		limit = len(scored)
	}
	scored = scored[:limit]

	kept := scored
	if query.Threshold > 0 {
		kept = scored[:0]
		for _, doc := range scored {
			if doc.Score >= query.Threshold {
				kept = append(kept, doc)
			}
		}
	}

	return &retrieval.SearchResult{
		Documents: kept,
		Query:     query.Text,
		Total:     len(kept),
		Threshold: query.Threshold,
	}, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Clear removes all documents and resets the dimensionality.
func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.dims = 0
	return nil
}

// Type identifies this backend.
func (s *Store) Type() string { return "memory" }

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
