package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	docs := []retrieval.Document{
		{ID: "x", Content: "x axis", Metadata: map[string]any{"source": "a.txt"}},
		{ID: "y", Content: "y axis", Metadata: map[string]any{"source": "b.txt"}},
		{ID: "xy", Content: "diagonal", Metadata: map[string]any{"source": "a.txt"}},
	}
	vectors := []retrieval.EmbeddingVector{
		{1, 0},
		{0, 1},
		{1, 1},
	}
	if err := s.Add(context.Background(), docs, vectors); err != nil {
		t.Fatal(err)
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	s := New()
	seed(t, s)

	res, err := s.Search(context.Background(), retrieval.SearchQuery{
		Vector: retrieval.EmbeddingVector{1, 0},
		Limit:  3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Documents) != 3 {
		t.Fatalf("got %d docs, want 3", len(res.Documents))
	}
	if res.Documents[0].ID != "x" {
		t.Errorf("top result = %s, want x", res.Documents[0].ID)
	}
	if res.Documents[0].Score <= res.Documents[1].Score ||
		res.Documents[1].Score < res.Documents[2].Score {
		t.Errorf("scores not descending: %v, %v, %v",
			res.Documents[0].Score, res.Documents[1].Score, res.Documents[2].Score)
	}
}

func TestSearchThresholdShrinksResults(t *testing.T) {
	s := New()
	seed(t, s)

	res, err := s.Search(context.Background(), retrieval.SearchQuery{
		Vector:    retrieval.EmbeddingVector{1, 0},
		Limit:     3,
		Threshold: 0.9,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Documents) != 1 || res.Documents[0].ID != "x" {
		t.Errorf("got %v, want only x", res.Documents)
	}
}

func TestSearchLimitBeforeThreshold(t *testing.T) {
	s := New()
	seed(t, s)

	// Limit 1 keeps only the single best match even with a permissive
	// threshold: the threshold can never grow the pool past the limit.
	res, err := s.Search(context.Background(), retrieval.SearchQuery{
		Vector:    retrieval.EmbeddingVector{1, 0},
		Limit:     1,
		Threshold: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Documents) != 1 {
		t.Errorf("got %d docs, want 1", len(res.Documents))
	}
}

func TestSearchMetadataFilter(t *testing.T) {
	s := New()
	seed(t, s)

	res, err := s.Search(context.Background(), retrieval.SearchQuery{
		Vector: retrieval.EmbeddingVector{1, 0},
		Limit:  3,
		Filter: map[string]any{"source": "a.txt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Documents) != 2 {
		t.Fatalf("got %d docs, want 2", len(res.Documents))
	}
	for _, doc := range res.Documents {
		if doc.Metadata["source"] != "a.txt" {
			t.Errorf("filter leaked doc %s", doc.ID)
		}
	}
}

func TestAddValidation(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Add(ctx, []retrieval.Document{{ID: "a"}}, nil)
	if !errors.Is(err, retrieval.ErrCountMismatch) {
		t.Errorf("got %v, want ErrCountMismatch", err)
	}

	seed(t, s)
	err = s.Add(ctx,
		[]retrieval.Document{{ID: "bad"}},
		[]retrieval.EmbeddingVector{{1, 2, 3}})
	if !errors.Is(err, retrieval.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestCountAndClear(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v", n, err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	n, _ = s.Count(ctx)
	if n != 0 {
		t.Errorf("Count after Clear = %d", n)
	}

	// Dimensionality resets with Clear, so different-sized vectors are
	// accepted again.
	err = s.Add(ctx, []retrieval.Document{{ID: "new"}},
		[]retrieval.EmbeddingVector{{1, 2, 3, 4}})
	if err != nil {
		t.Errorf("Add after Clear: %v", err)
	}
}

func TestTypeAndClose(t *testing.T) {
	s := New()
	if s.Type() != "memory" {
		t.Errorf("Type = %q", s.Type())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
