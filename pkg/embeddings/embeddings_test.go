package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

func TestEmbedBatchPreservesOrderWithBlanks(t *testing.T) {
	texts := []string{"first", "", "third", "   ", "fifth"}
	const dims = 4

	var received []string
	vectors, err := EmbedBatch(context.Background(), texts, dims,
		func(_ context.Context, kept []string) ([]retrieval.EmbeddingVector, error) {
			received = kept
			out := make([]retrieval.EmbeddingVector, len(kept))
			for i := range kept {
				out[i] = retrieval.EmbeddingVector{float32(i + 1), 0, 0, 0}
			}
			return out, nil
		})
	if err != nil {
		t.Fatal(err)
	}

	if len(received) != 3 {
		t.Fatalf("provider saw %d texts, want 3", len(received))
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}

	isZero := func(v retrieval.EmbeddingVector) bool {
		for _, x := range v {
			if x != 0 {
				return false
			}
		}
		return true
	}

	if vectors[0][0] != 1 || vectors[2][0] != 2 || vectors[4][0] != 3 {
		t.Errorf("non-blank vectors misplaced: %v", vectors)
	}
	for _, i := range []int{1, 3} {
		if !isZero(vectors[i]) || len(vectors[i]) != dims {
			t.Errorf("blank at %d did not get a %d-dim zero vector: %v", i, dims, vectors[i])
		}
	}
}

func TestEmbedBatchAllBlanks(t *testing.T) {
	vectors, err := EmbedBatch(context.Background(), []string{"", "  "}, 3,
		func(context.Context, []string) ([]retrieval.EmbeddingVector, error) {
			t.Fatal("provider must not be called for all-blank input")
			return nil, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
}

func TestEmbedBatchPropagatesError(t *testing.T) {
	wantErr := errors.New("provider down")
	_, err := EmbedBatch(context.Background(), []string{"text"}, 3,
		func(context.Context, []string) ([]retrieval.EmbeddingVector, error) {
			return nil, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want provider error", err)
	}
}

func TestMockEmbedderDeterminism(t *testing.T) {
	m := NewMockEmbedder(8)
	ctx := context.Background()

	a1, err := m.EmbedQuery(ctx, "same text")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := m.EmbedQuery(ctx, "same text")
	b, _ := m.EmbedQuery(ctx, "other text")

	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatal("same text embedded differently")
		}
	}
	if retrieval.CosineSimilarity(a1, b) > 0.999 {
		t.Error("different texts embedded identically")
	}
	if sim := retrieval.CosineSimilarity(a1, a1); sim < 0.999 {
		t.Errorf("self similarity = %v, want 1", sim)
	}
	if m.Dimensions() != 8 || len(a1) != 8 {
		t.Errorf("dimensions = %d, vector len %d", m.Dimensions(), len(a1))
	}
}

func TestMockEmbedderDocuments(t *testing.T) {
	m := NewMockEmbedder(4)
	vectors, err := m.EmbedDocuments(context.Background(), []string{"a", "", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}

	single, _ := m.EmbedQuery(context.Background(), "a")
	for i := range single {
		if vectors[0][i] != single[i] {
			t.Fatal("batch and single embedding disagree")
		}
	}
}

func TestMockEmbedderError(t *testing.T) {
	m := NewMockEmbedder(4)
	m.Err = errors.New("forced")
	if _, err := m.EmbedQuery(context.Background(), "x"); err == nil {
		t.Error("expected error")
	}
	if _, err := m.EmbedDocuments(context.Background(), []string{"x"}); err == nil {
		t.Error("expected error")
	}
}
