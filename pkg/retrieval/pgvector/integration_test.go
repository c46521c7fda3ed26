//go:build integration

package pgvector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "vectordb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, "", err
	}
	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", err
	}

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/vectordb?sslmode=disable",
		host, port.Port())
	return container, connStr, nil
}

func TestPgvectorStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, connStr, err := setupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to setup postgres container: %v", err)
	}
	defer container.Terminate(ctx)

	const dims = 3
	store, err := New(ctx, Config{
		ConnectionString: connStr,
		Table:            "test_documents",
		Dimensions:       dims,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	docs := []retrieval.Document{
		{ID: uuid.NewString(), Content: "x axis", Metadata: map[string]any{"source": "a.txt"}},
		{ID: uuid.NewString(), Content: "y axis", Metadata: map[string]any{"source": "b.txt"}},
	}
	vectors := []retrieval.EmbeddingVector{{1, 0, 0}, {0, 1, 0}}

	if err := store.Add(ctx, docs, vectors); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v, want 2", n, err)
	}

	res, err := store.Search(ctx, retrieval.SearchQuery{
		Vector: retrieval.EmbeddingVector{1, 0, 0},
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(res.Documents) != 2 || res.Documents[0].Content != "x axis" {
		t.Errorf("unexpected results: %v", res.Documents)
	}
	if res.Documents[0].Score < 0.99 {
		t.Errorf("exact match score = %v, want near 1", res.Documents[0].Score)
	}

	filtered, err := store.Search(ctx, retrieval.SearchQuery{
		Vector: retrieval.EmbeddingVector{1, 0, 0},
		Limit:  2,
		Filter: map[string]any{"source": "b.txt"},
	})
	if err != nil {
		t.Fatalf("Filtered search failed: %v", err)
	}
	if len(filtered.Documents) != 1 || filtered.Documents[0].Content != "y axis" {
		t.Errorf("filter not applied: %v", filtered.Documents)
	}

	thresholded, err := store.Search(ctx, retrieval.SearchQuery{
		Vector:    retrieval.EmbeddingVector{1, 0, 0},
		Limit:     2,
		Threshold: 0.9,
	})
	if err != nil {
		t.Fatalf("Threshold search failed: %v", err)
	}
	if len(thresholded.Documents) != 1 {
		t.Errorf("threshold not applied: %v", thresholded.Documents)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	n, _ = store.Count(ctx)
	if n != 0 {
		t.Errorf("Count after Clear = %d", n)
	}
}
