package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ragify-ai/ragify/pkg/ai"
	"github.com/ragify-ai/ragify/pkg/embeddings"
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
	"github.com/ragify-ai/ragify/pkg/retrieval/memory"
)

func TestLoaderSourcesOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "only.txt")
	if err := os.WriteFile(path, []byte("short note"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(LoaderConfig{Sources: []string{"/nonexistent"}})
	rec, err := loader.Run(context.Background(), ragify.Record{KeyFilePaths: []string{path}})
	if err != nil {
		t.Fatal(err)
	}
	docs := rec[KeyDocuments].([]retrieval.Document)
	if len(docs) != 1 || docs[0].Content != "short note" {
		t.Errorf("docs = %+v", docs)
	}
}

func TestLoaderDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{"a.txt": "alpha", "b.md": "beta"}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	loader := NewLoader(LoaderConfig{})
	rec, err := loader.Run(context.Background(), ragify.Record{
		KeyDirectoryPath: dir,
		KeyGlobPattern:   "*.txt",
	})
	if err != nil {
		t.Fatal(err)
	}
	docs := rec[KeyDocuments].([]retrieval.Document)
	if len(docs) != 1 || docs[0].Content != "alpha" {
		t.Errorf("docs = %+v", docs)
	}
}

func TestLoaderNoSources(t *testing.T) {
	loader := NewLoader(LoaderConfig{})
	if _, err := loader.Run(context.Background(), ragify.NewRecord()); err == nil {
		t.Error("expected error with no sources")
	}
}

func TestProcessorMissingDocuments(t *testing.T) {
	processor := NewProcessor(ProcessorConfig{})
	rec, err := processor.Run(context.Background(), ragify.NewRecord())
	if err != nil {
		t.Fatal(err)
	}
	if chunks := rec[KeyProcessedDocuments].([]retrieval.Document); len(chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(chunks))
	}
}

func TestEmbedderFallsBackToDocuments(t *testing.T) {
	embedder := NewEmbedder(embeddings.NewMockEmbedder(4))
	rec := ragify.Record{
		KeyDocuments: []retrieval.Document{{ID: "1", Content: "hello"}},
	}
	out, err := embedder.Run(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	vectors := out[KeyEmbeddings].([]retrieval.EmbeddingVector)
	if len(vectors) != 1 || len(vectors[0]) != 4 {
		t.Errorf("vectors = %v", vectors)
	}
}

func TestStoreClearPreprocess(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	if err := backend.Add(ctx,
		[]retrieval.Document{{ID: "stale", Content: "old"}},
		[]retrieval.EmbeddingVector{{1, 0}}); err != nil {
		t.Fatal(err)
	}

	store := NewStore(backend)
	if _, err := store.Preprocess(ctx, ragify.Record{KeyClearVectorStore: true}); err != nil {
		t.Fatal(err)
	}
	if count, _ := backend.Count(ctx); count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	// Without the flag the backend is left alone.
	if err := backend.Add(ctx,
		[]retrieval.Document{{ID: "fresh", Content: "new"}},
		[]retrieval.EmbeddingVector{{1, 0}}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Preprocess(ctx, ragify.NewRecord()); err != nil {
		t.Fatal(err)
	}
	if count, _ := backend.Count(ctx); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestRetrieverBlankQuery(t *testing.T) {
	retriever := NewRetriever(embeddings.NewMockEmbedder(4), memory.New(), RetrieverConfig{})
	rec, err := retriever.Run(context.Background(), ragify.NewRecord())
	if err != nil {
		t.Fatal(err)
	}
	if docs := rec[KeyRetrievedDocuments].([]retrieval.Document); len(docs) != 0 {
		t.Errorf("docs = %d, want 0", len(docs))
	}
	if scores := rec[KeyRetrievalScores].([]float64); len(scores) != 0 {
		t.Errorf("scores = %d, want 0", len(scores))
	}
}

func TestRetrieverTopK(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	embedder := embeddings.NewMockEmbedder(4)

	var docs []retrieval.Document
	var texts []string
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		docs = append(docs, retrieval.Document{ID: id, Content: "entry " + id})
		texts = append(texts, "entry "+id)
	}
	vectors, _ := embedder.EmbedDocuments(ctx, texts)
	if err := store.Add(ctx, docs, vectors); err != nil {
		t.Fatal(err)
	}

	retriever := NewRetriever(embedder, store, RetrieverConfig{TopK: 2})
	rec, err := retriever.Run(ctx, ragify.Record{KeyQuery: "entry"})
	if err != nil {
		t.Fatal(err)
	}
	if got := rec[KeyRetrievedDocuments].([]retrieval.Document); len(got) != 2 {
		t.Errorf("retrieved %d, want 2", len(got))
	}

	// A "k" record key overrides the configured value for one run.
	rec, err = retriever.Run(ctx, ragify.Record{KeyQuery: "entry", KeyTopK: 5})
	if err != nil {
		t.Fatal(err)
	}
	if got := rec[KeyRetrievedDocuments].([]retrieval.Document); len(got) != 5 {
		t.Errorf("retrieved %d with k override, want 5", len(got))
	}
}

func TestSelectDiverse(t *testing.T) {
	docs := []retrieval.Document{
		{ID: "1", Content: "the quick brown fox jumps over the lazy dog"},
		{ID: "2", Content: "the quick brown fox jumps over the lazy dog today"},
		{ID: "3", Content: "completely unrelated text about vector databases"},
	}

	got := selectDiverse(docs, 0.8)
	if len(got) != 2 {
		t.Fatalf("kept %d documents, want 2", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("kept %s and %s, want 1 and 3", got[0].ID, got[1].ID)
	}

	// A permissive threshold keeps everything.
	if got := selectDiverse(docs, 0.999); len(got) != 3 {
		t.Errorf("kept %d documents, want 3", len(got))
	}
}

func TestGeneratorRequiresQuery(t *testing.T) {
	generator := NewGenerator(ai.NewMockClient("unused"), GeneratorConfig{})
	if _, err := generator.Run(context.Background(), ragify.NewRecord()); err == nil {
		t.Error("expected error without query")
	}
}

func TestGeneratorSystemPrompt(t *testing.T) {
	client := ai.NewMockClient("done")
	generator := NewGenerator(client, GeneratorConfig{SystemPrompt: "be brief"})

	rec := ragify.Record{KeyQuery: "how?"}
	if _, err := generator.Run(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	messages := client.Requests[0]
	if len(messages) != 2 || messages[0].Role != ai.RoleSystem || messages[0].Content != "be brief" {
		t.Errorf("messages = %+v", messages)
	}
}

func TestClassifierStampsContentType(t *testing.T) {
	classifier := NewClassifier(nil)
	rec := ragify.Record{
		KeyDocuments: []retrieval.Document{
			{ID: "1", Metadata: map[string]any{"file_type": ".png"}},
			{ID: "2", Metadata: map[string]any{"file_type": ".txt"}},
			{ID: "3"},
		},
	}

	out, err := classifier.Run(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	docs := out[KeyDocuments].([]retrieval.Document)
	want := []string{"image", "text", "text"}
	for i, doc := range docs {
		if got := doc.Metadata["content_type"]; got != want[i] {
			t.Errorf("doc %s content_type = %v, want %s", doc.ID, got, want[i])
		}
	}
}
