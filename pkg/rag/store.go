package rag

import (
	"context"
	"fmt"

	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// Store indexes embedded documents into a vector store.
//
// Reads KeyDocumentsWithEmbeddings and KeyEmbeddings, writes
// KeyVectorStoreInfo. When the record carries KeyClearVectorStore=true the
// preprocess hook wipes the backend before anything is added.
type Store struct {
	ragify.Base
	store retrieval.VectorStore
}

// NewStore creates a store component around a backend.
func NewStore(store retrieval.VectorStore) *Store {
	s := &Store{store: store}
	s.Base = ragify.NewBase("vector_store")
	return s
}

// Preprocess clears the backend when the record asks for it.
func (s *Store) Preprocess(ctx context.Context, rec ragify.Record) (ragify.Record, error) {
	if rec.Bool(KeyClearVectorStore) {
		if err := s.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear vector store: %w", err)
		}
	}
	return rec, nil
}

// Run adds the embedded documents to the backend.
func (s *Store) Run(ctx context.Context, rec ragify.Record) (ragify.Record, error) {
	docs, _ := rec[KeyDocumentsWithEmbeddings].([]retrieval.Document)
	vectors, _ := rec[KeyEmbeddings].([]retrieval.EmbeddingVector)

	if len(docs) > 0 {
		if err := s.store.Add(ctx, docs, vectors); err != nil {
			return nil, fmt.Errorf("index %d documents: %w", len(docs), err)
		}
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count indexed documents: %w", err)
	}

	rec[KeyVectorStoreInfo] = map[string]any{
		"documents_indexed": len(docs),
		"total_documents":   total,
		"store_type":        s.store.Type(),
	}
	return rec, nil
}
