// Package badgerstore provides a persistent vector store on BadgerDB.
//
// Documents and their vectors are stored as JSON values under a common key
// prefix; search is a full scan with cosine ranking. This trades query
// speed for zero external infrastructure, which suits local corpora that
// must survive process restarts.
package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/rs/zerolog"

	"github.com/ragify-ai/ragify/pkg/retrieval"
)

const docPrefix = "vecdoc:"

// Store is a BadgerDB-backed vector store.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

// Config configures a badger store.
type Config struct {
	// Path is the database directory, created if missing. Ignored when
	// InMemory is set.
	Path string
	// InMemory keeps all data off disk. Useful for tests.
	InMemory bool
	// Logger receives badger's internal diagnostics. Defaults to no-op.
	Logger zerolog.Logger
}

// badgerLogAdapter adapts zerolog to the badger.Logger interface.
type badgerLogAdapter struct {
	log zerolog.Logger
}

var _ badger.Logger = (*badgerLogAdapter)(nil)

func (a *badgerLogAdapter) Errorf(msg string, args ...any) {
	a.log.Error().Msgf(msg, args...)
}

func (a *badgerLogAdapter) Warningf(msg string, args ...any) {
	a.log.Warn().Msgf(msg, args...)
}

func (a *badgerLogAdapter) Infof(msg string, args ...any) {
	a.log.Debug().Msgf(msg, args...)
}

func (a *badgerLogAdapter) Debugf(msg string, args ...any) {
	a.log.Debug().Msgf(msg, args...)
}

// Open opens (or creates) a badger-backed store.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &badgerLogAdapter{log: cfg.Logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.Path, err)
	}
	return &Store{db: db, log: cfg.Logger}, nil
}

type storedEntry struct {
	Doc    retrieval.Document        `json:"doc"`
	Vector retrieval.EmbeddingVector `json:"vector"`
}

func docKey(id string) []byte {
	return []byte(docPrefix + id)
}

// Add stores documents with their vectors. Re-adding an existing document
// ID overwrites the previous entry.
func (s *Store) Add(_ context.Context, docs []retrieval.Document, vectors []retrieval.EmbeddingVector) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%w: %d documents, %d vectors",
			retrieval.ErrCountMismatch, len(docs), len(vectors))
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range docs {
		val, err := json.Marshal(storedEntry{Doc: docs[i], Vector: vectors[i]})
		if err != nil {
			return fmt.Errorf("encode document %s: %w", docs[i].ID, err)
		}
		if err := wb.Set(docKey(docs[i].ID), val); err != nil {
			return fmt.Errorf("write document %s: %w", docs[i].ID, err)
		}
	}
	return wb.Flush()
}

// Search scans every stored document, ranks by cosine similarity and
// applies the query's limit, threshold and metadata filter.
func (s *Store) Search(_ context.Context, query retrieval.SearchQuery) (*retrieval.SearchResult, error) {
	var scored []retrieval.Document

	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry storedEntry
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			if !retrieval.MatchesFilter(entry.Doc, query.Filter) {
				continue
			}
			doc := entry.Doc
			doc.Score = retrieval.CosineSimilarity(query.Vector, entry.Vector)
			scored = append(scored, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
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
	var n int
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes all stored documents.
func (s *Store) Clear(context.Context) error {
	return s.db.DropPrefix([]byte(docPrefix))
}

// Type identifies this backend.
func (s *Store) Type() string { return "badger" }

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
