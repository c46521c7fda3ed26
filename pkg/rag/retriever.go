package rag

import (
	"context"
	"fmt"

	"github.com/hbollon/go-edlib"

	"github.com/ragify-ai/ragify/pkg/embeddings"
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// RetrieverConfig configures the retrieval stage.
type RetrieverConfig struct {
	// TopK is the maximum number of documents to retrieve. Defaults to 3.
	// A "k" record key overrides it for a single run.
	TopK int

	// ScoreThreshold excludes results scoring below it. Applied after the
	// store's ranking, so it can only shrink the result set.
	ScoreThreshold float64

	// Diverse filters near-duplicate results by lexical similarity after
	// ranking.
	Diverse bool

	// DiversityThreshold is the content similarity above which a result is
	// dropped as a near-duplicate. Defaults to 0.8.
	DiversityThreshold float64
}

// Retriever embeds the query and searches the vector store.
//
// Reads KeyQuery, writes KeyRetrievedDocuments and KeyRetrievalScores.
// Each retrieved document carries its score in MetaRetrievalScore metadata.
// An absent or blank query retrieves nothing rather than failing.
type Retriever struct {
	ragify.Base
	embedder embeddings.Embedder
	store    retrieval.VectorStore
	cfg      RetrieverConfig
}

// NewRetriever creates a retriever component.
func NewRetriever(embedder embeddings.Embedder, store retrieval.VectorStore, cfg RetrieverConfig) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.DiversityThreshold <= 0 {
		cfg.DiversityThreshold = 0.8
	}
	r := &Retriever{embedder: embedder, store: store, cfg: cfg}
	r.Base = ragify.NewBase("retriever")
	return r
}

// Run searches the store for documents similar to the query.
func (r *Retriever) Run(ctx context.Context, rec ragify.Record) (ragify.Record, error) {
	query := rec.String(KeyQuery)
	if query == "" {
		rec[KeyRetrievedDocuments] = []retrieval.Document{}
		rec[KeyRetrievalScores] = []float64{}
		return rec, nil
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	topK := r.cfg.TopK
	if k := rec.Int(KeyTopK); k > 0 {
		topK = k
	}
	threshold := r.cfg.ScoreThreshold
	if rec.Has(KeyScoreThreshold) {
		threshold = rec.Float(KeyScoreThreshold)
	}

	result, err := r.store.Search(ctx, retrieval.SearchQuery{
		Vector:    vector,
		Text:      query,
		Limit:     topK,
		Threshold: threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	docs := result.Documents
	if r.cfg.Diverse {
		docs = selectDiverse(docs, r.cfg.DiversityThreshold)
	}

	scores := make([]float64, len(docs))
	for i := range docs {
		scores[i] = docs[i].Score
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any, 1)
		}
		docs[i].Metadata[MetaRetrievalScore] = docs[i].Score
	}

	rec[KeyRetrievedDocuments] = docs
	rec[KeyRetrievalScores] = scores
	return rec, nil
}

// selectDiverse keeps the ranked order but drops documents whose content is
// lexically near-identical to an already kept one.
func selectDiverse(docs []retrieval.Document, threshold float64) []retrieval.Document {
	if len(docs) <= 1 {
		return docs
	}

	selected := []retrieval.Document{docs[0]}
	for _, doc := range docs[1:] {
		diverse := true
		for _, kept := range selected {
			if contentSimilarity(doc.Content, kept.Content) > threshold {
				diverse = false
				break
			}
		}
		if diverse {
			selected = append(selected, doc)
		}
	}
	return selected
}

// contentSimilarity blends 2-gram cosine with word-level jaccard, weighting
// the n-gram signal higher for chunked documents.
func contentSimilarity(a, b string) float64 {
	cosine := edlib.CosineSimilarity(a, b, 2)
	jaccard := edlib.JaccardSimilarity(a, b, 0)
	return float64(0.7*cosine + 0.3*jaccard)
}
