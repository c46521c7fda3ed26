package rag

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ragify-ai/ragify/pkg/embeddings"
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"

	aipkg "github.com/ragify-ai/ragify/pkg/ai"
)

// ErrEmptyQuery is returned by a query pipeline when the query is missing
// or blank. This is the one hard validation failure: everything else
// degrades per stage.
var ErrEmptyQuery = errors.New("query must not be empty")

// maxTopSources bounds the source list in a query summary.
const maxTopSources = 3

// IndexingConfig wires an indexing pipeline.
type IndexingConfig struct {
	Loader    LoaderConfig
	Processor ProcessorConfig

	// Classifier, when set, inserts a content classification stage between
	// loading and processing (the multimodal variant). Use
	// retrieval.ExtensionClassifier{} for the default strategy.
	Classifier retrieval.ContentClassifier

	// Logger receives stage diagnostics. Defaults to no-op.
	Logger zerolog.Logger
}

// IndexingPipeline runs loader, processor, embedder and store in order and
// summarizes the run.
type IndexingPipeline struct {
	pipeline   *ragify.Pipeline
	multimodal bool
}

// NewIndexingPipeline assembles the standard indexing composition.
func NewIndexingPipeline(embedder embeddings.Embedder, store retrieval.VectorStore, cfg IndexingConfig) (*IndexingPipeline, error) {
	p := ragify.New("indexing", ragify.WithLogger(cfg.Logger))
	p.Add(NewLoader(cfg.Loader))
	if cfg.Classifier != nil {
		p.Add(NewClassifier(cfg.Classifier))
	}
	p.AddAll(
		NewProcessor(cfg.Processor),
		NewEmbedder(embedder),
		NewStore(store),
	)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &IndexingPipeline{pipeline: p, multimodal: cfg.Classifier != nil}, nil
}

// Pipeline exposes the underlying pipeline for component-level tweaks
// (disabling a stage, swapping the loader).
func (ip *IndexingPipeline) Pipeline() *ragify.Pipeline { return ip.pipeline }

// Run indexes the configured sources. Set KeyClearVectorStore on the input
// record to wipe the backend first. The returned record carries
// KeyIndexingSummary; stage failures are reflected there rather than
// returned as errors.
func (ip *IndexingPipeline) Run(ctx context.Context, in ragify.Record) (ragify.Record, []ragify.StageResult) {
	if in == nil {
		in = ragify.NewRecord()
	}
	out, results := ip.pipeline.Run(ctx, in)
	out[KeyIndexingSummary] = indexingSummary(out, ip.multimodal)
	return out, results
}

func indexingSummary(rec ragify.Record, multimodal bool) map[string]any {
	docs := Documents(rec, KeyDocuments)
	chunks := Documents(rec, KeyProcessedDocuments)

	// The indexed count comes from the store stage's own bookkeeping. When
	// the store fails its record is rolled back and KeyVectorStoreInfo is
	// absent, so the summary reports zero instead of echoing the embedder
	// output.
	var indexed int
	info, hasStoreInfo := rec[KeyVectorStoreInfo].(map[string]any)
	if hasStoreInfo {
		indexed, _ = info["documents_indexed"].(int)
	}

	summary := map[string]any{
		"total_documents_loaded":    len(docs),
		"total_documents_processed": len(chunks),
		"total_chunks_generated":    len(chunks),
		"total_documents_indexed":   indexed,
	}
	if hasStoreInfo {
		summary["vectorstore_total_docs"] = info["total_documents"]
		summary["vectorstore_type"] = info["store_type"]
	}
	if info := rec.Map(ragify.PipelineInfoKey); info != nil {
		summary["success"] = info["success"]
	}

	if multimodal {
		var nonText int
		for _, doc := range docs {
			if ct, ok := doc.Metadata["content_type"].(string); ok && ct != string(retrieval.ContentText) {
				nonText++
			}
		}
		summary["multimodal_files_count"] = nonText
		var pct float64
		if len(docs) > 0 {
			pct = float64(nonText) / float64(len(docs)) * 100
		}
		summary["multimodal_files_percentage"] = pct
	}
	return summary
}

// QueryConfig wires a query pipeline.
type QueryConfig struct {
	Retriever RetrieverConfig
	Generator GeneratorConfig

	// Logger receives stage diagnostics. Defaults to no-op.
	Logger zerolog.Logger
}

// QueryPipeline runs retriever and generator in order and summarizes the
// run.
type QueryPipeline struct {
	pipeline *ragify.Pipeline
}

// NewQueryPipeline assembles the standard query composition.
func NewQueryPipeline(embedder embeddings.Embedder, store retrieval.VectorStore, client aipkg.Client, cfg QueryConfig) (*QueryPipeline, error) {
	p := ragify.New("query", ragify.WithLogger(cfg.Logger))
	p.AddAll(
		NewRetriever(embedder, store, cfg.Retriever),
		NewGenerator(client, cfg.Generator),
	)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &QueryPipeline{pipeline: p}, nil
}

// Pipeline exposes the underlying pipeline.
func (qp *QueryPipeline) Pipeline() *ragify.Pipeline { return qp.pipeline }

// Run answers one query. An empty or blank query fails hard with
// ErrEmptyQuery; a query that matches nothing still generates an answer
// without context. The returned record carries KeyQuerySummary.
func (qp *QueryPipeline) Run(ctx context.Context, query string) (ragify.Record, []ragify.StageResult, error) {
	return qp.RunRecord(ctx, ragify.Record{KeyQuery: query})
}

// RunRecord answers a query carried on a full input record, which may also
// set KeyTopK, KeyScoreThreshold, KeyImageURLs or KeyAudioURLs.
func (qp *QueryPipeline) RunRecord(ctx context.Context, in ragify.Record) (ragify.Record, []ragify.StageResult, error) {
	if in == nil || strings.TrimSpace(in.String(KeyQuery)) == "" {
		return nil, nil, ErrEmptyQuery
	}

	out, results := qp.pipeline.Run(ctx, in)
	out[KeyQuerySummary] = querySummary(out)
	return out, results, nil
}

func querySummary(rec ragify.Record) map[string]any {
	docs := Documents(rec, KeyRetrievedDocuments)
	scores, _ := rec[KeyRetrievalScores].([]float64)

	var avg float64
	for _, s := range scores {
		avg += s
	}
	if len(scores) > 0 {
		avg /= float64(len(scores))
	}

	sources := make([]map[string]any, 0, maxTopSources)
	for _, doc := range docs {
		if len(sources) == maxTopSources {
			break
		}
		if src, ok := doc.Metadata["source"].(string); ok {
			sources = append(sources, map[string]any{
				"source": src,
				"score":  doc.Score,
			})
		}
	}

	summary := map[string]any{
		"query":               rec.String(KeyQuery),
		"documents_retrieved": len(docs),
		"avg_retrieval_score": avg,
		"response_generated":  rec.Bool(KeyResponseGenerated),
		"top_sources":         sources,
	}
	if len(rec.StringSlice(KeyImageURLs)) > 0 || len(rec.StringSlice(KeyAudioURLs)) > 0 {
		summary["multimodal_input"] = true
	}
	return summary
}

// MultiStagePipeline couples an indexing and a query pipeline over the
// same store, for index-then-ask workflows.
type MultiStagePipeline struct {
	Indexing *IndexingPipeline
	Query    *QueryPipeline
}

// NewMultiStagePipeline builds both pipelines over shared providers.
func NewMultiStagePipeline(embedder embeddings.Embedder, store retrieval.VectorStore, client aipkg.Client,
	indexCfg IndexingConfig, queryCfg QueryConfig) (*MultiStagePipeline, error) {
	indexing, err := NewIndexingPipeline(embedder, store, indexCfg)
	if err != nil {
		return nil, err
	}
	query, err := NewQueryPipeline(embedder, store, client, queryCfg)
	if err != nil {
		return nil, err
	}
	return &MultiStagePipeline{Indexing: indexing, Query: query}, nil
}

// RunIndexing indexes the configured sources.
func (m *MultiStagePipeline) RunIndexing(ctx context.Context, in ragify.Record) (ragify.Record, []ragify.StageResult) {
	return m.Indexing.Run(ctx, in)
}

// RunQuery answers a single query against the indexed corpus.
func (m *MultiStagePipeline) RunQuery(ctx context.Context, query string) (ragify.Record, []ragify.StageResult, error) {
	return m.Query.Run(ctx, query)
}

// WorkflowResult is the outcome of one RunWorkflow invocation. It carries
// the full indexing record alongside the per-query answer records.
type WorkflowResult struct {
	IndexingResult  ragify.Record
	IndexingSummary map[string]any
	Answers         []ragify.Record
}

// RunWorkflow indexes once and then answers each query in order. Queries
// after a failed one still run; an invalid (blank) query aborts the
// workflow since it is a caller bug, not a data condition.
func (m *MultiStagePipeline) RunWorkflow(ctx context.Context, in ragify.Record, queries []string) (*WorkflowResult, error) {
	indexed, _ := m.Indexing.Run(ctx, in)

	result := &WorkflowResult{
		IndexingResult: indexed,
		Answers:        make([]ragify.Record, 0, len(queries)),
	}
	if summary, ok := indexed[KeyIndexingSummary].(map[string]any); ok {
		result.IndexingSummary = summary
	}

	for _, query := range queries {
		out, _, err := m.Query.Run(ctx, query)
		if err != nil {
			return nil, err
		}
		result.Answers = append(result.Answers, out)
	}
	return result, nil
}
