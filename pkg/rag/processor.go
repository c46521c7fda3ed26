package rag

import (
	"context"
	"fmt"

	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// ProcessorConfig configures the cleaning and chunking stage.
type ProcessorConfig struct {
	// Splitter controls chunk size, overlap and the minimum chunk length.
	// A zero value uses retrieval.DefaultSplitterConfig.
	Splitter retrieval.SplitterConfig
}

// Processor cleans and chunks loaded documents.
//
// Reads KeyDocuments, writes KeyProcessedDocuments and, in postprocess,
// KeyProcessorInfo. A missing KeyDocuments is treated as an empty corpus,
// not an error.
type Processor struct {
	ragify.Base
	cfg ProcessorConfig
}

// NewProcessor creates a processor component.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Splitter == (retrieval.SplitterConfig{}) {
		cfg.Splitter = retrieval.DefaultSplitterConfig()
	}
	p := &Processor{cfg: cfg}
	p.Base = ragify.NewBase("document_processor")
	return p
}

// Run chunks every loaded text document. Documents classified as non-text
// (images, audio, video) pass through unchunked: their content is already
// a caption or transcript sized for embedding.
func (p *Processor) Run(_ context.Context, rec ragify.Record) (ragify.Record, error) {
	docs, _ := rec[KeyDocuments].([]retrieval.Document)

	text := make([]retrieval.Document, 0, len(docs))
	var passthrough []retrieval.Document
	for _, doc := range docs {
		if ct, ok := doc.Metadata["content_type"].(string); ok && ct != string(retrieval.ContentText) {
			passthrough = append(passthrough, doc)
			continue
		}
		text = append(text, doc)
	}

	chunks, err := retrieval.ChunkDocuments(text, p.cfg.Splitter)
	if err != nil {
		return nil, fmt.Errorf("chunk documents: %w", err)
	}

	rec[KeyProcessedDocuments] = append(chunks, passthrough...)
	return rec, nil
}

// Postprocess records processing statistics.
func (p *Processor) Postprocess(_ context.Context, rec ragify.Record) (ragify.Record, error) {
	docs, _ := rec[KeyDocuments].([]retrieval.Document)
	chunks, _ := rec[KeyProcessedDocuments].([]retrieval.Document)
	rec[KeyProcessorInfo] = map[string]any{
		"documents_processed": len(docs),
		"chunks_generated":    len(chunks),
		"chunk_size":          p.cfg.Splitter.ChunkSize,
		"chunk_overlap":       p.cfg.Splitter.ChunkOverlap,
	}
	return rec, nil
}
