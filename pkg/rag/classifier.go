package rag

import (
	"context"

	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// Classifier annotates loaded documents with their content type using an
// injected strategy. Multimodal pipelines place it between the loader and
// the processor; downstream stages route on the "content_type" metadata
// instead of subclassing.
type Classifier struct {
	ragify.Base
	classify retrieval.ContentClassifier
}

// NewClassifier creates a classifier component. A nil strategy defaults to
// extension-based classification.
func NewClassifier(strategy retrieval.ContentClassifier) *Classifier {
	if strategy == nil {
		strategy = retrieval.ExtensionClassifier{}
	}
	c := &Classifier{classify: strategy}
	c.Base = ragify.NewBase("content_classifier")
	return c
}

// Run stamps every loaded document with its content type.
func (c *Classifier) Run(_ context.Context, rec ragify.Record) (ragify.Record, error) {
	docs, _ := rec[KeyDocuments].([]retrieval.Document)
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any, 1)
		}
		docs[i].Metadata["content_type"] = string(c.classify.Classify(docs[i]))
	}
	rec[KeyDocuments] = docs
	return rec, nil
}
