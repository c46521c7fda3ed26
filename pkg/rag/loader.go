package rag

import (
	"context"
	"fmt"

	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

// LoaderConfig configures the document loading stage.
type LoaderConfig struct {
	// Sources are file paths, directories or glob patterns to load.
	// KeyFilePaths or KeyDirectoryPath on the input record override them
	// for a single run.
	Sources []string

	// Pattern filters file names when a source is a directory. Defaults
	// to "*".
	Pattern string

	// Recursive walks subdirectories of directory sources.
	Recursive bool
}

// Loader loads documents into the record.
//
// Input precedence per run: KeyFilePaths, then KeyDirectoryPath (with
// optional KeyGlobPattern), then the configured sources. Writes
// KeyDocuments and, in postprocess, KeyLoaderInfo.
type Loader struct {
	ragify.Base
	cfg LoaderConfig
}

// NewLoader creates a loader component.
func NewLoader(cfg LoaderConfig) *Loader {
	l := &Loader{cfg: cfg}
	l.Base = ragify.NewBase("document_loader")
	return l
}

// Run loads all sources and stores the documents on the record.
func (l *Loader) Run(_ context.Context, rec ragify.Record) (ragify.Record, error) {
	if paths := rec.StringSlice(KeyFilePaths); len(paths) > 0 {
		docs := make([]retrieval.Document, 0, len(paths))
		for _, path := range paths {
			loaded, err := retrieval.LoadSources(path)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			docs = append(docs, loaded...)
		}
		rec[KeyDocuments] = docs
		return rec, nil
	}

	if dir := rec.String(KeyDirectoryPath); dir != "" {
		pattern := rec.String(KeyGlobPattern)
		if pattern == "" {
			pattern = l.cfg.Pattern
		}
		docs, err := retrieval.LoadDirectory(dir, pattern, l.cfg.Recursive)
		if err != nil {
			return nil, fmt.Errorf("load directory %s: %w", dir, err)
		}
		rec[KeyDocuments] = docs
		return rec, nil
	}

	if len(l.cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	var docs []retrieval.Document
	for _, source := range l.cfg.Sources {
		loaded, err := l.loadSource(source)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
		docs = append(docs, loaded...)
	}

	rec[KeyDocuments] = docs
	return rec, nil
}

func (l *Loader) loadSource(source string) ([]retrieval.Document, error) {
	if l.cfg.Pattern != "" || l.cfg.Recursive {
		if docs, err := retrieval.LoadDirectory(source, l.cfg.Pattern, l.cfg.Recursive); err == nil {
			return docs, nil
		}
	}
	return retrieval.LoadSources(source)
}

// Postprocess records loading statistics, including a tally per file type.
func (l *Loader) Postprocess(_ context.Context, rec ragify.Record) (ragify.Record, error) {
	docs, _ := rec[KeyDocuments].([]retrieval.Document)

	fileTypes := make(map[string]int)
	for _, doc := range docs {
		if ext, ok := doc.Metadata["file_type"].(string); ok {
			fileTypes[ext]++
		}
	}

	rec[KeyLoaderInfo] = map[string]any{
		"documents_loaded": len(docs),
		"loader_type":      "file",
		"file_types":       fileTypes,
	}
	return rec, nil
}
