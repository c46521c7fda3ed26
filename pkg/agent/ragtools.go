package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ragify-ai/ragify/pkg/rag"
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
	"github.com/ragify-ai/ragify/pkg/tools"
)

// IndexFileTool indexes a single file (or glob) into the knowledge base.
// The summary comes back as JSON.
func IndexFileTool(pipeline *rag.IndexingPipeline) tools.Tool {
	schema := tools.ObjectSchema([][2]string{
		{"path", "File path or glob pattern to index"},
	})
	return tools.New("index_file",
		"Index a document file into the knowledge base",
		schema,
		func(ctx context.Context, arguments string) (string, error) {
			path := tools.StringArg(arguments, "path")
			if path == "" {
				return "", fmt.Errorf("path argument is required")
			}
			return runIndexing(ctx, pipeline, ragify.Record{rag.KeyFilePaths: []string{path}})
		})
}

// IndexDirectoryTool indexes every matching file under a directory.
func IndexDirectoryTool(pipeline *rag.IndexingPipeline) tools.Tool {
	schema := tools.ObjectSchema([][2]string{
		{"path", "Directory to index"},
		{"pattern", "Optional file name glob, e.g. *.txt"},
	})
	schema.Required = []string{"path"}
	return tools.New("index_directory",
		"Index all documents in a directory into the knowledge base",
		schema,
		func(ctx context.Context, arguments string) (string, error) {
			path := tools.StringArg(arguments, "path")
			if path == "" {
				return "", fmt.Errorf("path argument is required")
			}
			in := ragify.Record{rag.KeyDirectoryPath: path}
			if pattern := tools.StringArg(arguments, "pattern"); pattern != "" {
				in[rag.KeyGlobPattern] = pattern
			}
			return runIndexing(ctx, pipeline, in)
		})
}

func runIndexing(ctx context.Context, pipeline *rag.IndexingPipeline, in ragify.Record) (string, error) {
	out, results := pipeline.Run(ctx, in)
	for _, res := range results {
		if res.Err != nil {
			return "", fmt.Errorf("indexing stage %s: %w", res.Component, res.Err)
		}
	}
	return encodeJSON(out[rag.KeyIndexingSummary])
}

// QueryTool exposes a query pipeline as an agent tool.
func QueryTool(pipeline *rag.QueryPipeline) tools.Tool {
	schema := tools.ObjectSchema([][2]string{
		{"query", "Question to answer from the knowledge base"},
	})
	return tools.New("rag_query",
		"Answer a question using the indexed documents",
		schema,
		func(ctx context.Context, arguments string) (string, error) {
			query := tools.StringArg(arguments, "query")

			out, results, err := pipeline.Run(ctx, query)
			if err != nil {
				return "", err
			}
			for _, res := range results {
				if res.Err != nil {
					return "", fmt.Errorf("query stage %s: %w", res.Component, res.Err)
				}
			}

			summary, _ := out[rag.KeyQuerySummary].(map[string]any)
			return encodeJSON(map[string]any{
				"response": out.String(rag.KeyResponse),
				"summary":  summary,
			})
		})
}

// StoreInfoTool reports the vector store's type and document count.
func StoreInfoTool(store retrieval.VectorStore) tools.Tool {
	schema := tools.ObjectSchema(nil)
	return tools.New("vectorstore_info",
		"Report the vector store type and how many documents it holds",
		schema,
		func(ctx context.Context, _ string) (string, error) {
			count, err := store.Count(ctx)
			if err != nil {
				return "", fmt.Errorf("count documents: %w", err)
			}
			return encodeJSON(map[string]any{
				"store_type":      store.Type(),
				"total_documents": count,
			})
		})
}

// ClearStoreTool wipes the vector store.
func ClearStoreTool(store retrieval.VectorStore) tools.Tool {
	schema := tools.ObjectSchema(nil)
	return tools.New("clear_vectorstore",
		"Delete every document from the vector store",
		schema,
		func(ctx context.Context, _ string) (string, error) {
			if err := store.Clear(ctx); err != nil {
				return "", fmt.Errorf("clear store: %w", err)
			}
			return `{"cleared":true}`, nil
		})
}

// RAGRegistry bundles the standard RAG tool set over shared pipelines.
func RAGRegistry(multi *rag.MultiStagePipeline, store retrieval.VectorStore) *tools.Registry {
	return tools.NewRegistry(
		IndexFileTool(multi.Indexing),
		IndexDirectoryTool(multi.Indexing),
		QueryTool(multi.Query),
		StoreInfoTool(store),
		ClearStoreTool(store),
	)
}

func encodeJSON(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(out), nil
}
