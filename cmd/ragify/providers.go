package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ragify-ai/ragify/pkg/ai"
	"github.com/ragify-ai/ragify/pkg/ai/gemini"
	llmollama "github.com/ragify-ai/ragify/pkg/ai/ollama"
	llmopenai "github.com/ragify-ai/ragify/pkg/ai/openai"
	"github.com/ragify-ai/ragify/pkg/config"
	"github.com/ragify-ai/ragify/pkg/embeddings"
	embollama "github.com/ragify-ai/ragify/pkg/embeddings/ollama"
	embopenai "github.com/ragify-ai/ragify/pkg/embeddings/openai"
	"github.com/ragify-ai/ragify/pkg/retrieval"
	"github.com/ragify-ai/ragify/pkg/retrieval/badgerstore"
	"github.com/ragify-ai/ragify/pkg/retrieval/memory"
	"github.com/ragify-ai/ragify/pkg/retrieval/pgvector"
	"github.com/ragify-ai/ragify/pkg/retrieval/qdrant"
)

func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	ec := cfg.Embeddings
	switch ec.Provider {
	case "openai":
		return embopenai.New(embopenai.WithConfig(&embopenai.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		}))
	case "ollama":
		return embollama.New(embollama.WithConfig(&embollama.Config{
			Host:       ec.Host,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		}))
	case "mock":
		return embeddings.NewMockEmbedder(ec.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", ec.Provider)
	}
}

func newClient(cfg *config.Config) (ai.Client, error) {
	lc := cfg.LLM
	switch lc.Provider {
	case "openai":
		model := lc.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return llmopenai.New(model, llmopenai.WithConfig(&llmopenai.Config{
			APIKey:      lc.APIKey,
			BaseURL:     lc.BaseURL,
			Temperature: lc.Temperature,
			MaxTokens:   lc.MaxTokens,
		}))
	case "ollama":
		model := lc.Model
		if model == "" {
			model = "llama3.2"
		}
		return llmollama.New(model, llmollama.WithConfig(&llmollama.Config{
			Host:        lc.Host,
			Temperature: lc.Temperature,
			MaxTokens:   lc.MaxTokens,
		}))
	case "gemini":
		model := lc.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return gemini.New(model, gemini.WithConfig(&gemini.Config{
			APIKey:      lc.APIKey,
			Temperature: lc.Temperature,
			MaxTokens:   lc.MaxTokens,
		}))
	case "mock":
		return ai.NewMockClient("mock response"), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", lc.Provider)
	}
}

func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (retrieval.VectorStore, error) {
	vc := cfg.VectorStore
	switch vc.Type {
	case "memory":
		return memory.New(), nil
	case "badger":
		return badgerstore.Open(badgerstore.Config{
			Path:     vc.Path,
			InMemory: vc.InMemory,
			Logger:   log,
		})
	case "qdrant":
		return qdrant.New(qdrant.Config{
			URL:        vc.URL,
			Collection: vc.Collection,
			APIKey:     vc.APIKey,
			Dimensions: vc.Dimensions,
		})
	case "pgvector":
		return pgvector.New(ctx, pgvector.Config{
			ConnectionString: vc.DSN,
			Dimensions:       vc.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown vector store type %q", vc.Type)
	}
}
