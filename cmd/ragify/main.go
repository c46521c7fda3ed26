// Command ragify indexes documents into a vector store and answers
// questions over them, driven by a YAML config file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ragify-ai/ragify/pkg/agent"
	"github.com/ragify-ai/ragify/pkg/config"
	"github.com/ragify-ai/ragify/pkg/logger"
	"github.com/ragify-ai/ragify/pkg/rag"
	"github.com/ragify-ai/ragify/pkg/ragify"
	"github.com/ragify-ai/ragify/pkg/retrieval"
)

func main() {
	app := &cli.App{
		Name:  "ragify",
		Usage: "Retrieval-augmented generation over your documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override the configured log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Human-readable log output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index documents into the vector store",
				ArgsUsage: "[paths...]",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "pattern",
						Usage: "Glob filter for directory sources",
					},
					&cli.BoolFlag{
						Name:    "recursive",
						Aliases: []string{"r"},
						Usage:   "Walk subdirectories",
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Wipe the vector store before indexing",
					},
					&cli.BoolFlag{
						Name:  "multimodal",
						Usage: "Classify content types and route non-text documents",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Answer a question from the indexed documents",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of documents to retrieve",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score",
					},
					&cli.BoolFlag{
						Name:  "diverse",
						Usage: "Filter near-duplicate results",
					},
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "Print the retrieved documents with scores",
					},
				},
			},
			{
				Name:      "workflow",
				Usage:     "Index documents, then answer each question",
				ArgsUsage: "[questions...]",
				Action:    workflowCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "File, directory or glob to index",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Wipe the vector store before indexing",
					},
				},
			},
			{
				Name:      "agent",
				Usage:     "Run the tool-calling agent for one instruction",
				ArgsUsage: "<instruction>",
				Action:    agentCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-iterations",
						Usage: "Model turn budget",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Print every tool call and result",
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Show the vector store type and document count",
				Action: infoCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the config and builds the logger shared by all commands.
func setup(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	log := logger.New(logger.Options{
		Level:  level,
		Pretty: c.Bool("pretty") || cfg.Logging.Pretty,
	})
	return cfg, log, nil
}

func indexCommand(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	sources := c.Args().Slice()
	if len(sources) == 0 {
		sources = []string{cfg.DataDir}
	}

	indexCfg := rag.IndexingConfig{
		Loader: rag.LoaderConfig{
			Sources:   sources,
			Pattern:   c.String("pattern"),
			Recursive: c.Bool("recursive"),
		},
		Processor: rag.ProcessorConfig{Splitter: splitterFromConfig(cfg)},
		Logger:    log,
	}
	if c.Bool("multimodal") {
		indexCfg.Classifier = retrieval.ExtensionClassifier{}
	}

	pipeline, err := rag.NewIndexingPipeline(embedder, store, indexCfg)
	if err != nil {
		return err
	}

	in := ragify.NewRecord()
	if c.Bool("clear") {
		in[rag.KeyClearVectorStore] = true
	}

	out, results := pipeline.Run(ctx, in)
	for _, res := range results {
		if res.Err != nil {
			log.Error().Str("stage", res.Component).Err(res.Err).Msg("stage failed")
		}
	}
	return printJSON(out[rag.KeyIndexingSummary])
}

func queryCommand(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}
	question := c.Args().First()
	ctx := context.Background()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	queryCfg := queryConfigFromConfig(cfg, log)
	if c.IsSet("top-k") {
		queryCfg.Retriever.TopK = c.Int("top-k")
	}
	if c.IsSet("threshold") {
		queryCfg.Retriever.ScoreThreshold = c.Float64("threshold")
	}
	if c.Bool("diverse") {
		queryCfg.Retriever.Diverse = true
	}

	pipeline, err := rag.NewQueryPipeline(embedder, store, client, queryCfg)
	if err != nil {
		return err
	}

	out, results, err := pipeline.Run(ctx, question)
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("stage %s: %w", res.Component, res.Err)
		}
	}

	fmt.Println(out.String(rag.KeyResponse))

	if c.Bool("show-sources") {
		docs, _ := out[rag.KeyRetrievedDocuments].([]retrieval.Document)
		for i, doc := range docs {
			fmt.Printf("\n[%d] score=%.4f source=%v\n%s\n",
				i+1, doc.Score, doc.Metadata["source"], doc.Content)
		}
	}
	return nil
}

func workflowCommand(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	multi, err := rag.NewMultiStagePipeline(embedder, store, client,
		rag.IndexingConfig{
			Loader:    rag.LoaderConfig{Sources: c.StringSlice("source")},
			Processor: rag.ProcessorConfig{Splitter: splitterFromConfig(cfg)},
			Logger:    log,
		},
		queryConfigFromConfig(cfg, log))
	if err != nil {
		return err
	}

	in := ragify.NewRecord()
	if c.Bool("clear") {
		in[rag.KeyClearVectorStore] = true
	}

	result, err := multi.RunWorkflow(ctx, in, c.Args().Slice())
	if err != nil {
		return err
	}

	if err := printJSON(result.IndexingSummary); err != nil {
		return err
	}
	for i, answer := range result.Answers {
		fmt.Printf("\nQ%d: %s\n%s\n", i+1, answer.String(rag.KeyQuery), answer.String(rag.KeyResponse))
	}
	return nil
}

func agentCommand(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return fmt.Errorf("an instruction is required")
	}
	ctx := context.Background()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	multi, err := rag.NewMultiStagePipeline(embedder, store, client,
		rag.IndexingConfig{
			Processor: rag.ProcessorConfig{Splitter: splitterFromConfig(cfg)},
			Logger:    log,
		},
		queryConfigFromConfig(cfg, log))
	if err != nil {
		return err
	}

	agentCfg := agent.Config{
		MaxIterations: cfg.Agent.MaxIterations,
		SystemPrompt:  cfg.Agent.SystemPrompt,
		Logger:        log,
	}
	if c.IsSet("max-iterations") {
		agentCfg.MaxIterations = c.Int("max-iterations")
	}

	a := agent.New(client, agent.RAGRegistry(multi, store), agentCfg)
	result, err := a.Run(ctx, c.Args().First())
	if err != nil {
		return err
	}

	if c.Bool("trace") {
		for _, step := range result.Steps {
			for _, res := range step.ToolResults {
				fmt.Fprintf(os.Stderr, "[turn %d] %s(%s) -> %s%s\n",
					step.Iteration, res.ToolCall.Name, res.ToolCall.Arguments,
					res.Result, res.Error)
			}
		}
	}
	fmt.Println(result.Answer)
	return nil
}

func infoCommand(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"store_type":      store.Type(),
		"total_documents": count,
	})
}

func splitterFromConfig(cfg *config.Config) retrieval.SplitterConfig {
	return retrieval.SplitterConfig{
		ChunkSize:      cfg.Splitter.ChunkSize,
		ChunkOverlap:   cfg.Splitter.ChunkOverlap,
		MinChunkLength: cfg.Splitter.MinChunkLength,
	}
}

func queryConfigFromConfig(cfg *config.Config, log zerolog.Logger) rag.QueryConfig {
	return rag.QueryConfig{
		Retriever: rag.RetrieverConfig{
			TopK:               cfg.Retrieval.TopK,
			ScoreThreshold:     cfg.Retrieval.ScoreThreshold,
			Diverse:            cfg.Retrieval.Diverse,
			DiversityThreshold: cfg.Retrieval.DiversityThreshold,
		},
		Generator: rag.GeneratorConfig{SystemPrompt: cfg.LLM.SystemPrompt},
		Logger:    log,
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
