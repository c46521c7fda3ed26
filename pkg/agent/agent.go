// Package agent runs a bounded tool-calling loop over an ai.Client and a
// tools.Registry. The model is prompted with the registry's calling
// convention; responses containing a tool-call envelope are executed and
// fed back until the model answers in plain text or the iteration budget
// runs out.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ragify-ai/ragify/pkg/ai"
	"github.com/ragify-ai/ragify/pkg/tools"
)

// ErrMaxIterations is returned when the model keeps calling tools past the
// configured iteration budget without producing a final answer.
var ErrMaxIterations = errors.New("agent exceeded maximum iterations")

// Config configures an agent.
type Config struct {
	// MaxIterations bounds the number of model turns. Defaults to 5. Each
	// turn either answers or triggers one batch of tool calls.
	MaxIterations int

	// SystemPrompt is prepended before the tool calling convention.
	SystemPrompt string

	// Logger receives per-turn diagnostics. Defaults to no-op.
	Logger zerolog.Logger
}

// Step records one model turn: the raw response and any tool executions it
// triggered.
type Step struct {
	Iteration   int
	Response    string
	ToolResults []tools.ToolResult
}

// Result is the outcome of one agent run.
type Result struct {
	// Answer is the model's final plain-text response.
	Answer string

	// Steps traces every turn, tool-calling and final alike.
	Steps []Step
}

// Agent couples a model client with a tool registry.
type Agent struct {
	client   ai.Client
	registry *tools.Registry
	cfg      Config
	logger   zerolog.Logger
}

// New creates an agent. The registry may be empty, in which case the agent
// degenerates to a single chat turn.
func New(client ai.Client, registry *tools.Registry, cfg Config) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 5
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return &Agent{client: client, registry: registry, cfg: cfg, logger: cfg.Logger}
}

// Run executes the loop for one user input.
//
// A response that textually looks like a tool call but fails to parse is
// treated as the final answer: models sometimes quote the convention while
// answering, and re-prompting on that loops forever.
func (a *Agent) Run(ctx context.Context, input string) (*Result, error) {
	messages, err := a.initialMessages(input)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		response, err := a.client.Chat(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("model turn %d: %w", iteration, err)
		}

		step := Step{Iteration: iteration, Response: response}

		if !tools.HasToolCalls(response) {
			result.Steps = append(result.Steps, step)
			result.Answer = response
			return result, nil
		}

		calls, err := tools.ParseToolCalls(response)
		if err != nil {
			a.logger.Debug().Err(err).Int("iteration", iteration).
				Msg("unparseable tool call envelope, treating as answer")
			result.Steps = append(result.Steps, step)
			result.Answer = response
			return result, nil
		}

		for _, call := range calls {
			res := a.registry.Execute(ctx, call)
			a.logger.Debug().
				Int("iteration", iteration).
				Str("tool", call.Name).
				Bool("failed", res.Error != "").
				Msg("tool executed")
			step.ToolResults = append(step.ToolResults, res)
		}
		result.Steps = append(result.Steps, step)

		feedback, err := encodeResults(step.ToolResults)
		if err != nil {
			return nil, err
		}
		messages = append(messages,
			ai.Message{Role: ai.RoleAssistant, Content: response},
			ai.Message{Role: ai.RoleTool, Content: feedback},
		)
	}

	return result, fmt.Errorf("%w (%d)", ErrMaxIterations, a.cfg.MaxIterations)
}

func (a *Agent) initialMessages(input string) ([]ai.Message, error) {
	var system strings.Builder
	if a.cfg.SystemPrompt != "" {
		system.WriteString(a.cfg.SystemPrompt)
	}
	if len(a.registry.List()) > 0 {
		prompt, err := a.registry.SystemPrompt()
		if err != nil {
			return nil, fmt.Errorf("render tool prompt: %w", err)
		}
		if system.Len() > 0 {
			system.WriteString("\n\n")
		}
		system.WriteString(prompt)
	}

	messages := make([]ai.Message, 0, 2)
	if system.Len() > 0 {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: system.String()})
	}
	return append(messages, ai.Message{Role: ai.RoleUser, Content: input}), nil
}

// encodeResults renders tool results as the JSON payload fed back to the
// model.
func encodeResults(results []tools.ToolResult) (string, error) {
	out, err := json.Marshal(map[string]any{"tool_results": results})
	if err != nil {
		return "", fmt.Errorf("encode tool results: %w", err)
	}
	return string(out), nil
}
