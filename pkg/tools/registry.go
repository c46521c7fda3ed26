package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ToolDefinition describes a tool in the OpenAI functions format.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Registry holds the tools available to an agent, in registration order.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry creates a registry with the given tools. Registering two
// tools with the same name keeps the last one.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(t Tool) {
	if _, exists := r.byName[t.Name()]; exists {
		for i, existing := range r.tools {
			if existing.Name() == t.Name() {
				r.tools[i] = t
				break
			}
		}
	} else {
		r.tools = append(r.tools, t)
	}
	r.byName[t.Name()] = t
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Definitions returns all tools as OpenAI function definitions.
func (r *Registry) Definitions() ([]ToolDefinition, error) {
	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		raw, err := json.Marshal(t.ParametersSchema())
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", t.Name(), err)
		}
		var params map[string]any
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("decode schema for %s: %w", t.Name(), err)
		}
		defs = append(defs, ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  params,
		})
	}
	return defs, nil
}

// SystemPrompt renders the tool descriptions and the calling convention as
// a system message for providers without native function calling.
func (r *Registry) SystemPrompt() (string, error) {
	defs, err := r.Definitions()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You have access to the following tools:\n\n")
	for _, def := range defs {
		params, err := json.Marshal(def.Parameters)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "- %s: %s\n  Parameters: %s\n", def.Name, def.Description, params)
	}
	b.WriteString("\nTo call tools, respond with exactly this JSON format:\n")
	b.WriteString(`{"tool_calls":[{"type":"function","function":{"name":"tool_name","arguments":"{\"param\":\"value\"}"}}]}`)
	b.WriteString("\nOtherwise answer the user directly in plain text.")
	return b.String(), nil
}

// Execute runs a parsed tool call against the registry. Unknown tools and
// tool failures are reported in the result's Error field rather than as an
// error return, so one bad call never aborts a multi-call batch.
func (r *Registry) Execute(ctx context.Context, call ToolCall) ToolResult {
	res := ToolResult{ToolCall: call}
	tool, ok := r.Get(call.Name)
	if !ok {
		res.Error = fmt.Sprintf("unknown tool: %s", call.Name)
		return res
	}
	out, err := tool.Call(ctx, call.Arguments)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Result = out
	return res
}
