// Package tools defines the function-calling tool contract, a registry for
// exposing tools to language models, and the OpenAI-format call envelope
// parsing used by the agent loop.
package tools

import (
	"context"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tool defines a function that can be called by the LLM (OpenAI Function
// Calling standard).
type Tool interface {
	Name() string                         // Function name (e.g., "read_file")
	Description() string                  // What the function does
	ParametersSchema() *jsonschema.Schema // JSON schema for function parameters (OpenAI standard)

	// Call executes the tool. Arguments arrive as the raw JSON string from
	// the model's tool call; the result is returned as text for the next
	// model turn.
	Call(ctx context.Context, arguments string) (string, error)
}

// toolImpl is the basic implementation of the Tool interface.
type toolImpl struct {
	name             string
	description      string
	parametersSchema *jsonschema.Schema
	fn               func(ctx context.Context, arguments string) (string, error)
}

func (t *toolImpl) Name() string                         { return t.name }
func (t *toolImpl) Description() string                  { return t.description }
func (t *toolImpl) ParametersSchema() *jsonschema.Schema { return t.parametersSchema }

func (t *toolImpl) Call(ctx context.Context, arguments string) (string, error) {
	return t.fn(ctx, arguments)
}

// New creates a tool with full control over name, description, schema, and
// implementation.
//
// Example:
//
//	searchTool := tools.New(
//	    "web_search",
//	    "Search the web for current information",
//	    schema,
//	    searchFn,
//	)
func New(name, description string, parametersSchema *jsonschema.Schema,
	fn func(ctx context.Context, arguments string) (string, error)) Tool {
	return &toolImpl{
		name:             name,
		description:      description,
		parametersSchema: parametersSchema,
		fn:               fn,
	}
}

// Simple creates a tool from a string-to-string function. Simple tools use
// a basic schema with a single "input" string parameter; the raw arguments
// string is passed straight to fn.
//
// Example:
//
//	upper := tools.Simple("upper", "Uppercase the input", strings.ToUpper)
func Simple(name, description string, fn func(string) string) Tool {
	return New(name, description, InputSchema(name),
		func(_ context.Context, arguments string) (string, error) {
			return fn(StringArg(arguments, "input")), nil
		})
}

// InputSchema builds the single-"input" parameter schema used by simple
// tools.
func InputSchema(name string) *jsonschema.Schema {
	properties := orderedmap.New[string, *jsonschema.Schema]()
	properties.Set("input", &jsonschema.Schema{
		Type:        "string",
		Description: "Input for the " + name + " tool",
	})
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   []string{"input"},
	}
}

// ObjectSchema builds an object schema from ordered (name, description)
// string parameter pairs, all required.
func ObjectSchema(params [][2]string) *jsonschema.Schema {
	properties := orderedmap.New[string, *jsonschema.Schema]()
	required := make([]string, 0, len(params))
	for _, p := range params {
		properties.Set(p[0], &jsonschema.Schema{
			Type:        "string",
			Description: p[1],
		})
		required = append(required, p[0])
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
