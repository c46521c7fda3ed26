package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
	ID        string `json:"id,omitempty"`
}

// OpenAIToolCall represents a tool call in OpenAI format
type OpenAIToolCall struct {
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// ToolResult pairs a call with its outcome.
type ToolResult struct {
	ToolCall ToolCall `json:"tool_call"`
	Result   string   `json:"result"`
	Error    string   `json:"error,omitempty"`
}

// HasToolCalls detects whether a model response contains a tool call
// envelope. Cheap textual check; ParseToolCalls does the real validation.
func HasToolCalls(response string) bool {
	return bytes.Contains([]byte(response), []byte(`"tool_calls"`))
}

// ParseToolCalls extracts tool calls from an OpenAI-format envelope:
//
//	{"tool_calls":[{"type":"function","function":{"name":"...","arguments":"..."}}]}
func ParseToolCalls(response string) ([]ToolCall, error) {
	var envelope struct {
		ToolCalls []OpenAIToolCall `json:"tool_calls"`
	}
	if err := json.Unmarshal([]byte(response), &envelope); err != nil {
		return nil, fmt.Errorf("parse tool call envelope: %w", err)
	}
	if len(envelope.ToolCalls) == 0 {
		return nil, fmt.Errorf("response contains no tool calls")
	}

	calls := make([]ToolCall, 0, len(envelope.ToolCalls))
	for i, call := range envelope.ToolCalls {
		if call.Function.Name == "" {
			return nil, fmt.Errorf("tool call %d has no function name", i)
		}
		calls = append(calls, ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return calls, nil
}

// StringArg extracts a string field from a JSON arguments payload. A
// payload that is not a JSON object is returned whole for the "input" key,
// which keeps simple tools usable with bare-string arguments.
func StringArg(arguments, key string) string {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
		if key == "input" {
			return arguments
		}
		return ""
	}
	if v, ok := parsed[key].(string); ok {
		return v
	}
	return ""
}
