package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	response     string
	responses    []string // Multiple responses for sequential calls
	callCount    int      // Track which response to return
	shouldError  bool
	errorMessage string
	toolCalls    []MockToolCall

	// Requests records every conversation passed to Chat.
	Requests [][]Message
}

// MockToolCall represents a simulated tool call for testing
type MockToolCall struct {
	Name      string
	Arguments string
}

// NewMockClient creates a new mock client
func NewMockClient(response string) *MockClient {
	return &MockClient{response: response}
}

// NewMockClientWithResponses creates a mock client with multiple responses
func NewMockClientWithResponses(responses []string) *MockClient {
	return &MockClient{responses: responses}
}

// NewMockClientWithError creates a mock client that returns an error
func NewMockClientWithError(errorMessage string) *MockClient {
	return &MockClient{shouldError: true, errorMessage: errorMessage}
}

// WithToolCalls configures the mock to emit a tool-call envelope on the
// first Chat call and regular responses afterwards.
func (m *MockClient) WithToolCalls(toolCalls ...MockToolCall) *MockClient {
	m.toolCalls = toolCalls
	return m
}

// Chat implements the Client interface.
func (m *MockClient) Chat(_ context.Context, messages []Message) (string, error) {
	m.Requests = append(m.Requests, messages)

	if m.shouldError {
		return "", fmt.Errorf("mock error: %s", m.errorMessage)
	}

	if len(m.toolCalls) > 0 && m.callCount == 0 {
		m.callCount++
		return m.toolCallEnvelope()
	}

	if len(m.responses) > 0 {
		response := m.responses[m.callCount%len(m.responses)]
		m.callCount++
		return response, nil
	}
	m.callCount++
	return m.response, nil
}

// toolCallEnvelope encodes the configured tool calls in the OpenAI
// functions format.
func (m *MockClient) toolCallEnvelope() (string, error) {
	calls := make([]map[string]any, 0, len(m.toolCalls))
	for _, call := range m.toolCalls {
		calls = append(calls, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":      call.Name,
				"arguments": call.Arguments,
			},
		})
	}
	out, err := json.Marshal(map[string]any{"tool_calls": calls})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CallCount returns how many Chat calls the mock has served.
func (m *MockClient) CallCount() int { return m.callCount }
