// Package model defines the normalized interface to the reasoning engine.
// Vendor adapters (anthropic, openai) translate the Request/Response shapes
// into provider wire formats so the agent loop never branches per vendor.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/deskmesh/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by the agent loop.
type Request struct {
	Instructions string           `json:"instructions"`
	Contents     []core.Content   `json:"contents"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the terminal output of one model invocation: either plain
// assistant text or one or more function call parts.
type Response struct {
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "tool_use", ...
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Responses are
// consumed as a scripted sequence, which makes multi-turn tool-calling loops
// deterministic: turn N of the loop receives scripted response N.
type MockModel struct {
	info     Info
	script   []Response
	requests []Request
	mu       sync.Mutex
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// EnqueueText scripts a terminal text response.
func (m *MockModel) EnqueueText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, Response{
		Content:      core.NewAssistantText(text),
		FinishReason: "stop",
	})
}

// EnqueueToolCall scripts a single function call response.
func (m *MockModel) EnqueueToolCall(id, name, arguments string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, Response{
		Content: core.Content{
			Role: "assistant",
			Parts: []core.Part{core.FunctionCallPart{
				FunctionCall: core.FunctionCall{ID: id, Name: name, Arguments: arguments},
			}},
		},
		FinishReason: "tool_use",
	})
}

// Requests returns a copy of all requests seen so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model by replaying the scripted responses in order.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		return nil, fmt.Errorf("mock model: no scripted response left")
	}

	resp := m.script[0]
	m.script = m.script[1:]

	return &resp, nil
}

// Info implements the Model interface.
func (m *MockModel) Info() Info { return m.info }
