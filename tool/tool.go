// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (APIs, lookups, side-effects) with schema
// validated arguments and consistent error handling.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/deskmesh/internal/util"
)

// SideEffect classifies what a tool does to the outside world. Descriptors
// use it when auditing which capabilities an agent has been handed.
type SideEffect string

const (
	// SideEffectRead marks tools that only read state.
	SideEffectRead SideEffect = "read"
	// SideEffectWrite marks tools that mutate durable state.
	SideEffectWrite SideEffect = "write"
	// SideEffectExternalSend marks tools that emit messages outside the system.
	SideEffectExternalSend SideEffect = "external-send"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description provided to the model
	// so it understands when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// SideEffect returns the declared side-effect class of the tool.
	SideEffect() SideEffect

	// Call executes the tool with structured arguments parsed from JSON.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
