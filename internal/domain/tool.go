package domain

import (
	"context"
	"encoding/json"
)

// Tool result statuses as fed back to the model.
const (
	ToolStatusSuccess = "success"
	ToolStatusError   = "error"
)

// ToolSchema describes a tool for the LLM function-calling protocol.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall represents an LLM's request to invoke a tool. The handler never
// fabricates one; IDs are opaque and unique within a turn.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the outcome of executing a tool. Its JSON encoding is what
// the model sees in the correlated tool message.
type ToolResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SuccessResult returns a success-status result with the given message.
func SuccessResult(message string) ToolResult {
	return ToolResult{Status: ToolStatusSuccess, Message: message}
}

// ErrorResult returns an error-status result with the given message.
func ErrorResult(message string) ToolResult {
	return ToolResult{Status: ToolStatusError, Message: message}
}

// Tool is the interface every tool must implement. Execute never fails:
// unparseable arguments are replaced with an empty set and side-effect
// failures are swallowed by the tool's collaborators, so a tool call can
// never abort a conversation turn.
type Tool interface {
	Name() string
	Description() string
	Schema() ToolSchema
	Execute(ctx context.Context, args json.RawMessage) ToolResult
}

// ToolDispatcher abstracts tool dispatch for the turn handler. Dispatch of
// an unregistered name yields an error-status result, not an error.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call ToolCall) ToolResult
	Schemas() []ToolSchema
}
