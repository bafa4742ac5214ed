// Package tool implements the persona's function-calling tools and the
// registry that dispatches the model's tool calls to them.
package tool

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kaptinlin/jsonschema"

	"doppel-ai/internal/domain"
)

// Registry holds the fixed tool set for a persona. Registration order is
// preserved: Schemas() advertises tools to the model in the order they were
// registered, and callers rely on that being stable across turns.
type Registry struct {
	order   []string
	tools   map[string]domain.Tool
	schemas map[string]*jsonschema.Schema
	logger  *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:   make(map[string]domain.Tool),
		schemas: make(map[string]*jsonschema.Schema),
		logger:  logger,
	}
}

// Register adds a tool and compiles its parameter schema. A duplicate name
// or an uncompilable schema is a programming error surfaced at startup, not
// something to tolerate at dispatch time.
func (r *Registry) Register(t domain.Tool) error {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return domain.NewDomainError("Registry.Register", domain.ErrToolDuplicate, name)
	}

	var compiled *jsonschema.Schema
	if raw := t.Schema().Parameters; len(raw) > 0 && string(raw) != "null" {
		schema, err := jsonschema.NewCompiler().Compile(raw)
		if err != nil {
			return domain.WrapOp("Registry.Register: compile schema for "+name, err)
		}
		compiled = schema
	}

	r.order = append(r.order, name)
	r.tools[name] = t
	r.schemas[name] = compiled
	return nil
}

// Dispatch executes the named tool. An unknown name or a tool failure is
// reported to the model as an error-status result, never as a Go error: a
// bad tool call must not abort the conversation turn.
func (r *Registry) Dispatch(ctx context.Context, call domain.ToolCall) domain.ToolResult {
	t, ok := r.tools[call.Name]
	if !ok {
		r.logger.Warn("tool call for unregistered function", "tool", call.Name, "call_id", call.ID)
		return domain.ErrorResult("function not found")
	}

	if schema := r.schemas[call.Name]; schema != nil && len(call.Arguments) > 0 {
		var v any
		if err := json.Unmarshal(call.Arguments, &v); err == nil {
			if result := schema.Validate(v); !result.IsValid() {
				// executed anyway; tools substitute defaults for bad input
				r.logger.Warn("tool arguments failed schema validation",
					"tool", call.Name, "call_id", call.ID)
			}
		}
	}

	r.logger.Debug("dispatching tool call", "tool", call.Name, "call_id", call.ID)
	return t.Execute(ctx, call.Arguments)
}

// Schemas returns the registered tool schemas in registration order.
func (r *Registry) Schemas() []domain.ToolSchema {
	schemas := make([]domain.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Schema())
	}
	return schemas
}

var _ domain.ToolDispatcher = (*Registry)(nil)
