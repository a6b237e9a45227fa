// Package tools provides the registry of analysis functions the model can
// call during a query. Each tool wraps one store query and returns structured
// data; failures become data too, so the model can explain them instead of
// aborting the analysis.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mgtools/nexo/internal/llm"
)

// Handler executes a tool with decoded arguments.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is a callable function exposed to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema for the arguments object
	Handler     Handler
}

// Registry holds the available tools.
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Registering a duplicate name panics; tool sets are
// assembled once at startup.
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; exists {
		panic(fmt.Sprintf("tool %q registered twice", t.Name))
	}
	r.tools[t.Name] = t
}

// Defs returns the tool declarations for the model, in stable name order.
func (r *Registry) Defs() []llm.ToolDef {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]llm.ToolDef, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		defs = append(defs, llm.ToolDef{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return defs
}

// Execute runs the named tool with raw JSON arguments and always returns a
// result value. Unknown tools, bad arguments and handler failures come back
// as {"error": ...} so the caller can hand them to the model as data.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) any {
	t, ok := r.tools[name]
	if !ok {
		return map[string]any{"error": fmt.Sprintf("Ferramenta %s não encontrada", name)}
	}

	args := make(map[string]any)
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return map[string]any{"error": fmt.Sprintf("argumentos inválidos: %v", err)}
		}
	}

	result, err := t.Handler(ctx, args)
	if err != nil {
		slog.Error("tool execution failed", "tool", name, "error", err)
		return map[string]any{"error": err.Error()}
	}
	return result
}

// Argument accessors. Models send numbers as JSON floats and occasionally
// send the wrong scalar type; these coerce instead of failing the call.

func intArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
