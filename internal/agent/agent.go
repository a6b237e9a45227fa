// Package agent runs the bounded tool-calling loop that turns a natural
// language question into an analysis backed by real data.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgtools/nexo/internal/llm"
	"github.com/mgtools/nexo/internal/tools"
)

// Fallback is returned when the model produces no text within the iteration
// budget.
const Fallback = "Não foi possível processar a análise."

// DefaultMaxIterations caps model round-trips per query.
const DefaultMaxIterations = 5

// Result is a completed analysis: the model's prose plus the raw data every
// executed tool produced, keyed by tool name.
type Result struct {
	Response string         `json:"response"`
	Data     map[string]any `json:"data"`
}

// Agent orchestrates conversations between the model and the tool registry.
type Agent struct {
	client        llm.Client
	registry      *tools.Registry
	systemPrompt  string
	maxIterations int
	logger        *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithSystemPrompt replaces the built-in persona.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		if prompt != "" {
			a.systemPrompt = prompt
		}
	}
}

// WithMaxIterations sets the model round-trip budget.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// New creates an Agent over a model client and a tool registry.
func New(client llm.Client, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		client:        client,
		registry:      registry,
		systemPrompt:  DefaultSystemPrompt,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze answers one user query. The model may request tools; each result
// is fed back and also collected into Result.Data under the tool's name, a
// later call to the same tool overwriting the earlier entry. The loop stops
// as soon as the model answers without requesting tools, or after the
// iteration budget, whichever comes first; either way the response is the
// content the model most recently produced, or the fixed fallback when it
// never produced any. A model transport error aborts the whole analysis.
func (a *Agent) Analyze(ctx context.Context, query string) (Result, error) {
	start := time.Now()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.systemPrompt},
		{Role: llm.RoleUser, Content: query},
	}
	defs := a.registry.Defs()
	collected := make(map[string]any)
	lastContent := ""

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		resp, err := a.client.Chat(ctx, messages, defs)
		if err != nil {
			return Result{}, fmt.Errorf("model request: %w", err)
		}
		if resp.Content != "" {
			lastContent = resp.Content
		}

		if len(resp.ToolCalls) == 0 {
			content := lastContent
			if content == "" {
				content = Fallback
			}
			a.logger.Info("analysis complete",
				"iterations", iteration+1,
				"tools_used", len(collected),
				"duration", time.Since(start))
			return Result{Response: content, Data: collected}, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			a.logger.Debug("executing tool", "tool", call.Name, "iteration", iteration+1)
			result := a.registry.Execute(ctx, call.Name, call.Arguments)
			collected[call.Name] = result

			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(fmt.Sprintf(`{"error": %q}`, err.Error()))
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    string(payload),
				ToolCallID: call.ID,
			})
		}
	}

	a.logger.Warn("analysis hit iteration budget",
		"max_iterations", a.maxIterations,
		"tools_used", len(collected),
		"duration", time.Since(start))

	content := lastContent
	if content == "" {
		content = Fallback
	}
	return Result{Response: content, Data: collected}, nil
}
