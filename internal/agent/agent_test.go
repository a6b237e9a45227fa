package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgtools/nexo/internal/llm"
	"github.com/mgtools/nexo/internal/tools"
)

// scriptedClient replays canned responses in order and records every request.
type scriptedClient struct {
	responses []*llm.Response
	err       error
	calls     [][]llm.Message
}

func (c *scriptedClient) Chat(ctx context.Context, messages []llm.Message, defs []llm.ToolDef) (*llm.Response, error) {
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.calls) > len(c.responses) {
		return &llm.Response{Content: "sem mais respostas"}, nil
	}
	return c.responses[len(c.calls)-1], nil
}

func newTestRegistry() *tools.Registry {
	r := tools.NewRegistry()
	r.Register(&tools.Tool{
		Name: "get_dado",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"valor": 42}, nil
		},
	})
	return r
}

func TestAnalyzeDirectAnswer(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{Content: "Resposta direta."},
	}}
	a := New(client, newTestRegistry())

	result, err := a.Analyze(context.Background(), "pergunta simples")
	require.NoError(t, err)

	assert.Equal(t, "Resposta direta.", result.Response)
	assert.Empty(t, result.Data)
	require.Len(t, client.calls, 1)

	// System prompt first, then the user query.
	assert.Equal(t, llm.RoleSystem, client.calls[0][0].Role)
	assert.Equal(t, llm.RoleUser, client.calls[0][1].Role)
	assert.Equal(t, "pergunta simples", client.calls[0][1].Content)
}

func TestAnalyzeToolRoundTrip(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "get_dado", Arguments: "{}"}}},
		{Content: "O valor é 42."},
	}}
	a := New(client, newTestRegistry())

	result, err := a.Analyze(context.Background(), "qual o valor?")
	require.NoError(t, err)

	assert.Equal(t, "O valor é 42.", result.Response)

	// The tool output is collected under its name.
	dado, ok := result.Data["get_dado"].(map[string]any)
	require.True(t, ok, "tool data missing: %v", result.Data)
	assert.Equal(t, 42, dado["valor"])

	// Second request carries the assistant turn and the tool result.
	require.Len(t, client.calls, 2)
	second := client.calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, llm.RoleAssistant, second[2].Role)
	require.Len(t, second[2].ToolCalls, 1)
	assert.Equal(t, llm.RoleTool, second[3].Role)
	assert.Equal(t, "call-1", second[3].ToolCallID)
	assert.Contains(t, second[3].Content, "42")
}

func TestAnalyzeUnknownToolBecomesData(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "nao_existe", Arguments: "{}"}}},
		{Content: "Essa ferramenta não existe."},
	}}
	a := New(client, newTestRegistry())

	result, err := a.Analyze(context.Background(), "teste")
	require.NoError(t, err)

	payload, ok := result.Data["nao_existe"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ferramenta nao_existe não encontrada", payload["error"])
}

func TestAnalyzeIterationBudget(t *testing.T) {
	// The model keeps requesting tools forever.
	loop := &llm.Response{ToolCalls: []llm.ToolCall{{ID: "c", Name: "get_dado", Arguments: "{}"}}}
	client := &scriptedClient{responses: []*llm.Response{loop, loop, loop}}
	a := New(client, newTestRegistry(), WithMaxIterations(3))

	result, err := a.Analyze(context.Background(), "loop")
	require.NoError(t, err)

	assert.Equal(t, Fallback, result.Response)
	assert.Len(t, client.calls, 3)
	// Data gathered before the budget ran out is still returned.
	assert.Contains(t, result.Data, "get_dado")
}

func TestAnalyzeBudgetKeepsLastContent(t *testing.T) {
	// Every round carries both prose and a tool request; when the budget
	// runs out, the prose from the final round is the answer.
	partial := &llm.Response{
		Content:   "Análise parcial com base nos dados coletados.",
		ToolCalls: []llm.ToolCall{{ID: "c", Name: "get_dado", Arguments: "{}"}},
	}
	client := &scriptedClient{responses: []*llm.Response{partial, partial, partial}}
	a := New(client, newTestRegistry(), WithMaxIterations(3))

	result, err := a.Analyze(context.Background(), "loop com conteúdo")
	require.NoError(t, err)

	assert.Equal(t, "Análise parcial com base nos dados coletados.", result.Response)
	assert.Contains(t, result.Data, "get_dado")
	assert.Len(t, client.calls, 3)
}

func TestAnalyzeFinalEmptyContentUsesEarlierContent(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{Content: "Buscando dados.", ToolCalls: []llm.ToolCall{{ID: "c", Name: "get_dado", Arguments: "{}"}}},
		{Content: ""},
	}}
	a := New(client, newTestRegistry())

	result, err := a.Analyze(context.Background(), "pergunta")
	require.NoError(t, err)
	assert.Equal(t, "Buscando dados.", result.Response)
}

func TestAnalyzeEmptyContentFallsBack(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: ""}}}
	a := New(client, newTestRegistry())

	result, err := a.Analyze(context.Background(), "pergunta")
	require.NoError(t, err)
	assert.Equal(t, Fallback, result.Response)
}

func TestAnalyzeModelErrorIsFatal(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("connection refused")}
	a := New(client, newTestRegistry())

	_, err := a.Analyze(context.Background(), "pergunta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model request")
}

func TestAnalyzeLastToolResultWins(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "contador", Arguments: "{}"}}},
		{ToolCalls: []llm.ToolCall{{ID: "c2", Name: "contador", Arguments: "{}"}}},
		{Content: "feito"},
	}}

	n := 0
	r := tools.NewRegistry()
	r.Register(&tools.Tool{
		Name: "contador",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			n++
			return n, nil
		},
	})

	result, err := New(client, r).Analyze(context.Background(), "conte duas vezes")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Data["contador"])
}

func TestOptionsIgnoreZeroValues(t *testing.T) {
	a := New(&scriptedClient{}, newTestRegistry(),
		WithSystemPrompt(""),
		WithMaxIterations(0),
	)

	assert.Equal(t, DefaultSystemPrompt, a.systemPrompt)
	assert.Equal(t, DefaultMaxIterations, a.maxIterations)
}
