// Package llm defines a provider-neutral chat interface and its OpenAI
// implementation. The agent loop talks to the Client interface so tests can
// substitute a scripted model.
package llm

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a chat conversation.
type Message struct {
	Role    string
	Content string

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall

	// ToolCallID links a tool result message to the call that produced it.
	ToolCallID string
}

// ToolCall is a model request to execute one tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object
}

// ToolDef declares a callable tool to the model.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
}

// Response is the model's reply to one chat request. A reply carries either
// content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}
