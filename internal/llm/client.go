package llm

import "context"

// Client is a chat completion provider.
type Client interface {
	// Chat sends the conversation and the available tools to the model and
	// returns its reply. Implementations do not retry; a transport or
	// provider error is returned as-is.
	Chat(ctx context.Context, messages []Message, tools []ToolDef) (*Response, error)
}
