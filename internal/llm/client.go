// Package llm provides a provider-neutral representation of the drafting
// agent exchange, plus Anthropic and OpenAI implementations.
package llm

import "context"

// Role identifies the author of a message in the exchange history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCall is one tool invocation requested by the model. ID ties the
// eventual result back to this request.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]string
}

// ToolResult is the output of one executed tool call, tagged with the
// identifier of the call it answers.
type ToolResult struct {
	CallID  string
	Content string
}

// Message is one entry in the exchange history. Exactly one of the content
// fields is meaningful per role: a user seed carries Text, an assistant
// tool-use turn carries Text plus ToolCalls, a tool-results turn carries
// ToolResults.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// TurnKind discriminates the outcome of one completion.
type TurnKind int

const (
	// TurnFinal means the model produced its answer; Text may still be
	// empty, which callers treat as "no draft produced".
	TurnFinal TurnKind = iota
	// TurnToolUse means the model wants tools executed before it can
	// finish.
	TurnToolUse
)

// Turn is the result of one request/response exchange with the model.
type Turn struct {
	Kind      TurnKind
	Text      string
	ToolCalls []ToolCall
}

// ToolDefinition describes a capability offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Schema      map[string]any
}

// CompletionRequest is one request to the model.
type CompletionRequest struct {
	Model     string
	System    string
	Messages  []Message
	Tools     []ToolDefinition
	MaxTokens int
}

// Client is the interface for drafting-model providers.
type Client interface {
	// Complete sends one completion request and returns the model's turn.
	Complete(ctx context.Context, req *CompletionRequest) (*Turn, error)

	// Name returns the provider name.
	Name() string
}

// StringSchema builds an input schema with the given required string
// parameters, in the shape both providers accept.
func StringSchema(params map[string]string, required ...string) map[string]any {
	props := make(map[string]any, len(params))
	for name, desc := range params {
		props[name] = map[string]any{
			"type":        "string",
			"description": desc,
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
