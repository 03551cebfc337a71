// Package llm defines the provider abstraction for chat model backends.
//
// A provider wraps a remote chat completion API and exposes a streaming
// interface: the caller submits the full conversation history plus the tool
// definitions the model may invoke, and consumes a channel of Chunk values
// until the provider closes it.
package llm

import "context"

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single turn in a conversation history.
type Message struct {
	// Role is one of RoleSystem, RoleUser, RoleAssistant, or RoleTool.
	Role string

	// Content is the text body of the turn.
	Content string

	// ToolCalls holds tool invocations requested by an assistant turn.
	ToolCalls []ToolCall

	// ToolCallID identifies which tool call a RoleTool turn responds to.
	ToolCallID string
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned identifier for this call.
	ID string

	// Name is the tool name.
	Name string

	// Arguments is the JSON-encoded argument bundle.
	Arguments string
}

// ToolDefinition describes a tool offered to the model.
type ToolDefinition struct {
	Name        string
	Description string

	// Parameters is the JSON Schema for the tool's arguments.
	Parameters map[string]any
}

// Request carries everything the model needs to produce a response.
type Request struct {
	// Messages is the ordered conversation history.
	Messages []Message

	// Tools is the set of tool definitions offered to the model.
	Tools []ToolDefinition

	// MaxTokens caps the number of completion tokens generated.
	MaxTokens int

	// Temperature controls output randomness. Low values lean deterministic;
	// zero requests greedy decoding. A negative value omits the setting.
	Temperature float64
}

// Chunk is a fragment emitted by a streaming completion. A chunk may carry
// incremental text, a batch of tool calls, a finish signal, or any
// combination. A chunk with Err set terminates the stream abnormally; no
// further chunks follow it.
type Chunk struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
	Err          error
}

// Provider is the abstraction over a chat model backend.
type Provider interface {
	// StreamCompletion sends req to the model and returns a channel emitting
	// Chunk values as they arrive. The implementation closes the channel when
	// generation finishes or fails; callers must drain it. The error return is
	// non-nil only for failures that prevent the stream from starting.
	StreamCompletion(ctx context.Context, req Request) (<-chan Chunk, error)
}
