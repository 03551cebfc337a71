// Package tools implements the model-invokable tools: the executors, the
// registry that dispatches tool calls, and the confirmation gate that guards
// system-modifying operations.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mizukiho/termagent/pkg/llm"
	"github.com/mizukiho/termagent/pkg/logger"
)

// DefaultMaxReadBytes caps read_file output.
const DefaultMaxReadBytes int64 = 1024 * 1024

// Result statuses.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Result is the tagged outcome of a tool invocation: success with a payload,
// error with a message, or cancelled with a message.
type Result struct {
	Status  string
	Data    any
	Message string
}

// Success returns a success result carrying a payload.
func Success(data any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// Errorf returns an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Cancelled returns a cancelled result with a message.
func Cancelled(msg string) Result {
	return Result{Status: StatusCancelled, Message: msg}
}

// response is the wire shape appended to conversation history.
type response struct {
	Status  string `json:"status"`
	Tool    string `json:"tool,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Serialize encodes the result as JSON for insertion into the conversation.
func (r Result) Serialize(tool string) string {
	payload, err := json.Marshal(response{
		Status:  r.Status,
		Tool:    tool,
		Data:    r.Data,
		Message: r.Message,
	})
	if err != nil {
		return fmt.Sprintf(`{"status":%q,"tool":%q,"message":%q}`, StatusError, tool, err.Error())
	}
	return string(payload)
}

// Tool represents a tool that can be called by the model.
type Tool interface {
	// Name returns the tool name used by the model.
	Name() string
	// Definition returns the tool schema offered to the model.
	Definition() llm.ToolDefinition
	// Execute runs the tool with the given JSON-encoded arguments.
	Execute(argText string) Result
}

// ModifyingTool is implemented by tools whose execution changes system
// state. Prompt renders a human-readable preview of the intended effect for
// the confirmation gate.
type ModifyingTool interface {
	Tool
	Prompt(argText string) string
}

// Options configures a Registry.
type Options struct {
	// Confirmer gates system-modifying tools. When nil, every modifying
	// invocation is declined.
	Confirmer Confirmer

	MaxReadBytes int64
	Logger       logger.Logger
	Verbose      bool
}

// Registry holds the registered tools and dispatches tool calls.
type Registry struct {
	tools     map[string]Tool
	defs      []llm.ToolDefinition
	confirmer Confirmer
	log       logger.Logger
	verbose   bool
}

// NewRegistry creates a Registry with all built-in tools registered.
func NewRegistry(opts Options) *Registry {
	maxRead := opts.MaxReadBytes
	if maxRead <= 0 {
		maxRead = DefaultMaxReadBytes
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}

	r := &Registry{
		tools:     make(map[string]Tool),
		confirmer: opts.Confirmer,
		log:       log,
		verbose:   opts.Verbose,
	}
	r.Register(&ReadFileTool{maxBytes: maxRead})
	r.Register(&WriteFileTool{})
	r.Register(&ListFilesTool{})
	r.Register(&RunShellTool{})
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
	r.defs = append(r.defs, tool.Definition())
}

// Definitions returns all tool definitions for the model.
func (r *Registry) Definitions() []llm.ToolDefinition {
	return r.defs
}

// Dispatch resolves and runs a tool call. It never returns an error and
// never lets a panic escape; every failure becomes an error-status Result.
// System-modifying tools are routed through the confirmation gate first.
func (r *Registry) Dispatch(call llm.ToolCall) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Errorf("Failed to execute tool %s: %v", call.Name, p)
		}
	}()

	tool, ok := r.tools[call.Name]
	if !ok {
		return Errorf("Tool %s not found", call.Name)
	}

	logger.Debug(r.verbose, r.log, "dispatching tool", map[string]any{
		"tool":      call.Name,
		"call_id":   call.ID,
		"arg_bytes": len(call.Arguments),
	})

	if modifying, ok := tool.(ModifyingTool); ok {
		if r.confirmer == nil || !r.confirmer.Confirm(modifying.Prompt(call.Arguments)) {
			logger.Debug(r.verbose, r.log, "tool declined by user", map[string]any{
				"tool": call.Name,
			})
			return Cancelled(fmt.Sprintf("%s operation cancelled by user", tool.Name()))
		}
	}

	res = tool.Execute(call.Arguments)
	logger.Debug(r.verbose, r.log, "tool completed", map[string]any{
		"tool":   call.Name,
		"status": res.Status,
	})
	return res
}

// decodeArgs unmarshals tool arguments, returning an error result on
// malformed input. Executors call it before touching the OS.
func decodeArgs(name, argText string, v any) *Result {
	if err := json.Unmarshal([]byte(argText), v); err != nil {
		res := Errorf("Failed to execute tool %s: %v", name, err)
		return &res
	}
	return nil
}
