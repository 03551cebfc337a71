// Package chat implements the interactive conversation loop: it owns the
// conversation history, streams model responses to the terminal, and drives
// requested tool calls through the tool registry.
package chat

import (
	"context"
	"io"
	"strings"

	"github.com/mizukiho/termagent/pkg/llm"
	"github.com/mizukiho/termagent/pkg/logger"
	"github.com/mizukiho/termagent/pkg/tools"
)

// Default generation settings lean deterministic and bound output length.
const (
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.2
)

// Options configures a Session.
type Options struct {
	// Out receives streamed response text and prompts. Defaults to io.Discard.
	Out io.Writer

	// SystemPrompt seeds the history as the first turn when non-empty.
	SystemPrompt string

	MaxTokens int

	// Temperature is the sampling temperature. Zero is honored (greedy
	// decoding); a negative value selects the default.
	Temperature float64

	Logger  logger.Logger
	Verbose bool
}

// Session holds one conversation. The history is owned exclusively by the
// session, is append-only, and is discarded when the process exits.
type Session struct {
	provider llm.Provider
	registry *tools.Registry
	history  []llm.Message
	out      io.Writer

	maxTokens   int
	temperature float64
	log         logger.Logger
	verbose     bool
}

// NewSession creates a session over the given provider and tool registry.
func NewSession(provider llm.Provider, registry *tools.Registry, opts Options) *Session {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := opts.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}

	s := &Session{
		provider:    provider,
		registry:    registry,
		out:         out,
		maxTokens:   maxTokens,
		temperature: temperature,
		log:         log,
		verbose:     opts.Verbose,
	}
	if opts.SystemPrompt != "" {
		s.history = append(s.history, llm.Message{
			Role:    llm.RoleSystem,
			Content: opts.SystemPrompt,
		})
	}
	return s
}

// History returns a copy of the conversation history.
func (s *Session) History() []llm.Message {
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Send appends a user turn, streams the model response to the output writer,
// and dispatches any requested tool calls in order, appending each result as
// a tool turn. On a remote failure the user turn is rolled back so the
// history stays consistent, and the error is returned for the caller to
// report; the session remains usable.
func (s *Session) Send(ctx context.Context, input string) error {
	s.history = append(s.history, llm.Message{Role: llm.RoleUser, Content: input})

	logger.Debug(s.verbose, s.log, "sending request", map[string]any{
		"messages": len(s.history),
	})

	stream, err := s.provider.StreamCompletion(ctx, llm.Request{
		Messages:    s.history,
		Tools:       s.registry.Definitions(),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.history = s.history[:len(s.history)-1]
		return err
	}

	var text strings.Builder
	var pending []llm.ToolCall
	for chunk := range stream {
		if chunk.Err != nil {
			s.history = s.history[:len(s.history)-1]
			return chunk.Err
		}
		if chunk.Text != "" {
			_, _ = io.WriteString(s.out, chunk.Text)
			text.WriteString(chunk.Text)
		}
		// A non-empty batch replaces any earlier one; only the latest
		// non-empty batch survives the stream.
		if len(chunk.ToolCalls) > 0 {
			pending = chunk.ToolCalls
		}
	}

	s.history = append(s.history, llm.Message{
		Role:      llm.RoleAssistant,
		Content:   text.String(),
		ToolCalls: pending,
	})

	for _, call := range pending {
		result := s.registry.Dispatch(call)
		s.history = append(s.history, llm.Message{
			Role:       llm.RoleTool,
			Content:    result.Serialize(call.Name),
			ToolCallID: call.ID,
		})
	}

	logger.Debug(s.verbose, s.log, "turn complete", map[string]any{
		"response_bytes": text.Len(),
		"tool_calls":     len(pending),
	})
	return nil
}
