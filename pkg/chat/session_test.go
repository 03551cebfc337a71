// Tests for the conversation loop.
package chat

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mizukiho/termagent/pkg/llm"
	"github.com/mizukiho/termagent/pkg/tools"
)

// fakeProvider replays scripted chunk streams, one per request.
type fakeProvider struct {
	scripts  [][]llm.Chunk
	requests []llm.Request
	startErr error
}

func (f *fakeProvider) StreamCompletion(_ context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	f.requests = append(f.requests, req)
	if f.startErr != nil {
		return nil, f.startErr
	}

	var script []llm.Chunk
	if len(f.scripts) > 0 {
		script = f.scripts[0]
		f.scripts = f.scripts[1:]
	}

	out := make(chan llm.Chunk, len(script))
	for _, chunk := range script {
		out <- chunk
	}
	close(out)
	return out, nil
}

func newTestRegistry() *tools.Registry {
	return tools.NewRegistry(tools.Options{
		Confirmer: tools.ConfirmerFunc(func(string) bool { return true }),
	})
}

// TestSendStreamsTextToOutput echoes chunk text as it arrives and appends
// the assistant turn on completion.
func TestSendStreamsTextToOutput(t *testing.T) {
	provider := &fakeProvider{scripts: [][]llm.Chunk{{
		{Text: "Hello, "},
		{Text: "world."},
		{FinishReason: "stop"},
	}}}

	var out bytes.Buffer
	s := NewSession(provider, newTestRegistry(), Options{Out: &out, SystemPrompt: "sys"})

	if err := s.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if out.String() != "Hello, world." {
		t.Fatalf("unexpected streamed output: %q", out.String())
	}

	history := s.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 turns (system, user, assistant), got %d", len(history))
	}
	last := history[2]
	if last.Role != llm.RoleAssistant || last.Content != "Hello, world." {
		t.Fatalf("unexpected assistant turn: %+v", last)
	}
}

// TestSendDispatchesToolBatchInOrder verifies a two-chunk stream whose
// second chunk carries two tool calls yields exactly two ordered tool turns.
func TestSendDispatchesToolBatchInOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	if err := os.WriteFile(first, []byte("alpha"), 0o644); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := os.WriteFile(second, []byte("beta"), 0o644); err != nil {
		t.Fatalf("write second: %v", err)
	}

	provider := &fakeProvider{scripts: [][]llm.Chunk{{
		{Text: "Reading both files."},
		{
			FinishReason: "tool_calls",
			ToolCalls: []llm.ToolCall{
				{ID: "call-1", Name: "read_file", Arguments: `{"path":` + quote(first) + `}`},
				{ID: "call-2", Name: "read_file", Arguments: `{"path":` + quote(second) + `}`},
			},
		},
	}}}

	s := NewSession(provider, newTestRegistry(), Options{})
	if err := s.Send(context.Background(), "read them"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	history := s.History()
	// user, assistant, tool, tool
	if len(history) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(history))
	}
	if history[2].Role != llm.RoleTool || history[3].Role != llm.RoleTool {
		t.Fatalf("expected two tool turns, got %+v", history[2:])
	}
	if history[2].ToolCallID != "call-1" || history[3].ToolCallID != "call-2" {
		t.Fatalf("tool turns out of order: %q then %q", history[2].ToolCallID, history[3].ToolCallID)
	}
	if !strings.Contains(history[2].Content, "alpha") || !strings.Contains(history[3].Content, "beta") {
		t.Fatalf("tool results not matched to calls: %q / %q", history[2].Content, history[3].Content)
	}
}

// TestSendKeepsOnlyLatestToolBatch replaces an earlier non-empty batch with
// a later one instead of accumulating.
func TestSendKeepsOnlyLatestToolBatch(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.txt")
	if err := os.WriteFile(kept, []byte("kept"), 0o644); err != nil {
		t.Fatalf("write kept: %v", err)
	}

	provider := &fakeProvider{scripts: [][]llm.Chunk{{
		{ToolCalls: []llm.ToolCall{
			{ID: "stale-1", Name: "read_file", Arguments: `{"path":"/stale/a.txt"}`},
		}},
		{ToolCalls: []llm.ToolCall{
			{ID: "live-1", Name: "read_file", Arguments: `{"path":` + quote(kept) + `}`},
		}},
	}}}

	s := NewSession(provider, newTestRegistry(), Options{})
	if err := s.Send(context.Background(), "go"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	history := s.History()
	// user, assistant, tool — the stale batch is dropped entirely
	if len(history) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(history))
	}
	if history[2].ToolCallID != "live-1" {
		t.Fatalf("expected latest batch only, got %q", history[2].ToolCallID)
	}
}

// TestSendRemoteErrorRollsBackUserTurn keeps history consistent after a
// failed request and leaves the session usable.
func TestSendRemoteErrorRollsBackUserTurn(t *testing.T) {
	provider := &fakeProvider{startErr: errors.New("connection refused")}
	s := NewSession(provider, newTestRegistry(), Options{SystemPrompt: "sys"})

	if err := s.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected remote error")
	}
	if got := len(s.History()); got != 1 {
		t.Fatalf("expected only the system turn after rollback, got %d", got)
	}
}

// TestSendMidStreamErrorRollsBack handles a malformed stream the same way.
func TestSendMidStreamErrorRollsBack(t *testing.T) {
	provider := &fakeProvider{scripts: [][]llm.Chunk{{
		{Text: "partial"},
		{Err: errors.New("stream reset")},
	}}}
	s := NewSession(provider, newTestRegistry(), Options{})

	if err := s.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected stream error")
	}
	if got := len(s.History()); got != 0 {
		t.Fatalf("expected empty history after rollback, got %d", got)
	}
}

// TestRunExitIssuesNoRequest terminates on "exit" without contacting the
// provider.
func TestRunExitIssuesNoRequest(t *testing.T) {
	provider := &fakeProvider{}
	var out bytes.Buffer
	s := NewSession(provider, newTestRegistry(), Options{Out: &out})

	in := bufio.NewReader(strings.NewReader("EXIT\n"))
	if err := s.Run(context.Background(), in, ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(provider.requests))
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Fatalf("missing farewell: %q", out.String())
	}
}

// TestRunInitialExitNeverPrompts closes before the first prompt.
func TestRunInitialExitNeverPrompts(t *testing.T) {
	provider := &fakeProvider{}
	var out bytes.Buffer
	s := NewSession(provider, newTestRegistry(), Options{Out: &out})

	in := bufio.NewReader(strings.NewReader(""))
	if err := s.Run(context.Background(), in, "exit"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(provider.requests))
	}
	if strings.Contains(out.String(), "> ") {
		t.Fatalf("prompt printed despite initial exit: %q", out.String())
	}
}

// TestRunInitialMessageProcessedFirst sends the initial message before
// reading interactive input.
func TestRunInitialMessageProcessedFirst(t *testing.T) {
	provider := &fakeProvider{scripts: [][]llm.Chunk{{
		{Text: "ack"},
		{FinishReason: "stop"},
	}}}
	var out bytes.Buffer
	s := NewSession(provider, newTestRegistry(), Options{Out: &out})

	in := bufio.NewReader(strings.NewReader("exit\n"))
	if err := s.Run(context.Background(), in, "first message"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(provider.requests))
	}
	messages := provider.requests[0].Messages
	if len(messages) == 0 || messages[len(messages)-1].Content != "first message" {
		t.Fatalf("initial message not sent: %+v", messages)
	}
}

// TestRunRemoteErrorKeepsSessionAlive reports the failure and continues to
// the next prompt instead of terminating.
func TestRunRemoteErrorKeepsSessionAlive(t *testing.T) {
	provider := &fakeProvider{startErr: errors.New("bad gateway")}
	var out bytes.Buffer
	s := NewSession(provider, newTestRegistry(), Options{Out: &out})

	in := bufio.NewReader(strings.NewReader("hello\nexit\n"))
	if err := s.Run(context.Background(), in, ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Error: bad gateway") {
		t.Fatalf("error not reported: %q", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Fatalf("session did not continue to exit: %q", out.String())
	}
}

// TestSendUsesGenerationConfig passes the bounded length and temperature.
func TestSendUsesGenerationConfig(t *testing.T) {
	provider := &fakeProvider{scripts: [][]llm.Chunk{{{Text: "ok"}}}}
	s := NewSession(provider, newTestRegistry(), Options{MaxTokens: 512, Temperature: 0.1})

	if err := s.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	req := provider.requests[0]
	if req.MaxTokens != 512 || req.Temperature != 0.1 {
		t.Fatalf("unexpected generation config: %+v", req)
	}
	if len(req.Tools) == 0 {
		t.Fatal("tool definitions not offered to the model")
	}
}

// TestSendHonorsZeroTemperature passes an explicit zero through instead of
// coercing it back to the default.
func TestSendHonorsZeroTemperature(t *testing.T) {
	provider := &fakeProvider{scripts: [][]llm.Chunk{{{Text: "ok"}}}}
	s := NewSession(provider, newTestRegistry(), Options{Temperature: 0})

	if err := s.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := provider.requests[0].Temperature; got != 0 {
		t.Fatalf("expected temperature 0, got %v", got)
	}
}

// TestNewSessionDefaultsNegativeTemperature selects the default for a
// negative value.
func TestNewSessionDefaultsNegativeTemperature(t *testing.T) {
	provider := &fakeProvider{scripts: [][]llm.Chunk{{{Text: "ok"}}}}
	s := NewSession(provider, newTestRegistry(), Options{Temperature: -1})

	if err := s.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := provider.requests[0].Temperature; got != DefaultTemperature {
		t.Fatalf("expected default temperature, got %v", got)
	}
}

// quote JSON-encodes a string for embedding in argument payloads.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}
