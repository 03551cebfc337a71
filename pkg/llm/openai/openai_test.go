package openai

import (
	"testing"

	"github.com/mizukiho/termagent/pkg/llm"
)

func TestBuildParamsConvertsHistoryAndTools(t *testing.T) {
	params, err := buildParams("test-model", llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "sys"},
			{Role: llm.RoleUser, Content: "hi"},
			{Role: llm.RoleAssistant, Content: "calling", ToolCalls: []llm.ToolCall{
				{ID: "call-1", Name: "read_file", Arguments: `{"path":"a.txt"}`},
			}},
			{Role: llm.RoleTool, Content: `{"status":"success"}`, ToolCallID: "call-1"},
		},
		Tools: []llm.ToolDefinition{
			{Name: "read_file", Description: "read", Parameters: map[string]any{"type": "object"}},
		},
		MaxTokens:   256,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if len(params.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(params.Messages))
	}
	if len(params.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(params.Tools))
	}
	if params.Messages[2].OfAssistant == nil || len(params.Messages[2].OfAssistant.ToolCalls) != 1 {
		t.Fatalf("assistant tool calls not converted: %+v", params.Messages[2])
	}
}

func TestBuildParamsTemperature(t *testing.T) {
	zero, err := buildParams("test-model", llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Temperature: 0,
	})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if !zero.Temperature.Valid() || zero.Temperature.Value != 0 {
		t.Fatalf("explicit zero temperature dropped: %+v", zero.Temperature)
	}

	omitted, err := buildParams("test-model", llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Temperature: -1,
	})
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if omitted.Temperature.Valid() {
		t.Fatalf("negative temperature should be omitted: %+v", omitted.Temperature)
	}
}

func TestBuildParamsRejectsUnknownRole(t *testing.T) {
	_, err := buildParams("test-model", llm.Request{
		Messages: []llm.Message{{Role: "narrator", Content: "bad"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}
