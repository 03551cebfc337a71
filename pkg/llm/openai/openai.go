// Package openai implements llm.Provider on top of the OpenAI chat
// completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mizukiho/termagent/pkg/llm"
)

// Provider streams chat completions from an OpenAI-compatible endpoint.
type Provider struct {
	client openai.Client
	model  openai.ChatModel
}

// New builds a Provider for the given credentials and model. baseURL may be
// empty to use the default endpoint.
func New(apiKey, baseURL, model string) *Provider {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &Provider{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(model),
	}
}

// StreamCompletion submits the conversation and streams the response. Text
// deltas are emitted as they arrive; the tool-call batch is emitted on the
// final chunk once the accumulator has assembled complete argument payloads.
func (p *Provider) StreamCompletion(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	params, err := buildParams(p.model, req)
	if err != nil {
		return nil, err
	}

	out := make(chan llm.Chunk)
	go func() {
		defer close(out)

		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		acc := openai.ChatCompletionAccumulator{}
		for stream.Next() {
			chunk := stream.Current()
			if !acc.AddChunk(chunk) {
				out <- llm.Chunk{Err: errors.New("failed to accumulate stream")}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				out <- llm.Chunk{Text: delta}
			}
		}
		if err := stream.Err(); err != nil {
			out <- llm.Chunk{Err: err}
			return
		}
		if len(acc.Choices) == 0 {
			out <- llm.Chunk{Err: errors.New("empty streamed completion choices")}
			return
		}

		choice := acc.Choices[0]
		final := llm.Chunk{FinishReason: string(choice.FinishReason)}
		for _, call := range choice.Message.ToolCalls {
			final.ToolCalls = append(final.ToolCalls, llm.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
		out <- final
	}()
	return out, nil
}

// buildParams converts a request into OpenAI chat completion parameters.
func buildParams(model openai.ChatModel, req llm.Request) (openai.ChatCompletionNewParams, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		param, err := toMessageParam(msg)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, param)
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature >= 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	for _, def := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(def.Parameters),
			},
		})
	}
	return params, nil
}

// toMessageParam converts one history turn into the OpenAI param union.
func toMessageParam(msg llm.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch msg.Role {
	case llm.RoleSystem:
		return openai.SystemMessage(msg.Content), nil
	case llm.RoleUser:
		return openai.UserMessage(msg.Content), nil
	case llm.RoleAssistant:
		if len(msg.ToolCalls) == 0 {
			return openai.AssistantMessage(msg.Content), nil
		}
		assistant := openai.ChatCompletionAssistantMessageParam{}
		if msg.Content != "" {
			assistant.Content.OfString = openai.String(msg.Content)
		}
		for _, call := range msg.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}, nil
	case llm.RoleTool:
		return openai.ToolMessage(msg.Content, msg.ToolCallID), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported message role: %q", msg.Role)
	}
}
