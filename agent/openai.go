package agent

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tailored-agentic-units/forge/core/protocol"
	"github.com/tailored-agentic-units/forge/core/response"
)

const defaultModel = "gpt-4o-mini"

// openAIAgent speaks the OpenAI-compatible chat completions API with tool
// calling. Any endpoint implementing that API works via Config.BaseURL.
type openAIAgent struct {
	client  *openai.Client
	model   string
	options map[string]any
}

func newOpenAIAgent(cfg *Config) (*openAIAgent, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = defaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &openAIAgent{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		options: cfg.Options,
	}, nil
}

func (a *openAIAgent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: toChatMessages(messages),
		Tools:    toChatTools(tools),
	}

	applyOptions(&req, a.options)
	for _, o := range opts {
		applyOptions(&req, o)
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	msg := resp.Choices[0].Message
	out := response.NewToolsResponse(resp.Model, msg.Content, fromChatToolCalls(msg.ToolCalls))
	out.ID = resp.ID
	out.Created = resp.Created
	out.Usage = &response.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return out, nil
}

func toChatMessages(messages []protocol.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		cm := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, cm)
	}
	return out
}

func toChatTools(tools []protocol.Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromChatToolCalls(calls []openai.ToolCall) []protocol.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]protocol.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, protocol.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

func applyOptions(req *openai.ChatCompletionRequest, options map[string]any) {
	for key, value := range options {
		switch key {
		case "temperature":
			if v, ok := toFloat32(value); ok {
				req.Temperature = v
			}
		case "top_p":
			if v, ok := toFloat32(value); ok {
				req.TopP = v
			}
		case "max_tokens":
			if v, ok := value.(int); ok {
				req.MaxCompletionTokens = v
			} else if v, ok := value.(float64); ok {
				req.MaxCompletionTokens = int(v)
			}
		}
	}
}

func toFloat32(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	}
	return 0, false
}
