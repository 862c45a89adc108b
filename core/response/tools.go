// Package response defines provider response types for the tools protocol.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/forge/core/protocol"
)

// TokenUsage reports token consumption for a provider request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolsResponse represents the response from a tools (function calling) protocol request.
// Contains function calls requested by the model along with metadata and token usage.
type ToolsResponse struct {
	ID      string `json:"id,omitempty"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// ParseTools parses a tools response from JSON bytes.
// Returns the parsed ToolsResponse or an error if parsing fails.
func ParseTools(body []byte) (*ToolsResponse, error) {
	var response ToolsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse tools response: %w", err)
	}
	return &response, nil
}

// NewToolsResponse builds a single-choice ToolsResponse from a final content
// string and an optional list of tool calls. Used by providers and test mocks
// to produce the canonical response shape.
func NewToolsResponse(model, content string, toolCalls []protocol.ToolCall) *ToolsResponse {
	resp := &ToolsResponse{Model: model}
	resp.Choices = make([]struct {
		Index   int `json:"index"`
		Message struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	}, 1)
	resp.Choices[0].Message.Role = string(protocol.RoleAssistant)
	resp.Choices[0].Message.Content = content
	resp.Choices[0].Message.ToolCalls = toolCalls
	if len(toolCalls) > 0 {
		resp.Choices[0].FinishReason = "tool_calls"
	} else {
		resp.Choices[0].FinishReason = "stop"
	}
	return resp
}
