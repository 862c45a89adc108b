package agent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tailored-agentic-units/forge/agent"
	"github.com/tailored-agentic-units/forge/core/protocol"
)

// completionHandler returns a handler that replies with a canned chat
// completion and captures the decoded request for assertions.
func completionHandler(t *testing.T, reply string, captured *map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}
}

func newTestAgent(t *testing.T, baseURL string) agent.Agent {
	t.Helper()
	cfg := agent.Config{Provider: "openai", Model: "test-model", APIKey: "test-key", BaseURL: baseURL}
	a, err := agent.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestOpenAIAgent_FinalText(t *testing.T) {
	reply := `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "test-model",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "Built a todo app."},
			"finish_reason": "stop"
		}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20}
	}`

	var captured map[string]any
	srv := httptest.NewServer(completionHandler(t, reply, &captured))
	defer srv.Close()

	a := newTestAgent(t, srv.URL)
	resp, err := a.Tools(context.Background(),
		[]protocol.Message{protocol.NewMessage(protocol.RoleUser, "build a todo app")},
		[]protocol.Tool{{Name: "create_file", Description: "create", Parameters: map[string]any{"type": "object"}}},
	)
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	if got := resp.Choices[0].Message.Content; got != "Built a todo app." {
		t.Errorf("content = %q", got)
	}
	if len(resp.Choices[0].Message.ToolCalls) != 0 {
		t.Error("expected no tool calls")
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 20 {
		t.Errorf("usage = %+v", resp.Usage)
	}

	// The request must carry the conversation and the tool schemas.
	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 1 {
		t.Errorf("request carried %d messages, want 1", len(msgs))
	}
	tools, _ := captured["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("request carried %d tools, want 1", len(tools))
	}
}

func TestOpenAIAgent_ToolCalls(t *testing.T) {
	reply := `{
		"id": "chatcmpl-2",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "test-model",
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "create_file", "arguments": "{\"file_path\":\"app.tsx\",\"content\":\"x\"}"}
				}]
			},
			"finish_reason": "tool_calls"
		}]
	}`

	srv := httptest.NewServer(completionHandler(t, reply, nil))
	defer srv.Close()

	a := newTestAgent(t, srv.URL)
	resp, err := a.Tools(context.Background(),
		[]protocol.Message{protocol.NewMessage(protocol.RoleUser, "build")},
		nil,
	)
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(calls))
	}
	if calls[0].ID != "call_1" || calls[0].Name != "create_file" {
		t.Errorf("tool call = %+v", calls[0])
	}
}

func TestOpenAIAgent_ToolResultMessagesForwarded(t *testing.T) {
	reply := `{
		"model": "test-model",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "ok"},
			"finish_reason": "stop"
		}]
	}`

	var captured map[string]any
	srv := httptest.NewServer(completionHandler(t, reply, &captured))
	defer srv.Close()

	a := newTestAgent(t, srv.URL)
	_, err := a.Tools(context.Background(), []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "build"),
		{
			Role:      protocol.RoleAssistant,
			ToolCalls: []protocol.ToolCall{{ID: "call_1", Name: "create_file", Arguments: "{}"}},
		},
		{Role: protocol.RoleTool, Content: "Created file: app.tsx", ToolCallID: "call_1"},
	}, nil)
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("request carried %d messages, want 3", len(msgs))
	}

	toolMsg, _ := msgs[2].(map[string]any)
	if toolMsg["role"] != "tool" {
		t.Errorf("third message role = %v, want tool", toolMsg["role"])
	}
	if toolMsg["tool_call_id"] != "call_1" {
		t.Errorf("tool_call_id = %v, want call_1", toolMsg["tool_call_id"])
	}
}

func TestOpenAIAgent_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	a := newTestAgent(t, srv.URL)
	if _, err := a.Tools(context.Background(), nil, nil); err == nil {
		t.Error("expected error for upstream failure")
	}
}
