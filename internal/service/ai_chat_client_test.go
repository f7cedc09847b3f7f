package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type chatRequestPayload struct {
	Model    string `json:"model"`
	Messages []struct {
		Role       string `json:"role"`
		Content    any    `json:"content"`
		ToolCallID string `json:"tool_call_id"`
	} `json:"messages"`
	Tools []struct {
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	} `json:"tools"`
}

func writeCompletion(t *testing.T, w http.ResponseWriter, message map[string]any) {
	t.Helper()
	finish := "stop"
	if _, ok := message["tool_calls"]; ok {
		finish = "tool_calls"
	}
	message["role"] = "assistant"
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       message,
			"finish_reason": finish,
		}},
	}); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestOpenAIExecutorRunReturnsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer gsk-test" {
			t.Errorf("unexpected authorization header %s", got)
		}

		var payload chatRequestPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if payload.Model != "test-model" {
			t.Errorf("unexpected model %s", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" || payload.Messages[1].Role != "user" {
			t.Errorf("unexpected messages %+v", payload.Messages)
		}
		if system, _ := payload.Messages[0].Content.(string); !strings.Contains(system, "- Polish the content") {
			t.Errorf("instructions not rendered into system message: %v", payload.Messages[0].Content)
		}

		writeCompletion(t, w, map[string]any{"content": "  Polished post  "})
	}))
	defer server.Close()

	executor, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "gsk-test", BaseURL: server.URL + "/v1", Model: "test-model"})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	got, err := executor.Run(context.Background(), formatterAgent(""), "Format this draft")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "Polished post" {
		t.Fatalf("expected trimmed content, got %q", got)
	}
}

func TestOpenAIExecutorRunsTools(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload chatRequestPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		switch atomic.AddInt32(&requests, 1) {
		case 1:
			if len(payload.Tools) != 1 || payload.Tools[0].Function.Name != "web_search" {
				t.Errorf("expected web_search tool, got %+v", payload.Tools)
			}
			writeCompletion(t, w, map[string]any{
				"content": "",
				"tool_calls": []map[string]any{{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      "web_search",
						"arguments": `{"query":"morning routines"}`,
					},
				}},
			})
		default:
			last := payload.Messages[len(payload.Messages)-1]
			if last.Role != "tool" || last.ToolCallID != "call_1" {
				t.Errorf("expected tool result message, got %+v", last)
			}
			if content, _ := last.Content.(string); content != "result for morning routines" {
				t.Errorf("unexpected tool output %v", last.Content)
			}
			writeCompletion(t, w, map[string]any{"content": "Summary of trends"})
		}
	}))
	defer server.Close()

	executor, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "gsk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	var gotQuery string
	tools := []Tool{{
		Name:        "web_search",
		Description: "search",
		Invoke: func(_ context.Context, query string) (string, error) {
			gotQuery = query
			return "result for " + query, nil
		},
	}}

	got, err := executor.Run(context.Background(), researchAgent("", tools), "Find trending insights on morning routines.")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "Summary of trends" {
		t.Fatalf("unexpected output %q", got)
	}
	if gotQuery != "morning routines" {
		t.Fatalf("unexpected tool query %q", gotQuery)
	}
	if atomic.LoadInt32(&requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", requests)
	}
}

func toolCallMessage(content string) map[string]any {
	return map[string]any{
		"content": content,
		"tool_calls": []map[string]any{{
			"id":   "call_loop",
			"type": "function",
			"function": map[string]any{
				"name":      "web_search",
				"arguments": `{"query":"again"}`,
			},
		}},
	}
}

func TestOpenAIExecutorBoundsToolRounds(t *testing.T) {
	var requests, withoutTools int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload chatRequestPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		atomic.AddInt32(&requests, 1)
		if len(payload.Tools) == 0 {
			atomic.AddInt32(&withoutTools, 1)
		}
		writeCompletion(t, w, toolCallMessage(""))
	}))
	defer server.Close()

	executor, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "gsk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	var invocations int32
	tools := []Tool{{
		Name: "web_search",
		Invoke: func(context.Context, string) (string, error) {
			atomic.AddInt32(&invocations, 1)
			return "more results", nil
		},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = executor.Run(ctx, researchAgent("", tools), "Find trends.")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion once tool rounds are exhausted, got %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != maxToolRounds+1 {
		t.Fatalf("expected %d requests, got %d", maxToolRounds+1, got)
	}
	if got := atomic.LoadInt32(&invocations); got != maxToolRounds {
		t.Fatalf("expected %d tool invocations, got %d", maxToolRounds, got)
	}
	if got := atomic.LoadInt32(&withoutTools); got != 1 {
		t.Fatalf("expected only the final request to omit tools, got %d", got)
	}
}

func TestOpenAIExecutorUsesContentWhenToolRoundsExhausted(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		writeCompletion(t, w, toolCallMessage("Partial summary"))
	}))
	defer server.Close()

	executor, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "gsk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	tools := []Tool{{
		Name:   "web_search",
		Invoke: func(context.Context, string) (string, error) { return "results", nil },
	}}
	got, err := executor.Run(context.Background(), researchAgent("", tools), "Find trends.")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "Partial summary" {
		t.Fatalf("unexpected output %q", got)
	}
	if got := atomic.LoadInt32(&requests); got != maxToolRounds+1 {
		t.Fatalf("expected %d requests, got %d", maxToolRounds+1, got)
	}
}

func TestOpenAIExecutorDoesNotRetry(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	executor, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "gsk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	if _, err := executor.Run(context.Background(), writerAgent(""), "Write"); err == nil {
		t.Fatalf("expected error from failing server")
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Fatalf("expected a single request, got %d", got)
	}
}

func TestOpenAIExecutorEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, map[string]any{"content": "   "})
	}))
	defer server.Close()

	executor, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "gsk-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	if _, err := executor.Run(context.Background(), writerAgent(""), "Write"); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestNewOpenAIExecutorRequiresKey(t *testing.T) {
	if _, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "  "}); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}

	executor, err := NewOpenAIExecutor(OpenAIExecutorConfig{APIKey: "gsk-test"})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	if executor.Model() != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected default model %q", executor.Model())
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("咖啡咖啡", 2); got != "咖啡…(truncated)" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateRunes("short", 10); got != "short" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
