package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// sentChat is the part of an outgoing chat request the tests inspect.
type sentChat struct {
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type       string `json:"type"`
		JSONSchema *struct {
			Name string `json:"name"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

// openaiStub answers every request with status and body, and decodes the
// request into *seen when seen is non-nil.
func openaiStub(t *testing.T, status int, body any, seen *sentChat) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_FreeText(t *testing.T) {
	var seen sentChat
	p := openaiStub(t, http.StatusOK, chatCompletion("Start at -3 and move 8 steps right.", "stop"), &seen)

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a patient K-12 tutor.",
		Messages:  []Message{{Role: RoleUser, Content: "Give a hint for -3 + 8."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Text(resp.Content) != "Start at -3 and move 8 steps right." {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" || resp.StopReason != StopEnd {
		t.Fatalf("model/stop = %s/%s", resp.Model, resp.StopReason)
	}
	if resp.Usage.TotalTokens != 65 {
		t.Fatalf("usage = %+v", resp.Usage)
	}

	if len(seen.Messages) != 2 || seen.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("system prompt not sent first: %+v", seen.Messages)
	}
	if seen.ResponseFormat != nil {
		t.Fatal("free-text request must not set a response format")
	}
}

func TestOpenAIProvider_StructuredSendsSchema(t *testing.T) {
	var seen sentChat
	p := openaiStub(t, http.StatusOK, chatCompletion(`{"misconception_id":"sign-error","confidence":0.8}`, "stop"), &seen)

	if _, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Diagnose this mistake."}},
		MaxTokens: 128,
		Schema:    testSchema(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.ResponseFormat == nil || seen.ResponseFormat.Type != "json_schema" || seen.ResponseFormat.JSONSchema == nil {
		t.Fatal("expected a json_schema response format")
	}
	if seen.ResponseFormat.JSONSchema.Name != "mistake-diagnosis" {
		t.Fatalf("schema name = %q", seen.ResponseFormat.JSONSchema.Name)
	}
}

func TestOpenAIProvider_TruncatedStructured(t *testing.T) {
	p := openaiStub(t, http.StatusOK, chatCompletion(`{"misconception_id":"sign-`, "length"), nil)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Diagnose this mistake."}},
		MaxTokens: 16,
		Schema:    testSchema(),
	})
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	apiError := func(kind, msg string) map[string]any {
		return map[string]any{"error": map[string]any{"type": kind, "message": msg}}
	}
	tests := []struct {
		name      string
		status    int
		rateLimit bool
		temporary bool
	}{
		{"rate limited", http.StatusTooManyRequests, true, true},
		{"server error", http.StatusInternalServerError, false, true},
		{"unauthorized", http.StatusUnauthorized, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openaiStub(t, tt.status, apiError("error", tt.name), nil)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			if !errors.Is(err, ErrServiceUnavailable) {
				t.Fatalf("expected ErrServiceUnavailable, got %T (%v)", err, err)
			}
			var rl *ErrRateLimit
			if errors.As(err, &rl) != tt.rateLimit {
				t.Fatalf("rate limit mismatch: %v", err)
			}
			if got := policyFor(err) != noRetry; got != tt.temporary {
				t.Fatalf("retryable = %v, want %v", got, tt.temporary)
			}
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o", BaseURL: "https://llm-gateway.example/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" || p.Name() != ProviderOpenAI {
		t.Fatalf("identity = %s/%s", p.Name(), p.ModelID())
	}
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}); err == nil {
		t.Fatal("expected error without API key")
	}
}
