package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2,
	}
}

var okReply = MockResponse{Content: json.RawMessage(`{"hint":"Count on from the bigger number."}`)}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection refused")}}
}

func TestRetry_Policy(t *testing.T) {
	invalid := MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`{}`), Err: errors.New("missing hint")}}

	tests := []struct {
		name      string
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt succeeds", []MockResponse{okReply}, false, 1},
		{"transient then success", []MockResponse{down(), okReply}, false, 2},
		{"gives up after max attempts", []MockResponse{down(), down(), down(), okReply}, true, 3},
		{"truncation is final", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okReply}, true, 1},
		{"schema violation resampled once", []MockResponse{invalid, invalid, okReply}, true, 2},
		{"schema violation then conforming", []MockResponse{invalid, okReply}, false, 2},
		{"client error is final", []MockResponse{{Err: &ErrProviderUnavailable{Status: 400, Err: errors.New("bad request")}}, okReply}, true, 1},
		{"server error retried", []MockResponse{{Err: &ErrProviderUnavailable{Status: 503, Err: errors.New("overloaded")}}, okReply}, false, 2},
		{"rate limit retried", []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, okReply}, false, 2},
		{"cancelled is final", []MockResponse{{Err: context.Canceled}, okReply}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			resp, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && string(resp.Content) != string(okReply.Content) {
				t.Fatalf("content = %s", resp.Content)
			}
			if got := mock.CallCount(); got != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	mock := NewMockProvider(down(), down(), okReply)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}
	_, err := WithRetry(mock, slow).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_AlwaysSendsOnce(t *testing.T) {
	mock := NewMockProvider(down(), okReply)
	p := WithRetry(mock, RetryConfig{})

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected the single attempt's error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
	if p.Name() != ProviderMock || p.ModelID() != "mock" {
		t.Fatalf("identity not delegated: %s/%s", p.Name(), p.ModelID())
	}
}

func TestRetry_DelayIsBounded(t *testing.T) {
	r := &RetryProvider{config: fastRetry()}
	for attempt := 1; attempt <= 10; attempt++ {
		if d := r.delay(attempt, errors.New("x")); d < 0 || d > 12*time.Millisecond {
			t.Fatalf("attempt %d: delay %s outside [0, MaxWait+20%%]", attempt, d)
		}
	}
}

func TestRetry_DelayHonorsRetryAfter(t *testing.T) {
	r := &RetryProvider{config: fastRetry()}
	if d := r.delay(1, &ErrRateLimit{RetryAfter: 3 * time.Second}); d != 3*time.Second {
		t.Fatalf("delay = %s, want 3s", d)
	}
}
