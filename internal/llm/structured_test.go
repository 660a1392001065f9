package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestCompletionFinish_FreeTextPassesThrough(t *testing.T) {
	c := completion{text: "Try counting on from 7.", stop: StopMaxTokens, usage: newUsage(3, 4), model: "m"}
	resp, err := c.finish(Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Text(resp.Content) != "Try counting on from 7." {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.StopReason != StopMaxTokens {
		t.Fatalf("stop = %q", resp.StopReason)
	}
	if resp.Usage.TotalTokens != 7 {
		t.Fatalf("total tokens = %d", resp.Usage.TotalTokens)
	}
}

func TestCompletionFinish_UnwrapsFencedJSON(t *testing.T) {
	c := completion{
		text: "Here is the diagnosis:\n```json\n{\"misconception_id\":\"sign-error\",\"confidence\":0.7}\n```",
		stop: StopEnd,
	}
	resp, err := c.finish(Request{Schema: testSchema()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"misconception_id":"sign-error","confidence":0.7}` {
		t.Fatalf("content = %s", resp.Content)
	}
}

func TestCompletionFinish_SchemaViolation(t *testing.T) {
	c := completion{text: `{"misconception_id":"sign-error"}`, stop: StopEnd}
	_, err := c.finish(Request{Schema: testSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestStatusError(t *testing.T) {
	cause := errors.New("upstream")
	tests := []struct {
		status    int
		rateLimit bool
		temporary bool
	}{
		{http.StatusTooManyRequests, true, true},
		{http.StatusInternalServerError, false, true},
		{http.StatusBadGateway, false, true},
		{http.StatusRequestTimeout, false, true},
		{http.StatusBadRequest, false, false},
		{http.StatusUnauthorized, false, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := statusError(tt.status, nil, cause)
			if !errors.Is(err, ErrServiceUnavailable) {
				t.Fatalf("expected ErrServiceUnavailable match, got %v", err)
			}
			if !errors.Is(err, cause) {
				t.Fatal("expected cause to be wrapped")
			}
			var rl *ErrRateLimit
			if errors.As(err, &rl) != tt.rateLimit {
				t.Fatalf("rate limit = %v, want %v", !tt.rateLimit, tt.rateLimit)
			}
			if got := policyFor(err) != noRetry; got != tt.temporary {
				t.Fatalf("retryable = %v, want %v", got, tt.temporary)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "7", 7 * time.Second},
		{"negative seconds", "-3", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"date in the past", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			if got := retryAfter(h, now); got != tt.want {
				t.Fatalf("retryAfter(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestStatusError_ReadsRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "2")
	var rl *ErrRateLimit
	if !errors.As(statusError(http.StatusTooManyRequests, h, errors.New("slow down")), &rl) {
		t.Fatal("expected ErrRateLimit")
	}
	if rl.RetryAfter != 2*time.Second {
		t.Fatalf("RetryAfter = %s", rl.RetryAfter)
	}
}
