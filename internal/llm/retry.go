package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/tutorloop/internal/metrics"
)

// RetryProvider sends a request again after transient failures, backing
// off exponentially with jitter between attempts.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p with retries. A request is always sent at least once.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &RetryProvider{inner: p, config: cfg}
}

type retryPolicy int

const (
	noRetry retryPolicy = iota
	// resample covers schema violations: a second sample often conforms,
	// a third rarely does.
	resample
	backoffRetry
)

func policyFor(err error) retryPolicy {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return noRetry
	}
	var (
		truncated *ErrMaxTokensExceeded
		invalid   *ErrInvalidResponse
		down      *ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &truncated):
		return noRetry
	case errors.As(err, &invalid):
		return resample
	case errors.As(err, &down) && !down.Temporary():
		return noRetry
	}
	return backoffRetry
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resampled := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch policyFor(err) {
		case noRetry:
			return nil, err
		case resample:
			if resampled {
				return nil, err
			}
			resampled = true
		}
		if attempt >= r.config.MaxAttempts {
			return nil, err
		}

		metrics.LLMRetries.WithLabelValues(r.inner.Name()).Inc()
		timer := time.NewTimer(r.delay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Name() string { return r.inner.Name() }

// delay is the pause before attempt+1. A provider-supplied Retry-After
// wins over the computed backoff.
func (r *RetryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	base := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	base = math.Min(base, float64(r.config.MaxWait))
	// ±20% jitter
	return time.Duration(base * (0.8 + 0.4*rand.Float64()))
}
