package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrServiceUnavailable reports that no generative provider is configured
// or the configured one cannot be reached. *ErrProviderUnavailable matches
// it with errors.Is.
var ErrServiceUnavailable = errors.New("generative content service unavailable")

// ErrMalformedContent matches every *MalformedContentError.
var ErrMalformedContent = errors.New("malformed generative content")

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

func (e *ErrRateLimit) Is(target error) bool { return target == ErrServiceUnavailable }

// ErrInvalidResponse means a structured request came back with content
// that does not satisfy its schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("response does not match schema: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable is any failure to get an answer out of the
// provider. Status is the HTTP status it replied with, or 0 when the
// request never got a reply.
type ErrProviderUnavailable struct {
	Status int
	Err    error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("provider unavailable (HTTP %d): %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	default:
		return "provider unavailable"
	}
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

func (e *ErrProviderUnavailable) Is(target error) bool { return target == ErrServiceUnavailable }

// Temporary reports whether sending the same request again could succeed.
// A 4xx other than a timeout means the request itself was rejected.
func (e *ErrProviderUnavailable) Temporary() bool {
	return e.Status == 0 || e.Status >= 500 || e.Status == http.StatusRequestTimeout
}

// ErrMaxTokensExceeded means a structured response was cut off at the
// token limit. Content holds the partial output.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "response truncated at max tokens"
}

// MalformedContentError is returned by ParseLoose when no JSON value can be
// recovered from a response. Raw holds the text so callers can fall back to
// a degraded record built from it.
type MalformedContentError struct {
	Raw string
	Err error
}

func (e *MalformedContentError) Error() string {
	return fmt.Sprintf("malformed generative content: %v", e.Err)
}

func (e *MalformedContentError) Unwrap() error { return e.Err }

func (e *MalformedContentError) Is(target error) bool { return target == ErrMalformedContent }

// statusError maps an SDK error carrying an HTTP status onto the package
// error kinds. header may be nil.
func statusError(status int, header http.Header, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: retryAfter(header, time.Now()), Err: err}
	}
	return &ErrProviderUnavailable{Status: status, Err: err}
}

// retryAfter reads a Retry-After header in either of its forms: delay
// seconds or an HTTP date.
func retryAfter(header http.Header, now time.Time) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), 0)
	}
	return 0
}
