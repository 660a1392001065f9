// Package llm is the generative content service behind hints, mistake
// diagnosis, remediation lessons and curriculum refinement. Every provider
// is optional: callers degrade to canned content when Generate fails.
package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Provider is one generative backend, or a decorator around one.
type Provider interface {
	// Generate runs a single completion. When req.Schema is set the
	// returned Content is JSON that satisfies it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, e.g. "claude-haiku-4-5".
	ModelID() string

	// Name is the provider recorded on request events, e.g. "anthropic".
	Name() string
}

type Request struct {
	System string

	// Messages is the conversation so far. Every tutoring prompt is a
	// single user turn.
	Messages []Message

	// Schema, when set, asks the provider for structured output and makes
	// Generate reject replies that do not match it. Without a schema the
	// reply is free text and may not be JSON at all.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON shape a structured request must come back in. Declare
// schemas as package-level pointers; the compiled validator is cached on
// the value and must not be copied.
type Schema struct {
	// Name is the kebab-case schema name sent to providers that take one,
	// e.g. "curriculum-refinement".
	Name string

	// Description tells the model what the object represents.
	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any

	once       sync.Once
	validator  *jsonschema.Schema
	compileErr error
}

type Response struct {
	// Content is validated JSON for structured requests. For free-text
	// requests read it with Text or ParseLoose.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request, which may be
	// more specific than the configured one.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
