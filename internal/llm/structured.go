package llm

import "encoding/json"

// Normalized stop reasons reported on Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// completion is one provider reply reduced to what every backend reports.
type completion struct {
	text  string
	stop  string
	usage Usage
	model string
}

func newUsage(input, output int) Usage {
	return Usage{InputTokens: input, OutputTokens: output, TotalTokens: input + output}
}

// finish builds the Response for req. Free-text requests pass through as
// they came. Structured requests must not be truncated, are unwrapped from
// any fence or prose the model added, and must satisfy the schema.
func (c completion) finish(req Request) (*Response, error) {
	content := json.RawMessage(c.text)
	if req.Schema != nil {
		if c.stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if extracted, ok := extractJSON(c.text); ok {
			content = extracted
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	return &Response{
		Content:    content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: c.stop,
	}, nil
}
