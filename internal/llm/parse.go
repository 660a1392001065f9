package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")

// Text returns the response content as plain text. JSON string content is
// unquoted; anything else is returned as-is.
func Text(content json.RawMessage) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// ParseLoose decodes a model response into v, tolerating prose around the
// payload. It tries, in order: the content as JSON, the first fenced code
// block, and the outermost {...} span. When all fail it returns a
// *MalformedContentError carrying the raw text.
func ParseLoose(content json.RawMessage, v any) error {
	text := Text(content)

	var lastErr error
	for _, c := range jsonCandidates(text) {
		if err := json.Unmarshal([]byte(c), v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("empty response")
	}
	return &MalformedContentError{Raw: text, Err: lastErr}
}

// extractJSON returns the first candidate in text that is valid JSON.
func extractJSON(text string) (json.RawMessage, bool) {
	for _, c := range jsonCandidates(text) {
		if json.Valid([]byte(c)) {
			return json.RawMessage(c), true
		}
	}
	return nil, false
}

func jsonCandidates(text string) []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	add(text)
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		add(m[1])
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		add(text[start : end+1])
	}
	return out
}
