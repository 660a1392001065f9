package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

type hintPayload struct {
	Hint string `json:"hint"`
}

func TestText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"json string", `"Think about the sign."`, "Think about the sign."},
		{"raw text", "  Think about the sign.\n", "Think about the sign."},
		{"object", `{"hint":"x"}`, `{"hint":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(json.RawMessage(tt.content)); got != tt.want {
				t.Fatalf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLoose(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain json", `{"hint":"Add the tens first."}`},
		{"fenced block", "Here you go:\n```json\n{\"hint\":\"Add the tens first.\"}\n```\nGood luck!"},
		{"prose around object", `Sure! {"hint":"Add the tens first."} Let me know.`},
		{"json string wrapping object", `"{\"hint\":\"Add the tens first.\"}"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got hintPayload
			if err := ParseLoose(json.RawMessage(tt.content), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Hint != "Add the tens first." {
				t.Fatalf("hint = %q", got.Hint)
			}
		})
	}
}

func TestParseLoose_Malformed(t *testing.T) {
	var got hintPayload
	err := ParseLoose(json.RawMessage("Try drawing a number line."), &got)
	if !errors.Is(err, ErrMalformedContent) {
		t.Fatalf("expected ErrMalformedContent, got %v", err)
	}
	var mc *MalformedContentError
	if !errors.As(err, &mc) {
		t.Fatalf("expected *MalformedContentError, got %T", err)
	}
	if mc.Raw != "Try drawing a number line." {
		t.Fatalf("raw = %q", mc.Raw)
	}
}

func TestParseLoose_Empty(t *testing.T) {
	var got hintPayload
	if err := ParseLoose(nil, &got); !errors.Is(err, ErrMalformedContent) {
		t.Fatalf("expected ErrMalformedContent, got %v", err)
	}
}
