package diagnosis

import "github.com/abhisek/tutorloop/internal/llm"

// DiagnosisSchema is the reply shape for generative mistake diagnosis.
var DiagnosisSchema = &llm.Schema{
	Name:        "mistake-diagnosis",
	Description: "Which known misconception, if any, explains a wrong answer",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"misconception_id", "confidence", "reasoning"},
		"properties": map[string]any{
			"misconception_id": map[string]any{
				"type":        []any{"string", "null"},
				"description": "Id from the supplied list, or null",
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "One sentence",
			},
		},
	},
}
