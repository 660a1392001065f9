package curriculum

import "github.com/abhisek/tutorloop/internal/llm"

var topicProperties = map[string]any{
	"id":                        map[string]any{"type": "string"},
	"title":                     map[string]any{"type": "string"},
	"description":               map[string]any{"type": "string"},
	"difficulty":                map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
	"expected_duration_minutes": map[string]any{"type": "integer", "minimum": 1},
	"order":                     map[string]any{"type": "integer"},
	"objectives": map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	},
}

// RefinementSchema defines the JSON schema for curriculum refinements.
var RefinementSchema = &llm.Schema{
	Name:        "curriculum-refinement",
	Description: "Proposed changes to a curriculum based on student performance",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{
				"type":        "string",
				"description": "One or two sentences explaining the changes",
			},
			"topic_updates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": topicProperties,
					"required":   []any{"id"},
				},
			},
			"new_topics": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": mergeProps(topicProperties, map[string]any{
						"prerequisites": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					}),
					"required": []any{"id", "title", "difficulty"},
				},
			},
			"deprecated_topics": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"reason", "topic_updates", "new_topics", "deprecated_topics"},
	},
}

func mergeProps(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
