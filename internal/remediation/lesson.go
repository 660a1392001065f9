package remediation

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/tutorloop/internal/catalog"
	"github.com/abhisek/tutorloop/internal/llm"
)

// LessonConfig holds lesson generation settings.
type LessonConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLessonConfig returns sensible defaults for lesson generation.
func DefaultLessonConfig() LessonConfig {
	return LessonConfig{
		MaxTokens:   512,
		Temperature: 0.5,
	}
}

// Lesson is the explanation shown before remediation practice.
type Lesson struct {
	Title         string `json:"title"`
	Explanation   string `json:"explanation"`
	WorkedExample string `json:"workedExample,omitempty"`

	// Generated is false when the lesson fell back to catalog text.
	Generated bool `json:"generated"`
}

// LessonInput holds the context for one lesson.
type LessonInput struct {
	Misconception *catalog.Misconception
	GradeLevel    int
	RecentErrors  []string
}

// LessonWriter produces explanations for misconceptions. Without a
// provider, or when generation fails, it falls back to catalog text.
type LessonWriter struct {
	provider llm.Provider
	cfg      LessonConfig
}

// NewLessonWriter creates a lesson writer. provider may be nil.
func NewLessonWriter(provider llm.Provider, cfg LessonConfig) *LessonWriter {
	return &LessonWriter{provider: provider, cfg: cfg}
}

type lessonOutput struct {
	Title         string `json:"title"`
	Explanation   string `json:"explanation"`
	WorkedExample string `json:"worked_example"`
}

// Write returns a lesson for the input. It never fails.
func (w *LessonWriter) Write(ctx context.Context, in LessonInput) Lesson {
	if w == nil || w.provider == nil {
		return cannedLesson(in.Misconception)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeLesson)
	resp, err := llm.Generate(ctx, w.provider, llm.Request{
		System: lessonSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildLessonUserMessage(in)},
		},
		Schema:      LessonSchema,
		MaxTokens:   w.cfg.MaxTokens,
		Temperature: w.cfg.Temperature,
	})
	if err != nil {
		return cannedLesson(in.Misconception)
	}

	var out lessonOutput
	if err := llm.ParseLoose(resp.Content, &out); err != nil || out.Explanation == "" {
		// Keep whatever the model said as the explanation.
		text := strings.TrimSpace(llm.Text(resp.Content))
		if text == "" {
			return cannedLesson(in.Misconception)
		}
		return Lesson{Title: in.Misconception.Name, Explanation: text, Generated: true}
	}
	if out.Title == "" {
		out.Title = in.Misconception.Name
	}
	return Lesson{
		Title:         out.Title,
		Explanation:   out.Explanation,
		WorkedExample: out.WorkedExample,
		Generated:     true,
	}
}

func cannedLesson(m *catalog.Misconception) Lesson {
	var b strings.Builder
	b.WriteString(m.Description)
	if len(m.CommonErrors) > 0 {
		b.WriteString("\n\nWatch out for:")
		for _, e := range m.CommonErrors {
			fmt.Fprintf(&b, "\n- %s", e)
		}
	}
	return Lesson{Title: m.Name, Explanation: b.String()}
}

const lessonSystemPrompt = `You are a patient, encouraging K-12 tutor. A student keeps making the same kind of mistake and needs a short, clear lesson that corrects the underlying misconception.`

func buildLessonUserMessage(in LessonInput) string {
	m := in.Misconception
	var b strings.Builder
	fmt.Fprintf(&b, "Grade: %d\n", in.GradeLevel)
	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	fmt.Fprintf(&b, "Misconception: %s\n", m.Name)
	fmt.Fprintf(&b, "Description: %s\n", m.Description)

	b.WriteString("\nRecent Errors:\n")
	if len(in.RecentErrors) == 0 {
		b.WriteString("None\n")
	}
	for _, e := range in.RecentErrors {
		fmt.Fprintf(&b, "- %s\n", e)
	}

	if len(m.Strategies) > 0 {
		b.WriteString("\nTeaching strategies that work:\n")
		for _, s := range m.Strategies {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	b.WriteString(`
Instructions:
1. Explain the correct idea in 3-5 sentences a student at this grade would understand. Address the errors shown above directly.
2. Show one complete worked example with numbered steps, on a problem similar to (but different from) the ones the student got wrong.
3. Use plain ASCII text. No LaTeX.`)
	return b.String()
}

// LessonSchema defines the JSON schema for remediation lessons.
var LessonSchema = &llm.Schema{
	Name:        "remediation-lesson",
	Description: "A short lesson correcting a misconception, with a worked example",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short title for the lesson (3-8 words)",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Clear, age-appropriate explanation of the concept (3-5 sentences)",
			},
			"worked_example": map[string]any{
				"type":        "string",
				"description": "Step-by-step solution to a similar problem, with numbered steps",
			},
		},
		"required":             []any{"title", "explanation", "worked_example"},
		"additionalProperties": false,
	},
}
