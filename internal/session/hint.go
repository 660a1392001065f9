package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/llm"
)

// Hint is help for the current question.
type Hint struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	Level      int    `json:"level"`

	// Generated is false when the hint came from the question's own hints
	// or the generic fallback.
	Generated bool `json:"generated"`
}

const hintMaxTokens = 256

// HintSchema is the response format for generated hints.
var HintSchema = &llm.Schema{
	Name:        "question-hint",
	Description: "A single hint that nudges the student toward the answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "One or two sentences. Never state the answer.",
			},
		},
		"required": []any{"hint"},
	},
}

const hintSystemPrompt = `You are a patient K-12 tutor. Give the student a short hint for the question they are working on. Never reveal the answer. Each further hint may be a little more specific than the last.`

type hintOutput struct {
	Hint string `json:"hint"`
}

// RequestHint returns a hint for the current question and counts the help
// request on the session. It never fails because of the generative
// service: without one, or when it errors, the question's own hints and
// then a generic hint are used.
func (o *Orchestrator) RequestHint(ctx context.Context, studentID string) (*Hint, error) {
	unlock := o.locks.Lock(studentID)
	defer unlock()

	s, ok := o.sessions.Get(studentID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if s.Paused {
		return nil, ErrSessionPaused
	}
	item := s.Current()
	if item == nil {
		return nil, ErrSessionFinished
	}
	s.HelpRequests++
	s.questionHints++
	level := s.questionHints
	q := item.Question

	hint := &Hint{QuestionID: q.ID, Level: level}
	text, err := o.generateHint(ctx, s, &q, level)
	if err == nil {
		hint.Text, hint.Generated = text, true
		return hint, nil
	}
	if o.provider != nil {
		o.logger.Debug("hint generation failed", zap.String("question", q.ID), zap.Error(err))
	}
	hint.Text = cannedHint(&q, level)
	return hint, nil
}

func (o *Orchestrator) generateHint(ctx context.Context, s *Session, q *content.Question, level int) (string, error) {
	ctx = llm.WithStudent(llm.WithPurpose(ctx, llm.PurposeHint), s.StudentID)
	resp, err := llm.Generate(ctx, o.provider, llm.Request{
		System: hintSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildHintMessage(s, q, level)},
		},
		Schema:      HintSchema,
		MaxTokens:   hintMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}

	var out hintOutput
	if err := llm.ParseLoose(resp.Content, &out); err == nil && strings.TrimSpace(out.Hint) != "" {
		return strings.TrimSpace(out.Hint), nil
	}
	text := strings.TrimSpace(llm.Text(resp.Content))
	if text == "" {
		return "", llm.ErrMalformedContent
	}
	return text, nil
}

func buildHintMessage(s *Session, q *content.Question, level int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade: %d\n", s.GradeLevel)
	fmt.Fprintf(&b, "Subject: %s\n", s.Subject)
	fmt.Fprintf(&b, "Question: %s\n", q.Prompt)
	if len(q.Choices) > 0 {
		fmt.Fprintf(&b, "Choices: %s\n", strings.Join(q.Choices, ", "))
	}
	fmt.Fprintf(&b, "Hint number: %d\n", level)
	if level > 1 {
		b.WriteString("The student already had a hint and is still stuck.\n")
	}
	return b.String()
}

// cannedHint returns the question's level-th hint, repeating the last one,
// or a generic hint for the question type.
func cannedHint(q *content.Question, level int) string {
	if n := len(q.Hints); n > 0 {
		return q.Hints[min(level, n)-1]
	}
	switch q.Type {
	case content.TypeMultipleChoice:
		return "Rule out the choices you know are wrong, then compare the ones left."
	case content.TypeTrueFalse:
		return "Try to find one example that breaks the statement."
	case content.TypeNumeric:
		return "Write down what you know, then work one step at a time."
	default:
		return "Read the question again and underline what it is asking for."
	}
}
