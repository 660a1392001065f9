package diagnosis

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/abhisek/tutorloop/internal/catalog"
	"github.com/abhisek/tutorloop/internal/llm"
)

const classifierLLM = "llm"

type DiagnoserConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultDiagnoserConfig keeps replies short and close to deterministic.
func DefaultDiagnoserConfig() DiagnoserConfig {
	return DiagnoserConfig{MaxTokens: 256, Temperature: 0.3}
}

// Diagnoser asks the generative service which catalogued misconception,
// if any, explains a wrong answer. It is the fallback for answers the
// rule classifier cannot attribute.
type Diagnoser struct {
	provider llm.Provider
	cfg      DiagnoserConfig
}

func NewDiagnoser(provider llm.Provider, cfg DiagnoserConfig) *Diagnoser {
	return &Diagnoser{provider: provider, cfg: cfg}
}

// DiagnosisRequest describes one wrong answer. Candidates bounds the ids
// the model may answer with.
type DiagnosisRequest struct {
	TopicID       string
	Subject       string
	GradeLevel    int
	CorrectAnswer string
	StudentAnswer string
	Candidates    []*catalog.Misconception
}

type diagnosisReply struct {
	MisconceptionID *string `json:"misconception_id"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
}

// Diagnose returns the model's classification. Provider failures are
// returned as errors; an unparseable reply is not an error and yields an
// unclassified result whose reasoning is the reply text.
func (d *Diagnoser) Diagnose(ctx context.Context, req *DiagnosisRequest) (*Result, error) {
	var prompt strings.Builder
	if err := diagnosisPrompt.Execute(&prompt, req); err != nil {
		return nil, fmt.Errorf("render diagnosis prompt: %w", err)
	}

	resp, err := llm.Generate(llm.WithPurpose(ctx, llm.PurposeDiagnosis), d.provider, llm.Request{
		System:      diagnosisSystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt.String()}},
		Schema:      DiagnosisSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("diagnose mistake: %w", err)
	}

	result := &Result{Category: CategoryUnclassified, ClassifierName: classifierLLM}
	var reply diagnosisReply
	if err := llm.ParseLoose(resp.Content, &reply); err != nil {
		result.Reasoning = llm.Text(resp.Content)
		return result, nil
	}
	result.Confidence = reply.Confidence
	result.Reasoning = reply.Reasoning

	// An id outside the candidate list is a hallucination, not a match.
	if id := reply.MisconceptionID; id != nil && slices.ContainsFunc(req.Candidates, func(m *catalog.Misconception) bool {
		return m.ID == *id
	}) {
		result.Category = CategoryMisconception
		result.MisconceptionID = *id
	}
	return result, nil
}

const diagnosisSystem = `You diagnose K-12 student mistakes. Given one wrong answer and a list of known misconceptions, decide whether the mistake is an instance of one of them.

Answer with the id of the matching misconception, or null when none fits. Never answer with an id that is not in the list. Set confidence between 0 and 1. Give your reasoning in one sentence.`

var diagnosisPrompt = template.Must(template.New("diagnosis").Parse(
	`Grade {{.GradeLevel}} {{.Subject}}, topic {{.TopicID}}.
Expected answer: {{.CorrectAnswer}}
Student's answer: {{.StudentAnswer}}

Known misconceptions:
{{range .Candidates}}- {{.ID}}: {{.Description}}
{{end}}`))
