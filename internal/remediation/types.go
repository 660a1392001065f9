// Package remediation turns detected misconception patterns into ordered
// remediation plans: one session per pattern, each moving from explanation
// to guided and then independent practice.
package remediation

import (
	"time"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/diagnosis"
)

// MaxSessions caps the number of sessions in one plan. Only the most
// severe patterns are addressed.
const MaxSessions = 3

// ActivityType is the kind of a remediation activity.
type ActivityType string

const (
	ActivityExplanation         ActivityType = "explanation"
	ActivityGuidedPractice      ActivityType = "guided-practice"
	ActivityIndependentPractice ActivityType = "independent-practice"
)

// ActivityOrder is the fixed order of activities within a session.
var ActivityOrder = []ActivityType{
	ActivityExplanation,
	ActivityGuidedPractice,
	ActivityIndependentPractice,
}

// Activity is one step of a remediation session. Practice activities carry
// their questions; the explanation carries lesson text.
type Activity struct {
	Type             ActivityType       `json:"type"`
	Title            string             `json:"title"`
	Content          string             `json:"content,omitempty"`
	WorkedExample    string             `json:"workedExample,omitempty"`
	Questions        []content.Question `json:"questions,omitempty"`
	EstimatedMinutes int                `json:"estimatedMinutes"`
}

// QuestionIDs returns the ids of the activity's questions.
func (a *Activity) QuestionIDs() []string {
	ids := make([]string, len(a.Questions))
	for i, q := range a.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Session addresses one misconception.
type Session struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	MisconceptionID  string             `json:"misconceptionId"`
	Priority         diagnosis.Priority `json:"priority"`
	Objectives       []string           `json:"objectives"`
	Activities       []Activity         `json:"activities"`
	EstimatedMinutes int                `json:"estimatedDurationMinutes"`
}

// PracticeQuestions returns the questions of the session's practice
// activities in activity order.
func (s *Session) PracticeQuestions() []content.Question {
	var qs []content.Question
	for _, a := range s.Activities {
		qs = append(qs, a.Questions...)
	}
	return qs
}

// Progress tracks work done against a plan.
type Progress struct {
	CompletedSessions int `json:"completedSessions"`
	TotalCorrect      int `json:"totalCorrect"`
	TotalAttempts     int `json:"totalAttempts"`
}

// Accuracy returns the percentage of correct attempts, or 0 with no attempts.
func (p Progress) Accuracy() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.TotalCorrect) / float64(p.TotalAttempts) * 100
}

// Plan is an ordered list of remediation sessions for one student and subject.
type Plan struct {
	ID         string             `json:"id"`
	StudentID  string             `json:"studentId"`
	Subject    string             `json:"subject"`
	GradeLevel int                `json:"gradeLevel"`
	Sessions   []Session          `json:"sessions"`
	Priority   diagnosis.Priority `json:"priority"`
	Progress   Progress           `json:"progress"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// NextSession returns the first session not yet completed, or nil when the
// plan is finished.
func (p *Plan) NextSession() *Session {
	if p.Progress.CompletedSessions >= len(p.Sessions) {
		return nil
	}
	return &p.Sessions[p.Progress.CompletedSessions]
}

// TotalMinutes sums the estimated duration of every session.
func (p *Plan) TotalMinutes() int {
	total := 0
	for _, s := range p.Sessions {
		total += s.EstimatedMinutes
	}
	return total
}
