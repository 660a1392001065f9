// Package session runs live practice sessions. An Orchestrator owns at
// most one live session per student, picks questions through one of four
// strategies, scores answers and hands the results to the diagnosis,
// spaced repetition, mastery, remediation and engagement components.
package session

import (
	"slices"
	"time"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/engagement"
	"github.com/abhisek/tutorloop/internal/mastery"
)

// Type is the kind of session a student asked for.
type Type string

const (
	TypePractice    Type = "practice"
	TypeReview      Type = "review"
	TypeRemediation Type = "remediation"
	TypeAssessment  Type = "assessment"
)

// Strategy is how a session's questions were chosen.
type Strategy string

const (
	StrategyReview      Strategy = "review"
	StrategyRemediation Strategy = "remediation"
	StrategyTopic       Strategy = "topic"
	StrategyAdaptive    Strategy = "adaptive"
)

// Status is a session's lifecycle state.
type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in-progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Item is one question of a session. CardID is set when the question came
// from a review card.
type Item struct {
	Question content.Question `json:"question"`
	CardID   string           `json:"cardId,omitempty"`
}

// Response is one answered question. Responses are never modified.
type Response struct {
	QuestionID       string    `json:"questionId"`
	TopicID          string    `json:"topicId"`
	Answer           string    `json:"answer"`
	Correct          bool      `json:"correct"`
	TimeSpentSeconds float64   `json:"timeSpentSeconds"`
	Confidence       float64   `json:"confidence"`
	HintsUsed        int       `json:"hintsUsed"`
	Timestamp        time.Time `json:"timestamp"`
}

// Performance is the running score of a session. Accuracy is Correct/Total
// as a fraction.
type Performance struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

func (p *Performance) record(correct bool) {
	p.Total++
	if correct {
		p.Correct++
	}
	p.Accuracy = float64(p.Correct) / float64(p.Total)
}

// Session is a student's live session.
type Session struct {
	ID           string      `json:"id"`
	StudentID    string      `json:"studentId"`
	Type         Type        `json:"type"`
	Strategy     Strategy    `json:"strategy"`
	Subject      string      `json:"subject"`
	GradeLevel   int         `json:"gradeLevel"`
	TopicID      string      `json:"topicId,omitempty"`
	PlanID       string      `json:"planId,omitempty"`
	Items        []Item      `json:"items"`
	CurrentIndex int         `json:"currentIndex"`
	Responses    []Response  `json:"responses"`
	Performance  Performance `json:"performance"`
	HintsUsed    int         `json:"hintsUsed"`
	HelpRequests int         `json:"helpRequests"`
	Status       Status      `json:"status"`
	Paused       bool        `json:"paused"`

	// StartTime is the logical start: it moves forward by every pause so
	// that elapsed time excludes paused intervals.
	StartTime time.Time `json:"startTime"`
	PausedAt  time.Time `json:"pausedAt,omitzero"`
	CreatedAt time.Time `json:"createdAt"`

	questionStartedAt time.Time
	questionHints     int
	newlyMastered     []string
}

// Finished reports whether every question has been answered.
func (s *Session) Finished() bool {
	return s.CurrentIndex == len(s.Items)
}

// Current returns the item awaiting an answer, or nil when finished.
func (s *Session) Current() *Item {
	if s.Finished() {
		return nil
	}
	return &s.Items[s.CurrentIndex]
}

// Elapsed returns the active time of the session at now.
func (s *Session) Elapsed(now time.Time) time.Duration {
	end := now
	if s.Paused {
		end = s.PausedAt
	}
	return max(end.Sub(s.StartTime), 0)
}

// AverageDifficulty is the mean difficulty of the session's questions.
func (s *Session) AverageDifficulty() float64 {
	if len(s.Items) == 0 {
		return 0
	}
	sum := 0
	for _, it := range s.Items {
		sum += it.Question.Difficulty
	}
	return float64(sum) / float64(len(s.Items))
}

func (s *Session) clone() *Session {
	cp := *s
	cp.Items = slices.Clone(s.Items)
	cp.Responses = slices.Clone(s.Responses)
	cp.newlyMastered = slices.Clone(s.newlyMastered)
	return &cp
}

// QuestionView is a question as shown to the student, without its answer.
type QuestionView struct {
	ID         string               `json:"id"`
	TopicID    string               `json:"topicId"`
	Difficulty int                  `json:"difficulty"`
	Prompt     string               `json:"prompt"`
	Type       content.QuestionType `json:"type"`
	Choices    []string             `json:"choices,omitempty"`
	Review     bool                 `json:"review,omitempty"`
}

// CurrentView is the student-facing view of the current question, nil
// once every question is answered.
func (s *Session) CurrentView() *QuestionView {
	return viewOf(s.Current())
}

func viewOf(it *Item) *QuestionView {
	if it == nil {
		return nil
	}
	return &QuestionView{
		ID:         it.Question.ID,
		TopicID:    it.Question.TopicID,
		Difficulty: it.Question.Difficulty,
		Prompt:     it.Question.Prompt,
		Type:       it.Question.Type,
		Choices:    slices.Clone(it.Question.Choices),
		Review:     it.CardID != "",
	}
}

// AnswerResult is the outcome of SubmitAnswer.
type AnswerResult struct {
	Correct       bool          `json:"correct"`
	CorrectAnswer string        `json:"correctAnswer"`
	Explanation   string        `json:"explanation,omitempty"`
	NextQuestion  *QuestionView `json:"nextQuestion"`
	CurrentIndex  int           `json:"currentIndex"`
	Performance   Performance   `json:"performance"`
	Finished      bool          `json:"finished"`

	Diagnosis         *diagnosis.Result        `json:"diagnosis,omitempty"`
	ReviewQuality     *int                     `json:"reviewQuality,omitempty"`
	MasteryTransition *mastery.StateTransition `json:"masteryTransition,omitempty"`
}

// Summary is the outcome of CompleteSession.
type Summary struct {
	Session           *Session           `json:"session"`
	Duration          time.Duration      `json:"duration"`
	Accuracy          float64            `json:"accuracy"` // percent, 0-100
	AverageDifficulty float64            `json:"averageDifficulty"`
	CurrentDifficulty int                `json:"currentDifficulty"`
	NewlyMastered     []string           `json:"newlyMastered,omitempty"`
	PromotedCards     int                `json:"promotedCards"`
	Awards            []engagement.Award `json:"awards,omitempty"`
}
