package content

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoActiveContent is returned when no eligible topics or questions exist.
var ErrNoActiveContent = errors.New("no active content")

// ErrNoPreviousVersion is returned when rolling back a curriculum that
// replaced nothing.
var ErrNoPreviousVersion = errors.New("no previous version")

// NoContentError describes the query that produced no content.
type NoContentError struct {
	GradeLevel int
	Subject    string
	TopicID    string
}

func (e *NoContentError) Error() string {
	switch {
	case e.TopicID != "":
		return fmt.Sprintf("no eligible questions for topic %q", e.TopicID)
	case e.Subject != "":
		return fmt.Sprintf("no curriculum for grade %d %s", e.GradeLevel, e.Subject)
	default:
		return "no eligible content"
	}
}

func (e *NoContentError) Unwrap() error { return ErrNoActiveContent }

// QuestionQuery narrows GetQuestionsForTopic.
type QuestionQuery struct {
	Count int

	// Difficulty, when set, orders candidates by distance from it.
	Difficulty *int

	// AdaptiveDifficulty returns the widest pool ordered by distance so the
	// caller can apply its own adaptive selection. Without it only questions
	// within one level of Difficulty are returned when any exist.
	AdaptiveDifficulty bool

	ExcludeIDs []string
}

// Source is the curriculum and question store the engine reads from.
type Source interface {
	GetCurriculum(ctx context.Context, gradeLevel int, subject string) (*Curriculum, error)
	GetQuestionsForTopic(ctx context.Context, topicID string, q QuestionQuery) ([]Question, error)
	GetLearningPath(ctx context.Context, gradeLevel int, subject string, progress Progress) ([]PathStep, error)
}

// IntPtr is a convenience for QuestionQuery.Difficulty.
func IntPtr(v int) *int { return &v }
