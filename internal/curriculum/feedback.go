package curriculum

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/store"
)

// ErrInvalidRating is returned for feedback ratings outside 1-5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// FeedbackInput is a rating of a curriculum, optionally of one topic.
type FeedbackInput struct {
	GradeLevel int
	Subject    string
	TopicID    string
	StudentID  string
	Rating     int
	Comment    string
}

// SubmitFeedback stores a curriculum rating.
func (e *Engine) SubmitFeedback(ctx context.Context, in FeedbackInput) (*store.FeedbackRecord, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := e.versions.GetCurriculum(ctx, in.GradeLevel, in.Subject); err != nil {
		return nil, err
	}
	rec := store.FeedbackRecord{
		ID:         uuid.New().String(),
		GradeLevel: in.GradeLevel,
		Subject:    in.Subject,
		TopicID:    in.TopicID,
		StudentID:  in.StudentID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.feedback.AppendFeedback(ctx, rec); err != nil {
		return nil, fmt.Errorf("append feedback: %w", err)
	}
	return &rec, nil
}

// FeedbackSummary summarizes every rating of a curriculum.
func (e *Engine) FeedbackSummary(ctx context.Context, gradeLevel int, subject string) (FeedbackSummary, error) {
	fb, err := e.feedback.ListFeedback(ctx, gradeLevel, subject)
	if err != nil {
		return FeedbackSummary{}, fmt.Errorf("list feedback: %w", err)
	}
	return SummarizeFeedback(fb), nil
}

// History returns every version of a curriculum, newest first.
func (e *Engine) History(ctx context.Context, gradeLevel int, subject string) ([]*content.Curriculum, error) {
	return e.versions.History(ctx, gradeLevel, subject)
}

// Rollback restores the topics of the version the current one replaced,
// published as a new version.
func (e *Engine) Rollback(ctx context.Context, gradeLevel int, subject string) (*content.Curriculum, error) {
	c, err := e.versions.Rollback(ctx, gradeLevel, subject)
	if err != nil {
		return nil, err
	}
	e.logger.Info("curriculum rolled back",
		zap.Int("grade", gradeLevel),
		zap.String("subject", subject),
		zap.String("version", c.Version),
		zap.String("restored", c.OptimizationReason))
	return c, nil
}

// Quality scores the current version of a curriculum.
func (e *Engine) Quality(ctx context.Context, gradeLevel int, subject string) (*QualityReport, error) {
	c, err := e.versions.GetCurriculum(ctx, gradeLevel, subject)
	if err != nil {
		return nil, err
	}
	questions := make(map[string][]content.Question, len(c.Topics))
	for _, t := range c.Topics {
		qs, err := e.versions.GetQuestionsForTopic(ctx, t.ID, content.QuestionQuery{})
		if err != nil && !errors.Is(err, content.ErrNoActiveContent) {
			return nil, fmt.Errorf("questions for %s: %w", t.ID, err)
		}
		questions[t.ID] = qs
	}
	report := QualityEvaluator{}.Evaluate(c, questions)
	return &report, nil
}
