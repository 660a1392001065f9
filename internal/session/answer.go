package session

import (
	"context"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/spacedrep"
	"github.com/abhisek/tutorloop/internal/store"
)

// SubmitAnswer scores an answer to the current question and advances the
// session. Wrong answers are recorded and classified, review questions
// regrade their card and every answer updates the mastery tracker. Those
// side effects are logged on failure and never fail the answer.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, studentID, answer string, opts SubmitOptions) (*AnswerResult, error) {
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
	q := item.Question

	now := o.now().UTC()
	shown := opts.StartTime
	if shown.IsZero() || shown.After(now) {
		shown = s.questionStartedAt
	}
	timeSpent := max(now.Sub(shown), 0)
	confidence := min(max(opts.Confidence, 0), 1)
	correct := content.CheckQuestion(answer, &q)

	resp := Response{
		QuestionID:       q.ID,
		TopicID:          q.TopicID,
		Answer:           answer,
		Correct:          correct,
		TimeSpentSeconds: timeSpent.Seconds(),
		Confidence:       confidence,
		HintsUsed:        opts.HintsUsed + s.questionHints,
		Timestamp:        now,
	}
	s.Responses = append(s.Responses, resp)
	s.Performance.record(correct)
	s.HintsUsed += resp.HintsUsed
	s.Status = StatusInProgress
	metrics.Answers.WithLabelValues(strconv.FormatBool(correct)).Inc()

	result := &AnswerResult{
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}

	student, err := o.students.GetStudent(ctx, studentID)
	initial := 0
	if err == nil {
		initial = student.CurrentDifficulty
	}
	transition, state, err := o.mastery.RecordAttempt(ctx, studentID, q.TopicID, correct, q.Difficulty, initial)
	if err != nil {
		o.logger.Warn("record attempt failed", zap.String("student", studentID), zap.Error(err))
	} else if transition != nil {
		result.MasteryTransition = transition
		if transition.Mastered() && !slices.Contains(s.newlyMastered, q.TopicID) {
			s.newlyMastered = append(s.newlyMastered, q.TopicID)
		}
	}

	if !correct && o.diagnosis != nil {
		var accuracy float64
		if state != nil {
			// historical accuracy, excluding this attempt
			stats := state.Topic(q.TopicID)
			if stats.Attempts > 1 {
				accuracy = float64(stats.Correct) / float64(stats.Attempts-1)
			}
		}
		_, diag, err := o.diagnosis.RecordMistake(ctx, diagnosis.MistakeInput{
			MistakeRecord: store.MistakeRecord{
				StudentID:     studentID,
				QuestionID:    q.ID,
				TopicID:       q.TopicID,
				Subject:       s.Subject,
				GradeLevel:    s.GradeLevel,
				StudentAnswer: answer,
				CorrectAnswer: q.CorrectAnswer,
				Difficulty:    q.Difficulty,
				Timestamp:     now,
			},
			TimeSpent:     timeSpent,
			TopicAccuracy: accuracy,
		})
		if err != nil {
			o.logger.Warn("record mistake failed", zap.String("student", studentID), zap.Error(err))
		} else {
			result.Diagnosis = &diag
		}
	}

	if item.CardID != "" {
		quality := spacedrep.ComputeQuality(correct, confidence, timeSpent, q.ExpectedTime())
		_, err := o.scheduler.ReviewCard(ctx, item.CardID, spacedrep.ReviewInput{
			Quality:   quality,
			Correct:   correct,
			TimeSpent: timeSpent,
		})
		if err != nil {
			o.logger.Warn("review card failed", zap.String("card", item.CardID), zap.Error(err))
		} else {
			result.ReviewQuality = &quality
		}
	}

	s.CurrentIndex++
	s.questionStartedAt = now
	s.questionHints = 0

	result.NextQuestion = viewOf(s.Current())
	result.CurrentIndex = s.CurrentIndex
	result.Performance = s.Performance
	result.Finished = s.Finished()
	return result, nil
}

// timeSpent returns the time spent on the response.
func (r *Response) timeSpent() time.Duration {
	return time.Duration(r.TimeSpentSeconds * float64(time.Second))
}
