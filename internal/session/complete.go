package session

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/engagement"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/store"
)

// CompleteSession closes the student's session. The session leaves the
// live store before anything is reported, so its performance is only ever
// aggregated as a completed session. Completion then records performance
// per topic, promotes fast correct answers to review cards, updates the
// student profile and remediation progress, and hands out awards.
func (o *Orchestrator) CompleteSession(ctx context.Context, studentID string) (*Summary, error) {
	unlock := o.locks.Lock(studentID)
	defer unlock()

	s, ok := o.sessions.Get(studentID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	now := o.now().UTC()
	duration := s.Elapsed(now)
	if s.Paused {
		o.resume(s)
	}
	s.Status = StatusCompleted
	o.sessions.Delete(studentID)

	metrics.ActiveSessions.Dec()
	metrics.SessionsCompleted.WithLabelValues(string(s.Type)).Inc()
	metrics.SessionDuration.WithLabelValues(string(s.Type)).Observe(duration.Seconds())

	sum := &Summary{
		Session:           s,
		Duration:          duration,
		Accuracy:          s.Performance.Accuracy * 100,
		AverageDifficulty: s.AverageDifficulty(),
	}

	for _, rec := range o.performanceRecords(s, now) {
		if o.perf != nil && !o.perf.Record(rec) {
			o.logger.Warn("performance record dropped", zap.String("session", s.ID), zap.String("topic", rec.TopicID))
		}
	}

	if s.Type != TypeReview {
		sum.PromotedCards = o.promote(ctx, s)
	}

	sum.CurrentDifficulty, sum.NewlyMastered = o.updateStudent(ctx, s)

	if s.PlanID != "" && o.planner != nil && s.Performance.Total > 0 {
		if _, err := o.planner.RecordProgress(ctx, s.PlanID, s.Performance.Correct, s.Performance.Total); err != nil {
			o.logger.Warn("record remediation progress failed", zap.String("plan", s.PlanID), zap.Error(err))
		}
	}

	if o.engagement != nil {
		sum.Awards = o.engagement.SessionCompleted(ctx, engagement.SessionSummary{
			SessionID:     s.ID,
			StudentID:     studentID,
			Type:          string(s.Type),
			TopicID:       s.TopicID,
			Correct:       s.Performance.Correct,
			Total:         s.Performance.Total,
			Accuracy:      sum.Accuracy,
			CompletedAt:   now,
			NewlyMastered: o.masteredTopics(ctx, s),
		})
	}

	o.logger.Info("session completed",
		zap.String("student", studentID),
		zap.String("session", s.ID),
		zap.Int("correct", s.Performance.Correct),
		zap.Int("total", s.Performance.Total),
		zap.Duration("duration", duration))
	return sum, nil
}

// performanceRecords builds one record per topic answered in the session.
// Responses line up with items by index.
func (o *Orchestrator) performanceRecords(s *Session, now time.Time) []store.PerformanceRecord {
	type topicAgg struct {
		correct, total, difficulty int
		spent, expected            float64
	}
	byTopic := make(map[string]*topicAgg)
	var order []string
	for i, r := range s.Responses {
		q := s.Items[i].Question
		a, ok := byTopic[q.TopicID]
		if !ok {
			a = &topicAgg{}
			byTopic[q.TopicID] = a
			order = append(order, q.TopicID)
		}
		a.total++
		if r.Correct {
			a.correct++
		}
		a.difficulty += q.Difficulty
		a.spent += r.TimeSpentSeconds
		a.expected += q.ExpectedTime().Seconds()
	}

	recs := make([]store.PerformanceRecord, 0, len(order))
	for _, topicID := range order {
		a := byTopic[topicID]
		recs = append(recs, store.PerformanceRecord{
			ID:                uuid.New().String(),
			SessionID:         s.ID,
			StudentID:         s.StudentID,
			GradeLevel:        s.GradeLevel,
			Subject:           s.Subject,
			TopicID:           topicID,
			SessionType:       string(s.Type),
			Correct:           a.correct,
			Total:             a.total,
			Accuracy:          float64(a.correct) / float64(a.total) * 100,
			DurationSeconds:   a.spent,
			ExpectedSeconds:   a.expected,
			AverageDifficulty: float64(a.difficulty) / float64(a.total),
			CompletedAt:       now,
		})
	}
	return recs
}

// promote creates review cards for correct answers given quickly enough
// and returns how many were created.
func (o *Orchestrator) promote(ctx context.Context, s *Session) int {
	created := 0
	for i, r := range s.Responses {
		if !r.Correct {
			continue
		}
		_, ok, err := o.scheduler.Promote(ctx, s.StudentID, s.Items[i].Question, r.timeSpent())
		if err != nil {
			o.logger.Warn("promote to review failed", zap.String("question", r.QuestionID), zap.Error(err))
			continue
		}
		if ok {
			created++
		}
	}
	return created
}

// updateStudent copies the tracker's difficulty and mastered topics onto
// the student profile. It returns the new difficulty and the topics first
// mastered in this session.
func (o *Orchestrator) updateStudent(ctx context.Context, s *Session) (int, []string) {
	newly := slices.Clone(s.newlyMastered)

	student, err := o.students.GetStudent(ctx, s.StudentID)
	if err != nil {
		o.logger.Warn("load student failed", zap.String("student", s.StudentID), zap.Error(err))
		return 0, newly
	}
	state, err := o.mastery.Load(ctx, s.StudentID, student.CurrentDifficulty)
	if err != nil {
		o.logger.Warn("load mastery failed", zap.String("student", s.StudentID), zap.Error(err))
		return student.CurrentDifficulty, newly
	}

	student.CurrentDifficulty = state.Tracker().CurrentDifficulty()
	for _, id := range state.MasteredTopics() {
		if !slices.Contains(student.MasteredTopics, id) {
			student.MasteredTopics = append(student.MasteredTopics, id)
		}
	}
	if s.TopicID != "" {
		student.CurrentTopic = s.TopicID
	}
	student.UpdatedAt = o.now().UTC()
	if err := o.students.SaveStudent(ctx, *student); err != nil {
		o.logger.Warn("save student failed", zap.String("student", s.StudentID), zap.Error(err))
	}
	return student.CurrentDifficulty, newly
}

func (o *Orchestrator) masteredTopics(ctx context.Context, s *Session) []engagement.MasteredTopic {
	if len(s.newlyMastered) == 0 {
		return nil
	}
	c, err := o.source.GetCurriculum(ctx, s.GradeLevel, s.Subject)
	if err != nil {
		o.logger.Debug("curriculum lookup failed", zap.Error(err))
	}
	var out []engagement.MasteredTopic
	for _, id := range s.newlyMastered {
		mt := engagement.MasteredTopic{ID: id, Title: id}
		if c != nil {
			if t := c.Topic(id); t != nil {
				mt.Title, mt.Difficulty = t.Title, t.Difficulty
			}
		}
		out = append(out, mt)
	}
	return out
}
