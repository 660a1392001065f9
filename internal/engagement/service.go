package engagement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/logging"
	"github.com/abhisek/tutorloop/internal/store"
)

// Service persists session events and computes awards.
type Service struct {
	events store.EventRepo
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an engagement service backed by events.
func NewService(events store.EventRepo, logger *zap.Logger) *Service {
	return &Service{
		events: events,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// SetClock overrides the service's time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

type startedPayload struct {
	Type      string    `json:"type"`
	TopicID   string    `json:"topicId,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// SessionStarted records the start of a session.
func (s *Service) SessionStarted(ctx context.Context, studentID, sessionID, sessionType, topicID string) {
	s.append(ctx, studentID, sessionID, KindStarted, startedPayload{
		Type:      sessionType,
		TopicID:   topicID,
		StartedAt: s.now().UTC(),
	})
}

// SessionAbandoned records a session discarded without completion.
func (s *Service) SessionAbandoned(ctx context.Context, studentID, sessionID string) {
	s.append(ctx, studentID, sessionID, KindAbandoned, struct {
		AbandonedAt time.Time `json:"abandonedAt"`
	}{s.now().UTC()})
}

// SessionCompleted records a completed session and returns the awards it
// earned: one session award, one per newly mastered topic, and a streak
// award on the first completion of a day that reaches a streak milestone.
func (s *Service) SessionCompleted(ctx context.Context, sum SessionSummary) []Award {
	if sum.CompletedAt.IsZero() {
		sum.CompletedAt = s.now().UTC()
	}

	// Streak state is read before this completion is stored so that only
	// the first completion of a day can reach a milestone.
	activity, err := s.completions(ctx, sum.StudentID)
	if err != nil {
		s.logger.Warn("load session history", zap.String("student_id", sum.StudentID), zap.Error(err))
	}
	firstToday := !activeOn(activity, sum.CompletedAt)

	s.append(ctx, sum.StudentID, sum.SessionID, KindCompleted, sum)

	awards := []Award{{
		Type:      AwardSession,
		Rarity:    SessionRarity(sum.Accuracy),
		Reason:    fmt.Sprintf("Session complete (%.0f%% accuracy)", sum.Accuracy),
		StudentID: sum.StudentID,
		SessionID: sum.SessionID,
		AwardedAt: sum.CompletedAt,
	}}

	for _, t := range sum.NewlyMastered {
		awards = append(awards, Award{
			Type:      AwardMastery,
			Rarity:    MasteryRarity(t.Difficulty),
			TopicID:   t.ID,
			Reason:    fmt.Sprintf("Mastered %s", t.Title),
			StudentID: sum.StudentID,
			SessionID: sum.SessionID,
			AwardedAt: sum.CompletedAt,
		})
	}

	if err == nil && firstToday {
		streak := StreakDays(append(activity, sum.CompletedAt), sum.CompletedAt)
		if IsStreakMilestone(streak) {
			awards = append(awards, Award{
				Type:      AwardStreak,
				Rarity:    StreakRarity(streak),
				Reason:    fmt.Sprintf("%d days in a row!", streak),
				StudentID: sum.StudentID,
				SessionID: sum.SessionID,
				AwardedAt: sum.CompletedAt,
			})
		}
	}

	for _, a := range awards {
		s.append(ctx, a.StudentID, a.SessionID, KindAward, a)
	}
	return awards
}

// Streak returns the student's current day streak.
func (s *Service) Streak(ctx context.Context, studentID string) (int, error) {
	activity, err := s.completions(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return StreakDays(activity, s.now()), nil
}

// Awards returns every award the student has earned, oldest first.
func (s *Service) Awards(ctx context.Context, studentID string) ([]Award, error) {
	events, err := s.events.QuerySessionEvents(ctx, studentID, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	var out []Award
	for _, e := range events {
		if e.Kind != KindAward {
			continue
		}
		var a Award
		if err := json.Unmarshal(e.Payload, &a); err != nil {
			s.logger.Warn("skip undecodable award", zap.Int64("sequence", e.Sequence), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) completions(ctx context.Context, studentID string) ([]time.Time, error) {
	events, err := s.events.QuerySessionEvents(ctx, studentID, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	var out []time.Time
	for _, e := range events {
		if e.Kind != KindCompleted {
			continue
		}
		var sum SessionSummary
		if err := json.Unmarshal(e.Payload, &sum); err != nil || sum.CompletedAt.IsZero() {
			out = append(out, e.Timestamp)
			continue
		}
		out = append(out, sum.CompletedAt)
	}
	return out, nil
}

func activeOn(activity []time.Time, t time.Time) bool {
	d := day(t)
	for _, a := range activity {
		if day(a).Equal(d) {
			return true
		}
	}
	return false
}

func (s *Service) append(ctx context.Context, studentID, sessionID, kind string, payload any) {
	if s.events == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("encode session event", zap.String("kind", kind), zap.Error(err))
		return
	}
	err = s.events.AppendSessionEvent(context.WithoutCancel(ctx), store.SessionEventData{
		SessionID: sessionID,
		StudentID: studentID,
		Kind:      kind,
		Payload:   b,
	})
	if err != nil {
		s.logger.Warn("append session event",
			zap.String("kind", kind),
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
