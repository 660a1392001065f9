// Package spacedrep schedules review cards with the SM-2 algorithm.
package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/store"
)

// FastAnswerThreshold is the answer time under which a correct answer in a
// normal session is promoted into a review card.
const FastAnswerThreshold = 45 * time.Second

// ErrInvalidQuality is returned by ReviewCard for qualities outside 0-5.
var ErrInvalidQuality = errors.New("review quality must be between 0 and 5")

// ReviewInput is the outcome of one review.
type ReviewInput struct {
	Quality   int
	Correct   bool
	TimeSpent time.Duration
}

// Scheduler creates and grades review cards. It holds no per-student state
// of its own; cards live in the CardRepo.
type Scheduler struct {
	cards store.CardRepo
	now   func() time.Time
}

// NewScheduler returns a scheduler backed by cards.
func NewScheduler(cards store.CardRepo) *Scheduler {
	return &Scheduler{cards: cards, now: time.Now}
}

// SetClock overrides the scheduler's time source.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Promote creates a review card for q if the answer qualifies (see
// FastAnswerThreshold) and the student has no card for q yet. It reports
// whether a card was created.
func (s *Scheduler) Promote(ctx context.Context, studentID string, q content.Question, timeSpent time.Duration) (*store.ReviewCard, bool, error) {
	if timeSpent >= FastAnswerThreshold {
		return nil, false, nil
	}

	existing, err := s.cards.FindCard(ctx, studentID, q.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("find card: %w", err)
	}

	now := s.now().UTC()
	card := store.ReviewCard{
		ID:           uuid.New().String(),
		StudentID:    studentID,
		TopicID:      q.TopicID,
		QuestionID:   q.ID,
		Difficulty:   q.Difficulty,
		NextReviewAt: now.AddDate(0, 0, FirstIntervalDays),
		Repetition:   1,
		IntervalDays: FirstIntervalDays,
		Ease:         DefaultEase,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.cards.SaveCard(ctx, card); err != nil {
		return nil, false, fmt.Errorf("save card: %w", err)
	}
	return &card, true, nil
}

// ReviewCard grades a card and reschedules it.
func (s *Scheduler) ReviewCard(ctx context.Context, cardID string, in ReviewInput) (*store.ReviewCard, error) {
	if in.Quality < 0 || in.Quality > MaxQuality {
		return nil, ErrInvalidQuality
	}

	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", cardID, err)
	}

	next := NextSchedule(in.Quality, card.IntervalDays, card.Repetition, card.Ease)
	now := s.now().UTC()

	card.Repetition = next.Repetition
	card.IntervalDays = next.IntervalDays
	card.Ease = next.Ease
	card.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	card.LastQuality = in.Quality
	card.Reviews++
	card.UpdatedAt = now

	if err := s.cards.SaveCard(ctx, *card); err != nil {
		return nil, fmt.Errorf("save card: %w", err)
	}
	metrics.ReviewsGraded.WithLabelValues(strconv.Itoa(in.Quality)).Inc()
	return card, nil
}

// GetDueCards returns the student's cards due now, oldest-due first. An
// empty topicID matches every topic; limit <= 0 means no limit.
func (s *Scheduler) GetDueCards(ctx context.Context, studentID, topicID string, limit int) ([]store.ReviewCard, error) {
	cards, err := s.cards.DueCards(ctx, studentID, topicID, s.now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("due cards: %w", err)
	}
	return cards, nil
}

// IsDue reports whether card is due at now.
func IsDue(card store.ReviewCard, now time.Time) bool {
	return !now.Before(card.NextReviewAt)
}
