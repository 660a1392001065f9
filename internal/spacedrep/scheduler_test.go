package spacedrep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/store"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*Scheduler, *store.Memory, *time.Time) {
	t.Helper()
	mem := store.NewMemory()
	now := base
	s := NewScheduler(mem.Cards())
	s.SetClock(func() time.Time { return now })
	return s, mem, &now
}

func question(id, topic string, difficulty int) content.Question {
	return content.Question{ID: id, TopicID: topic, Difficulty: difficulty, CorrectAnswer: "5"}
}

func TestPromote_CreatesCard(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	card, created, err := s.Promote(ctx, "stu-1", question("q1", "integers-addition", 4), 20*time.Second)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, 1, card.Repetition)
	assert.Equal(t, 1, card.IntervalDays)
	assert.Equal(t, DefaultEase, card.Ease)
	assert.Equal(t, 4, card.Difficulty)
	assert.Equal(t, base.AddDate(0, 0, 1), card.NextReviewAt)
}

func TestPromote_SlowAnswerSkipped(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	card, created, err := s.Promote(context.Background(), "stu-1", question("q1", "t", 4), FastAnswerThreshold)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, card)
}

func TestPromote_ExistingCardKept(t *testing.T) {
	s, _, now := newTestScheduler(t)
	ctx := context.Background()

	first, created, err := s.Promote(ctx, "stu-1", question("q1", "t", 4), 10*time.Second)
	require.NoError(t, err)
	require.True(t, created)

	*now = base.Add(time.Hour)
	again, created, err := s.Promote(ctx, "stu-1", question("q1", "t", 4), 10*time.Second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.NextReviewAt, again.NextReviewAt)
}

func TestReviewCard_FastConfidentReviewLengthensInterval(t *testing.T) {
	s, _, now := newTestScheduler(t)
	ctx := context.Background()

	q := question("q1", "integers-addition", 4)
	card, _, err := s.Promote(ctx, "stu-1", q, 20*time.Second)
	require.NoError(t, err)

	quality := ComputeQuality(true, 0.95, 20*time.Second, q.ExpectedTime())
	require.Equal(t, 5, quality)

	*now = card.NextReviewAt
	reviewed, err := s.ReviewCard(ctx, card.ID, ReviewInput{Quality: quality, Correct: true, TimeSpent: 20 * time.Second})
	require.NoError(t, err)
	assert.Greater(t, reviewed.IntervalDays, card.IntervalDays)
	assert.Equal(t, 2, reviewed.Repetition)
	assert.Equal(t, 5, reviewed.LastQuality)
	assert.Equal(t, 1, reviewed.Reviews)
	assert.Equal(t, now.AddDate(0, 0, reviewed.IntervalDays), reviewed.NextReviewAt)
}

func TestReviewCard_ForgottenResets(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	card, _, err := s.Promote(ctx, "stu-1", question("q1", "t", 4), 20*time.Second)
	require.NoError(t, err)
	_, err = s.ReviewCard(ctx, card.ID, ReviewInput{Quality: 5})
	require.NoError(t, err)

	reviewed, err := s.ReviewCard(ctx, card.ID, ReviewInput{Quality: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, reviewed.Repetition)
	assert.Equal(t, 1, reviewed.IntervalDays)
	assert.Equal(t, 2, reviewed.Reviews)
}

func TestReviewCard_Errors(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.ReviewCard(ctx, "missing", ReviewInput{Quality: 3})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.ReviewCard(ctx, "missing", ReviewInput{Quality: 6})
	assert.ErrorIs(t, err, ErrInvalidQuality)
}

func TestGetDueCards(t *testing.T) {
	s, _, now := newTestScheduler(t)
	ctx := context.Background()

	_, _, err := s.Promote(ctx, "stu-1", question("q1", "integers-addition", 4), 10*time.Second)
	require.NoError(t, err)
	*now = base.Add(2 * time.Hour)
	_, _, err = s.Promote(ctx, "stu-1", question("q2", "integers-addition", 5), 10*time.Second)
	require.NoError(t, err)
	_, _, err = s.Promote(ctx, "stu-1", question("q3", "fractions-operations", 5), 10*time.Second)
	require.NoError(t, err)
	_, _, err = s.Promote(ctx, "stu-2", question("q1", "integers-addition", 4), 10*time.Second)
	require.NoError(t, err)

	*now = base.Add(12 * time.Hour)
	due, err := s.GetDueCards(ctx, "stu-1", "", 10)
	require.NoError(t, err)
	assert.Empty(t, due, "nothing is due before a day has passed")

	*now = base.AddDate(0, 0, 2)
	due, err = s.GetDueCards(ctx, "stu-1", "", 10)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "q1", due[0].QuestionID, "oldest due first")

	due, err = s.GetDueCards(ctx, "stu-1", "integers-addition", 1)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "q1", due[0].QuestionID)
	assert.True(t, IsDue(due[0], *now))
}
