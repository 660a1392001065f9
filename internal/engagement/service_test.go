package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/store"
)

func newTestService(events store.EventRepo) *Service {
	s := NewService(events, nil)
	s.SetClock(func() time.Time { return now })
	return s
}

func awardTypes(awards []Award) []AwardType {
	out := make([]AwardType, len(awards))
	for i, a := range awards {
		out[i] = a.Type
	}
	return out
}

func TestSessionCompleted_SessionAndMasteryAwards(t *testing.T) {
	mem := store.NewMemory()
	s := newTestService(mem.Events())
	ctx := context.Background()

	s.SessionStarted(ctx, "s1", "sess-1", "adaptive", "")
	awards := s.SessionCompleted(ctx, SessionSummary{
		SessionID: "sess-1",
		StudentID: "s1",
		Type:      "adaptive",
		Correct:   8,
		Total:     10,
		Accuracy:  80,
		NewlyMastered: []MasteredTopic{
			{ID: "integers-addition", Title: "Adding Integers", Difficulty: 4},
		},
	})

	require.Equal(t, []AwardType{AwardSession, AwardMastery}, awardTypes(awards))
	assert.Equal(t, RarityEpic, awards[0].Rarity)
	assert.Equal(t, "Session complete (80% accuracy)", awards[0].Reason)
	assert.Equal(t, now, awards[0].AwardedAt)
	assert.Equal(t, RarityRare, awards[1].Rarity)
	assert.Equal(t, "integers-addition", awards[1].TopicID)
	assert.Equal(t, "Mastered Adding Integers", awards[1].Reason)

	events, err := mem.QuerySessionEvents(ctx, "s1", store.QueryOpts{})
	require.NoError(t, err)
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []string{KindStarted, KindCompleted, KindAward, KindAward}, kinds)

	stored, err := s.Awards(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, awards, stored)
}

func TestSessionCompleted_StreakMilestone(t *testing.T) {
	mem := store.NewMemory()
	s := newTestService(mem.Events())
	ctx := context.Background()

	complete := func(id string, at time.Time) []Award {
		return s.SessionCompleted(ctx, SessionSummary{SessionID: id, StudentID: "s1", Accuracy: 40, CompletedAt: at})
	}

	assert.Equal(t, []AwardType{AwardSession}, awardTypes(complete("a", daysAgo(2))))
	assert.Equal(t, []AwardType{AwardSession}, awardTypes(complete("b", daysAgo(1))))

	third := complete("c", now)
	require.Equal(t, []AwardType{AwardSession, AwardStreak}, awardTypes(third))
	assert.Equal(t, "3 days in a row!", third[1].Reason)
	assert.Equal(t, RarityCommon, third[1].Rarity)

	// a second session the same day does not repeat the streak award
	assert.Equal(t, []AwardType{AwardSession}, awardTypes(complete("d", now.Add(time.Hour))))

	streak, err := s.Streak(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

type failingEvents struct {
	store.EventRepo
}

func (failingEvents) AppendSessionEvent(context.Context, store.SessionEventData) error {
	return errors.New("disk full")
}

func (failingEvents) QuerySessionEvents(context.Context, string, store.QueryOpts) ([]store.SessionEvent, error) {
	return nil, errors.New("disk full")
}

func TestSessionCompleted_StoreFailuresAreSwallowed(t *testing.T) {
	s := newTestService(failingEvents{})
	ctx := context.Background()

	s.SessionStarted(ctx, "s1", "sess-1", "topic", "percent")
	awards := s.SessionCompleted(ctx, SessionSummary{SessionID: "sess-1", StudentID: "s1", Accuracy: 95})
	require.Len(t, awards, 1)
	assert.Equal(t, RarityLegendary, awards[0].Rarity)

	_, err := s.Streak(ctx, "s1")
	assert.Error(t, err)
}
