package remediation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/store"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

var student = store.StudentRecord{ID: "stu-1", GradeLevel: 6, CurrentDifficulty: 4}

func newTestPlanner(t *testing.T, topics ...string) (*Planner, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	for i, topic := range topics {
		require.NoError(t, mem.AppendMistake(context.Background(), store.MistakeRecord{
			ID:            topic + "-" + string(rune('a'+i)),
			StudentID:     student.ID,
			QuestionID:    "q",
			TopicID:       topic,
			Subject:       "math",
			GradeLevel:    6,
			StudentAnswer: "5",
			CorrectAnswer: "-5",
			Difficulty:    4,
			Timestamp:     now.Add(-time.Duration(i) * time.Hour),
		}))
	}

	lib, err := content.DefaultLibrary()
	require.NoError(t, err)

	analyzer := diagnosis.NewAnalyzer(mem.Mistakes())
	analyzer.SetClock(func() time.Time { return now })

	p := NewPlanner(analyzer, lib, mem.Plans(), nil)
	p.SetClock(func() time.Time { return now })
	return p, mem
}

func TestCreatePlan_NoPatterns(t *testing.T) {
	p, _ := newTestPlanner(t, "integers-addition")

	plan, err := p.CreatePlan(context.Background(), student, "math")
	require.NoError(t, err)
	assert.Nil(t, plan)

	active, err := p.ActivePlan(context.Background(), student.ID, "math")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestCreatePlan_SingleMisconception(t *testing.T) {
	p, _ := newTestPlanner(t, "integers-addition", "integers-subtraction", "integers-addition")

	plan, err := p.CreatePlan(context.Background(), student, "math")
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, student.ID, plan.StudentID)
	assert.Equal(t, store.PlanActive, plan.Status)
	assert.Equal(t, diagnosis.PriorityMedium, plan.Priority)
	require.Len(t, plan.Sessions, 1)

	s := plan.Sessions[0]
	assert.Equal(t, "negative-number-operations", s.MisconceptionID)
	assert.NotEmpty(t, s.Objectives)
	assert.Positive(t, s.EstimatedMinutes)
	require.Len(t, s.Activities, 3)
	for i, want := range ActivityOrder {
		assert.Equal(t, want, s.Activities[i].Type)
	}

	explanation := s.Activities[0]
	assert.Empty(t, explanation.Questions)
	assert.Contains(t, explanation.Content, "sign")

	seen := make(map[string]bool)
	for _, a := range s.Activities[1:] {
		assert.NotEmpty(t, a.Questions, a.Type)
		for _, q := range a.Questions {
			assert.False(t, seen[q.ID], "question %s repeated", q.ID)
			seen[q.ID] = true
			assert.Contains(t, []string{"integers-addition", "integers-subtraction"}, q.TopicID)
		}
	}
	assert.LessOrEqual(t, len(s.Activities[1].Questions), GuidedQuestions)
	assert.LessOrEqual(t, len(s.Activities[2].Questions), IndependentQuestions)
	assert.Len(t, s.PracticeQuestions(), len(seen))
}

func TestCreatePlan_TopPatternsOnly(t *testing.T) {
	p, _ := newTestPlanner(t,
		"integers-addition", "integers-addition",
		"fractions-operations", "fractions-operations",
		"order-of-operations", "order-of-operations",
		"percent", "percent",
		"decimals-operations", "decimals-operations",
	)

	plan, err := p.CreatePlan(context.Background(), student, "math")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Len(t, plan.Sessions, MaxSessions)
	assert.Equal(t, plan.Sessions[0].EstimatedMinutes+plan.Sessions[1].EstimatedMinutes+plan.Sessions[2].EstimatedMinutes, plan.TotalMinutes())
}

func TestCreatePlan_SupersedesActivePlan(t *testing.T) {
	p, mem := newTestPlanner(t, "integers-addition", "integers-subtraction")
	ctx := context.Background()

	first, err := p.CreatePlan(ctx, student, "math")
	require.NoError(t, err)

	p.SetClock(func() time.Time { return now.Add(time.Hour) })
	second, err := p.CreatePlan(ctx, student, "math")
	require.NoError(t, err)

	rec, err := mem.GetPlan(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, store.PlanSuperseded, rec.Status)

	active, err := p.ActivePlan(ctx, student.ID, "math")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
}

func TestRecordProgress(t *testing.T) {
	p, _ := newTestPlanner(t, "integers-addition", "integers-subtraction")
	ctx := context.Background()

	plan, err := p.CreatePlan(ctx, student, "math")
	require.NoError(t, err)
	require.NotNil(t, plan.NextSession())

	updated, err := p.RecordProgress(ctx, plan.ID, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Progress.CompletedSessions)
	assert.InDelta(t, 80.0, updated.Progress.Accuracy(), 1e-9)
	assert.Equal(t, store.PlanCompleted, updated.Status)
	assert.Nil(t, updated.NextSession())

	active, err := p.ActivePlan(ctx, student.ID, "math")
	require.NoError(t, err)
	assert.Nil(t, active)

	again, err := p.RecordProgress(ctx, plan.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Progress.CompletedSessions)
	assert.Equal(t, 6, again.Progress.TotalAttempts)
}

func TestRecordProgress_UnknownPlan(t *testing.T) {
	p, _ := newTestPlanner(t)
	_, err := p.RecordProgress(context.Background(), "missing", 1, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
