package curriculum

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/llm"
	"github.com/abhisek/tutorloop/internal/store"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, provider llm.Provider) (*Engine, *store.Memory) {
	t.Helper()
	lib, err := content.DefaultLibrary()
	require.NoError(t, err)
	mem := store.NewMemory()
	e := NewEngine(content.NewVersionedSource(lib, mem.Curricula()), mem, provider, Config{MaxTokens: 512}, nil)
	e.SetClock(func() time.Time { return now })
	return e, mem
}

// seedPerformance stores n sessions on one topic, each by a different
// student.
func seedPerformance(t *testing.T, mem *store.Memory, grade int, topicID string, n, correct, total int) {
	t.Helper()
	for i := range n {
		err := mem.AppendPerformance(context.Background(), store.PerformanceRecord{
			ID:                fmt.Sprintf("%s-%d", topicID, i),
			StudentID:         fmt.Sprintf("student-%d", i),
			GradeLevel:        grade,
			Subject:           "math",
			TopicID:           topicID,
			Correct:           correct,
			Total:             total,
			Accuracy:          float64(correct) / float64(total) * 100,
			DurationSeconds:   50 * float64(total),
			ExpectedSeconds:   60 * float64(total),
			AverageDifficulty: 5,
			CompletedAt:       now,
		})
		require.NoError(t, err)
	}
}

func easierSubtraction() llm.MockResponse {
	return llm.MockJSON(Refinement{
		Reason:       "Students struggle with subtracting integers",
		TopicUpdates: []TopicUpdate{{ID: "integers-subtraction", Difficulty: content.IntPtr(4)}},
	})
}

func TestAnalyze(t *testing.T) {
	e, mem := newTestEngine(t, nil)
	seedPerformance(t, mem, 6, "integers-subtraction", 30, 2, 5)

	a, err := e.Analyze(context.Background(), 6, "math")
	require.NoError(t, err)

	assert.True(t, a.NeedsOptimization)
	assert.Equal(t, 30, a.Metrics.SampleSize)
	assert.InDelta(t, 40.0, a.Metrics.OverallAccuracy, 0.001)
	assert.Equal(t, PriorityHigh, a.Priority)
	assert.Equal(t, 7, a.PriorityScore)
	assert.Equal(t, now, a.AnalyzedAt)
	assert.Equal(t, "1.0", a.Version)
}

func TestAnalyze_UnknownCurriculum(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	_, err := e.Analyze(context.Background(), 12, "latin")
	assert.ErrorIs(t, err, content.ErrNoActiveContent)
}

func TestOptimize_PublishesNewVersion(t *testing.T) {
	provider := llm.NewMockProvider(easierSubtraction())
	e, mem := newTestEngine(t, provider)
	seedPerformance(t, mem, 6, "integers-subtraction", 30, 2, 5)
	ctx := context.Background()

	res, err := e.Optimize(ctx, 6, "math")
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, "1.0", res.PreviousVersion)
	assert.Equal(t, []string{"integers-subtraction: difficulty 5 -> 4"}, res.Changes)
	assert.Equal(t, "1.1", res.Curriculum.Version)
	assert.Equal(t, "g6-math-v1.1", res.Curriculum.ID)
	assert.Equal(t, "seed-g6-math", res.Curriculum.PreviousID)
	assert.Equal(t, "Students struggle with subtracting integers", res.Curriculum.OptimizationReason)
	assert.Equal(t, now, res.Curriculum.LastUpdated)

	require.Len(t, provider.Calls, 1)
	assert.Equal(t, RefinementSchema, provider.Calls[0].Schema)
	assert.Contains(t, provider.Calls[0].Messages[0].Content, "integers-subtraction")

	current, err := e.Analyze(ctx, 6, "math")
	require.NoError(t, err)
	assert.Equal(t, "1.1", current.Version)

	history, err := e.History(ctx, 6, "math")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "1.1", history[0].Version)
	assert.Equal(t, "1.0", history[1].Version)
}

func TestOptimize_Rollback(t *testing.T) {
	e, mem := newTestEngine(t, llm.NewMockProvider(easierSubtraction()))
	seedPerformance(t, mem, 6, "integers-subtraction", 30, 2, 5)
	ctx := context.Background()

	_, err := e.Optimize(ctx, 6, "math")
	require.NoError(t, err)

	c, err := e.Rollback(ctx, 6, "math")
	require.NoError(t, err)
	assert.Equal(t, "1.2", c.Version)
	assert.Equal(t, "g6-math-v1.1", c.PreviousID)
	assert.Equal(t, 5, c.Topic("integers-subtraction").Difficulty)
	assert.Equal(t, "rollback to version 1.0", c.OptimizationReason)
}

func TestRollback_SeedVersion(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	_, err := e.Rollback(context.Background(), 6, "math")
	assert.Error(t, err)
}

func TestOptimize_NotApplied(t *testing.T) {
	tests := []struct {
		name      string
		response  llm.MockResponse
		wantNotes string
	}{
		{
			name: "refinement changes nothing",
			response: llm.MockJSON(Refinement{
				Reason:       "fine as is",
				TopicUpdates: []TopicUpdate{{ID: "integers-subtraction", Difficulty: content.IntPtr(5)}},
			}),
		},
		{
			name:      "free text",
			response:  llm.MockText("Consider slowing the pace of the integer unit."),
			wantNotes: "Consider slowing the pace of the integer unit.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, mem := newTestEngine(t, llm.NewMockProvider(tt.response))
			seedPerformance(t, mem, 6, "integers-subtraction", 30, 2, 5)
			ctx := context.Background()

			res, err := e.Optimize(ctx, 6, "math")
			require.NoError(t, err)
			assert.False(t, res.Applied)
			assert.Equal(t, tt.wantNotes, res.Notes)
			assert.Equal(t, "1.0", res.Curriculum.Version)

			history, err := e.History(ctx, 6, "math")
			require.NoError(t, err)
			assert.Len(t, history, 1)
		})
	}
}

func TestOptimize_InvalidRefinement(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockJSON(Refinement{
		NewTopics: []NewTopic{{ID: "integers-review", Title: "Review", Difficulty: 5, Prerequisites: []string{"ghost-topic"}}},
	}))
	e, mem := newTestEngine(t, provider)
	seedPerformance(t, mem, 6, "integers-subtraction", 30, 2, 5)

	_, err := e.Optimize(context.Background(), 6, "math")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost-topic")
}

func TestOptimize_InsufficientSample(t *testing.T) {
	provider := llm.NewMockProvider(easierSubtraction())
	e, mem := newTestEngine(t, provider)
	seedPerformance(t, mem, 6, "integers-subtraction", 29, 2, 5)

	_, err := e.Optimize(context.Background(), 6, "math")
	var insufficient *InsufficientSampleError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 29, insufficient.SampleSize)
	assert.Equal(t, MinSampleSize, insufficient.Required)
	assert.Empty(t, provider.Calls)
}

func TestOptimize_NoProvider(t *testing.T) {
	e, mem := newTestEngine(t, nil)
	seedPerformance(t, mem, 6, "integers-subtraction", 30, 2, 5)

	_, err := e.Optimize(context.Background(), 6, "math")
	assert.ErrorIs(t, err, llm.ErrServiceUnavailable)
}

func TestRunAutoOptimization(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("upstream down")}},
		easierSubtraction(),
	)
	e, mem := newTestEngine(t, provider)

	// grade 4: high priority, generation fails
	seedPerformance(t, mem, 4, "place-value", 30, 2, 5)
	// grade 6: high priority, optimized
	seedPerformance(t, mem, 6, "integers-subtraction", 30, 2, 5)
	// grade 7: needs optimization at low priority
	seedPerformance(t, mem, 7, "integers-multiplication", 30, 11, 20)
	// grade 5: no data

	summary, err := e.RunAutoOptimization(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 1, summary.Optimized)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, now, summary.StartedAt)

	outcomes := make(map[int]string)
	for _, item := range summary.Items {
		outcomes[item.GradeLevel] = item.Outcome
	}
	assert.Equal(t, map[int]string{
		4: OutcomeFailed,
		5: OutcomeSkipped,
		6: OutcomeOptimized,
		7: OutcomeReview,
	}, outcomes)

	require.Len(t, summary.Review, 1)
	assert.Equal(t, 7, summary.Review[0].GradeLevel)
	assert.Equal(t, PriorityLow, summary.Review[0].Priority)

	runs := mem.OptimizationRuns()
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].Processed)
	assert.Equal(t, 1, runs[0].Failed)
}

func TestRunAutoOptimization_Canceled(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := e.RunAutoOptimization(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Processed)
}

func TestSubmitFeedback(t *testing.T) {
	e, mem := newTestEngine(t, nil)
	ctx := context.Background()

	for _, rating := range []int{0, 6} {
		_, err := e.SubmitFeedback(ctx, FeedbackInput{GradeLevel: 6, Subject: "math", Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	_, err := e.SubmitFeedback(ctx, FeedbackInput{GradeLevel: 12, Subject: "latin", Rating: 3})
	assert.ErrorIs(t, err, content.ErrNoActiveContent)

	for _, rating := range []int{1, 2, 4} {
		rec, err := e.SubmitFeedback(ctx, FeedbackInput{GradeLevel: 6, Subject: "math", StudentID: "s1", Rating: rating})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, now, rec.CreatedAt)
	}

	stored, err := mem.ListFeedback(ctx, 6, "math")
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	summary, err := e.FeedbackSummary(ctx, 6, "math")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 7.0/3.0, summary.AverageRating, 0.001)
	assert.True(t, summary.NeedsAttention)
}

func TestEngineQuality(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	report, err := e.Quality(context.Background(), 6, "math")
	require.NoError(t, err)

	assert.Equal(t, "seed-g6-math", report.CurriculumID)
	for _, s := range report.Scores() {
		assert.GreaterOrEqual(t, s.Score, 0.0, s.Name)
		assert.LessOrEqual(t, s.Score, 100.0, s.Name)
	}
	assert.Equal(t, LetterGrade(report.Overall), report.Grade)
}
