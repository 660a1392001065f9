package diagnosis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/catalog"
	"github.com/abhisek/tutorloop/internal/store"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func rec(id, topic string, difficulty int, age time.Duration) store.MistakeRecord {
	return store.MistakeRecord{
		ID:            id,
		StudentID:     "stu-1",
		QuestionID:    "q-" + id,
		TopicID:       topic,
		Subject:       "math",
		GradeLevel:    6,
		StudentAnswer: "5",
		CorrectAnswer: "-5",
		Difficulty:    difficulty,
		Timestamp:     now.Add(-age),
	}
}

func newTestAnalyzer(t *testing.T, mistakes ...store.MistakeRecord) *Analyzer {
	t.Helper()
	mem := store.NewMemory()
	for _, m := range mistakes {
		require.NoError(t, mem.AppendMistake(context.Background(), m))
	}
	a := NewAnalyzer(mem.Mistakes())
	a.SetClock(func() time.Time { return now })
	return a
}

func TestAnalyzePatterns_SignErrorsOnIntegerTopics(t *testing.T) {
	a := newTestAnalyzer(t,
		rec("m1", "integers-addition", 4, 3*24*time.Hour),
		rec("m2", "integers-subtraction", 4, time.Hour),
	)

	patterns, err := a.AnalyzePatterns(context.Background(), "stu-1", "math")
	require.NoError(t, err)
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, "negative-number-operations", p.MisconceptionID)
	assert.Equal(t, 2, p.Occurrences)
	assert.Greater(t, p.Severity, 0.0)
	assert.InDelta(t, 30+8+12, p.Severity, 1e-9)
	assert.Equal(t, []string{"integers-addition", "integers-subtraction"}, p.AffectedTopics)
	assert.Equal(t, "m2", p.RecentMistakes[0].ID, "newest first")
}

func TestAnalyzePatterns_SingleMistakeIsNoise(t *testing.T) {
	a := newTestAnalyzer(t, rec("m1", "integers-addition", 4, time.Hour))
	patterns, err := a.AnalyzePatterns(context.Background(), "stu-1", "math")
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestAnalyzePatterns_ClassifiedMistakesMatch(t *testing.T) {
	m1 := rec("m1", "g6-review", 6, time.Hour)
	m1.MisconceptionID = "percent-base"
	m2 := rec("m2", "g6-mixed", 6, time.Hour)
	m2.MisconceptionID = "percent-base"

	a := newTestAnalyzer(t, m1, m2)
	patterns, err := a.AnalyzePatterns(context.Background(), "stu-1", "")
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "percent-base", patterns[0].MisconceptionID)
}

func TestAnalyzePatterns_SubjectFilterAndOrdering(t *testing.T) {
	ela := rec("e1", "grammar-agreement", 3, time.Hour)
	ela.Subject = "ela"
	ela2 := rec("e2", "grammar-agreement", 3, time.Hour)
	ela2.Subject = "ela"

	var log []store.MistakeRecord
	for i, id := range []string{"f1", "f2", "f3", "f4", "f5"} {
		log = append(log, rec(id, "fractions-operations", 7, time.Duration(i)*time.Hour))
	}
	log = append(log,
		rec("i1", "integers-intro", 2, 30*24*time.Hour),
		rec("i2", "integers-intro", 2, 30*24*time.Hour),
		ela, ela2,
	)
	a := newTestAnalyzer(t, log...)

	patterns, err := a.AnalyzePatterns(context.Background(), "stu-1", "math")
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, "fraction-operations", patterns[0].MisconceptionID)
	assert.Equal(t, "negative-number-operations", patterns[1].MisconceptionID)

	all, err := a.AnalyzePatterns(context.Background(), "stu-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSeverity_Bounds(t *testing.T) {
	assert.Zero(t, Severity(nil, now))

	var worst []store.MistakeRecord
	for i := range 25 {
		worst = append(worst, rec("w", "t", 10+i, 0))
	}
	assert.InDelta(t, 100.0, Severity(worst, now), 1e-9)

	for _, d := range []int{-3, 0, 5, 10, 40} {
		for _, n := range []int{1, 2, 10, 30} {
			var ms []store.MistakeRecord
			for i := range n {
				ms = append(ms, rec("x", "t", d, time.Duration(i)*24*time.Hour))
			}
			s := Severity(ms, now)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 100.0)
		}
	}
}

func TestDetectPatterns_UsesCandidates(t *testing.T) {
	log := []store.MistakeRecord{
		rec("m1", "integers-addition", 4, time.Hour),
		rec("m2", "integers-addition", 4, time.Hour),
	}
	assert.Empty(t, DetectPatterns(log, catalog.ForSubject("ela"), now))
	assert.Len(t, DetectPatterns(log, catalog.ForSubject("math"), now), 1)
}
