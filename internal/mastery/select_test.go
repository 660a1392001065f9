package mastery

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/tutorloop/internal/content"
)

func poolOf(difficulties map[string]int) []content.Question {
	var pool []content.Question
	for id, d := range difficulties {
		pool = append(pool, content.Question{ID: id, Difficulty: d})
	}
	return pool
}

func ids(qs []content.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestSelectAdaptiveQuestions_PrefersBand(t *testing.T) {
	diffs := make(map[string]int)
	for d := 1; d <= 10; d++ {
		diffs[fmt.Sprintf("q%02d", d)] = d
	}
	got := SelectAdaptiveQuestions(poolOf(diffs), 5, 4, rand.New(rand.NewPCG(1, 2)))
	assert.ElementsMatch(t, []string{"q05", "q04", "q06", "q03"}, ids(got))
}

func TestSelectAdaptiveQuestions_TopsUp(t *testing.T) {
	pool := poolOf(map[string]int{"a1": 1, "a2": 2, "a5": 5, "a9": 9, "a10": 10})
	got := SelectAdaptiveQuestions(pool, 5, 3, rand.New(rand.NewPCG(1, 2)))
	assert.ElementsMatch(t, []string{"a5", "a2", "a1"}, ids(got))
}

func TestSelectAdaptiveQuestions_Edges(t *testing.T) {
	pool := poolOf(map[string]int{"a": 3, "b": 4})
	assert.Nil(t, SelectAdaptiveQuestions(pool, 3, 0, nil))
	assert.Nil(t, SelectAdaptiveQuestions(nil, 3, 5, nil))
	assert.Len(t, SelectAdaptiveQuestions(pool, 3, 5, nil), 2)
}

func TestSelectTopic(t *testing.T) {
	path := []content.PathStep{
		{Topic: content.Topic{ID: "done", Difficulty: 5, Order: 1}, Status: content.StatusMastered, Readiness: 100},
		{Topic: content.Topic{ID: "hard", Difficulty: 9, Order: 2}, Status: content.StatusAvailable, Readiness: 100},
		{Topic: content.Topic{ID: "match", Difficulty: 6, Order: 3}, Status: content.StatusInProgress, Readiness: 100},
		{Topic: content.Topic{ID: "locked", Difficulty: 5, Order: 4}, Status: content.StatusLocked, Readiness: 50},
	}
	topic, ok := SelectTopic(path, 5)
	assert.True(t, ok)
	assert.Equal(t, "match", topic.ID)

	_, ok = SelectTopic(path[:1], 5)
	assert.False(t, ok)
}
