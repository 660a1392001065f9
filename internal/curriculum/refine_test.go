package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/tutorloop/internal/content"
)

func refineTopics() []content.Topic {
	return []content.Topic{
		{ID: "integers-intro", Order: 1, Difficulty: 3, ExpectedDurationMinutes: 20},
		{ID: "integers-addition", Order: 2, Difficulty: 4, Prerequisites: []string{"integers-intro"}, ExpectedDurationMinutes: 25},
		{ID: "integers-subtraction", Order: 3, Difficulty: 5, Prerequisites: []string{"integers-addition"}, ExpectedDurationMinutes: 25},
	}
}

func TestRefinementApply_Updates(t *testing.T) {
	title := "Subtracting Integers on the Number Line"
	r := Refinement{TopicUpdates: []TopicUpdate{
		{ID: "integers-subtraction", Title: &title, Difficulty: content.IntPtr(4), ExpectedDurationMinutes: content.IntPtr(30)},
		{ID: "integers-addition", Difficulty: content.IntPtr(4)},
		{ID: "integers-intro", Difficulty: content.IntPtr(42)},
		{ID: "no-such-topic", Difficulty: content.IntPtr(1)},
	}}

	before := refineTopics()
	got, changes := r.Apply("math", before)

	assert.Equal(t, []string{
		"integers-subtraction: title",
		"integers-subtraction: difficulty 5 -> 4",
		"integers-subtraction: duration 25 -> 30 min",
		"integers-intro: difficulty 3 -> 10",
	}, changes)
	assert.Equal(t, title, got[2].Title)
	assert.Equal(t, 4, got[2].Difficulty)
	assert.Equal(t, 10, got[0].Difficulty)

	assert.Equal(t, 5, before[2].Difficulty, "input must not be modified")
}

func TestRefinementApply_NewAndDeprecatedTopics(t *testing.T) {
	r := Refinement{
		NewTopics: []NewTopic{
			{ID: "integer-number-line", Title: "Integers on the Number Line", Difficulty: 2, Order: 1},
			{ID: "integers-review", Title: "Integer Review", Difficulty: 5, Prerequisites: []string{"integers-subtraction"}},
			{ID: "integers-intro", Title: "Duplicate"},
		},
		DeprecatedTopics: []string{"integers-addition", "unknown"},
	}

	got, changes := r.Apply("math", refineTopics())

	assert.Equal(t, []string{
		"added topic integer-number-line",
		"added topic integers-review",
		"removed topic integers-addition",
	}, changes)

	ids := make([]string, len(got))
	for i, tp := range got {
		ids[i] = tp.ID
	}
	assert.Equal(t, []string{"integers-intro", "integer-number-line", "integers-subtraction", "integers-review"}, ids)

	review := got[3]
	assert.Equal(t, "math", review.Subject)
	assert.Equal(t, 4, review.Order)
	assert.Empty(t, got[2].Prerequisites, "removed topic stripped from prerequisites")
	assert.NoError(t, content.ValidatePrerequisites(got))
}

func TestRefinementApply_NoChanges(t *testing.T) {
	r := Refinement{
		Reason:       "keep as is",
		TopicUpdates: []TopicUpdate{{ID: "integers-addition", Difficulty: content.IntPtr(4), Order: content.IntPtr(2)}},
	}
	got, changes := r.Apply("math", refineTopics())
	assert.Empty(t, changes)
	assert.Equal(t, refineTopics(), got)
}
