package curriculum

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/mastery"
)

// Refinement is the set of changes proposed for a curriculum.
type Refinement struct {
	Reason           string        `json:"reason"`
	TopicUpdates     []TopicUpdate `json:"topic_updates"`
	NewTopics        []NewTopic    `json:"new_topics"`
	DeprecatedTopics []string      `json:"deprecated_topics"`
}

// NewTopic is a topic proposed for addition.
type NewTopic struct {
	ID                      string   `json:"id"`
	Title                   string   `json:"title"`
	Description             string   `json:"description,omitempty"`
	Difficulty              int      `json:"difficulty"`
	Prerequisites           []string `json:"prerequisites,omitempty"`
	ExpectedDurationMinutes int      `json:"expected_duration_minutes,omitempty"`
	Order                   int      `json:"order,omitempty"`
	Objectives              []string `json:"objectives,omitempty"`
}

// TopicUpdate overrides fields of an existing topic. Nil fields are kept.
type TopicUpdate struct {
	ID                      string   `json:"id"`
	Title                   *string  `json:"title,omitempty"`
	Description             *string  `json:"description,omitempty"`
	Difficulty              *int     `json:"difficulty,omitempty"`
	ExpectedDurationMinutes *int     `json:"expected_duration_minutes,omitempty"`
	Order                   *int     `json:"order,omitempty"`
	Objectives              []string `json:"objectives,omitempty"`
}

// Apply returns a copy of subject's topics with the refinement applied and a
// description of every change made: field overrides first, then new
// topics, then removals. Deprecated topics are also dropped from other
// topics' prerequisites. The result is sorted by Order.
func (r *Refinement) Apply(subject string, topics []content.Topic) ([]content.Topic, []string) {
	out := make([]content.Topic, len(topics))
	for i, t := range topics {
		out[i] = t
		out[i].Prerequisites = slices.Clone(t.Prerequisites)
		out[i].Objectives = slices.Clone(t.Objectives)
	}
	index := func(id string) int {
		return slices.IndexFunc(out, func(t content.Topic) bool { return t.ID == id })
	}

	var changes []string
	for _, u := range r.TopicUpdates {
		i := index(u.ID)
		if i < 0 {
			continue
		}
		if c := u.applyTo(&out[i]); len(c) > 0 {
			changes = append(changes, c...)
		}
	}

	for _, nt := range r.NewTopics {
		if nt.ID == "" || index(nt.ID) >= 0 {
			continue
		}
		t := content.Topic{
			ID:                      nt.ID,
			Subject:                 subject,
			Title:                   nt.Title,
			Description:             nt.Description,
			Difficulty:              mastery.ClampDifficulty(nt.Difficulty),
			Prerequisites:           slices.Clone(nt.Prerequisites),
			ExpectedDurationMinutes: nt.ExpectedDurationMinutes,
			Order:                   nt.Order,
			Objectives:              slices.Clone(nt.Objectives),
		}
		if t.Order == 0 {
			t.Order = maxOrder(out) + 1
		}
		out = append(out, t)
		changes = append(changes, fmt.Sprintf("added topic %s", t.ID))
	}

	for _, id := range r.DeprecatedTopics {
		i := index(id)
		if i < 0 {
			continue
		}
		out = slices.Delete(out, i, i+1)
		for j := range out {
			out[j].Prerequisites = slices.DeleteFunc(out[j].Prerequisites, func(p string) bool { return p == id })
		}
		changes = append(changes, fmt.Sprintf("removed topic %s", id))
	}

	slices.SortStableFunc(out, func(a, b content.Topic) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out, changes
}

func (u *TopicUpdate) applyTo(t *content.Topic) []string {
	var changes []string
	if u.Title != nil && *u.Title != "" && *u.Title != t.Title {
		t.Title = *u.Title
		changes = append(changes, fmt.Sprintf("%s: title", t.ID))
	}
	if u.Description != nil && *u.Description != t.Description {
		t.Description = *u.Description
		changes = append(changes, fmt.Sprintf("%s: description", t.ID))
	}
	if u.Difficulty != nil {
		if d := mastery.ClampDifficulty(*u.Difficulty); d != t.Difficulty {
			changes = append(changes, fmt.Sprintf("%s: difficulty %d -> %d", t.ID, t.Difficulty, d))
			t.Difficulty = d
		}
	}
	if u.ExpectedDurationMinutes != nil && *u.ExpectedDurationMinutes > 0 && *u.ExpectedDurationMinutes != t.ExpectedDurationMinutes {
		changes = append(changes, fmt.Sprintf("%s: duration %d -> %d min", t.ID, t.ExpectedDurationMinutes, *u.ExpectedDurationMinutes))
		t.ExpectedDurationMinutes = *u.ExpectedDurationMinutes
	}
	if u.Order != nil && *u.Order != t.Order {
		changes = append(changes, fmt.Sprintf("%s: order %d -> %d", t.ID, t.Order, *u.Order))
		t.Order = *u.Order
	}
	if len(u.Objectives) > 0 && !slices.Equal(u.Objectives, t.Objectives) {
		t.Objectives = slices.Clone(u.Objectives)
		changes = append(changes, fmt.Sprintf("%s: objectives", t.ID))
	}
	return changes
}

func maxOrder(topics []content.Topic) int {
	m := 0
	for _, t := range topics {
		m = max(m, t.Order)
	}
	return m
}
