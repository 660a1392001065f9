// Package curriculum is the batch feedback loop that revises curricula
// from aggregate student outcomes. It aggregates completed-session
// performance into per-topic metrics, decides whether a curriculum needs
// revision, asks the generative service for refinements and publishes the
// result as a new curriculum version.
package curriculum

import (
	"cmp"
	"slices"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/store"
)

// NegativeRating is the highest rating counted as negative feedback.
const NegativeRating = 2

// TopicPerformance aggregates every performance record for one topic.
type TopicPerformance struct {
	TopicID             string  `json:"topicId"`
	Title               string  `json:"title,omitempty"`
	Order               int     `json:"order"`
	Sessions            int     `json:"sessions"`
	Attempts            int     `json:"attempts"`
	Correct             int     `json:"correct"`
	Accuracy            float64 `json:"accuracy"`
	StudentCount        int     `json:"studentCount"`
	AverageTimeSeconds  float64 `json:"averageTimeSeconds"`
	ExpectedTimeSeconds float64 `json:"expectedTimeSeconds"`
	AverageDifficulty   float64 `json:"averageDifficulty"`
}

// HasData reports whether any answers were recorded for the topic.
func (t *TopicPerformance) HasData() bool {
	return t.Attempts > 0
}

// FeedbackSummary condenses curriculum ratings.
type FeedbackSummary struct {
	Count          int     `json:"count"`
	AverageRating  float64 `json:"averageRating"`
	NegativeShare  float64 `json:"negativeShare"`
	NeedsAttention bool    `json:"needsAttention"`
}

// Metrics is the aggregate performance of one curriculum.
type Metrics struct {
	GradeLevel      int                `json:"gradeLevel"`
	Subject         string             `json:"subject"`
	Version         string             `json:"version"`
	SampleSize      int                `json:"sampleSize"`
	OverallAccuracy float64            `json:"overallAccuracy"`
	Topics          []TopicPerformance `json:"topics"`
	Feedback        FeedbackSummary    `json:"feedback"`
}

// Topic returns the performance of a topic, or nil.
func (m *Metrics) Topic(id string) *TopicPerformance {
	for i := range m.Topics {
		if m.Topics[i].TopicID == id {
			return &m.Topics[i]
		}
	}
	return nil
}

type topicAgg struct {
	sessions   int
	correct    int
	total      int
	duration   float64
	expected   float64
	difficulty float64
	students   map[string]bool
}

// BuildMetrics aggregates performance records and feedback for a
// curriculum. Every curriculum topic appears in the result, in curriculum
// order; records for topics the curriculum no longer has are appended.
// Each record counts once toward the sample size.
func BuildMetrics(records []store.PerformanceRecord, feedback []store.FeedbackRecord, c *content.Curriculum) Metrics {
	m := Metrics{
		GradeLevel: c.GradeLevel,
		Subject:    c.Subject,
		Version:    c.Version,
		SampleSize: len(records),
		Feedback:   SummarizeFeedback(feedback),
	}

	aggs := make(map[string]*topicAgg)
	var order []string
	var correct, total int
	var accuracySum float64
	for _, r := range records {
		a, ok := aggs[r.TopicID]
		if !ok {
			a = &topicAgg{students: make(map[string]bool)}
			aggs[r.TopicID] = a
			order = append(order, r.TopicID)
		}
		a.sessions++
		a.correct += r.Correct
		a.total += r.Total
		a.duration += r.DurationSeconds
		a.expected += r.ExpectedSeconds
		a.difficulty += r.AverageDifficulty
		a.students[r.StudentID] = true

		correct += r.Correct
		total += r.Total
		accuracySum += r.Accuracy
	}

	switch {
	case total > 0:
		m.OverallAccuracy = float64(correct) / float64(total) * 100
	case len(records) > 0:
		m.OverallAccuracy = accuracySum / float64(len(records))
	}

	seen := make(map[string]bool)
	for _, t := range c.Topics {
		seen[t.ID] = true
		m.Topics = append(m.Topics, topicPerformance(t.ID, t.Title, t.Order, aggs[t.ID]))
	}
	for _, id := range order {
		if !seen[id] {
			m.Topics = append(m.Topics, topicPerformance(id, "", 0, aggs[id]))
		}
	}
	return m
}

func topicPerformance(id, title string, order int, a *topicAgg) TopicPerformance {
	tp := TopicPerformance{
		TopicID:             id,
		Title:               title,
		Order:               order,
		ExpectedTimeSeconds: content.DefaultExpectedTimeSeconds,
	}
	if a == nil {
		return tp
	}
	tp.Sessions = a.sessions
	tp.Attempts = a.total
	tp.Correct = a.correct
	tp.StudentCount = len(a.students)
	tp.AverageDifficulty = a.difficulty / float64(a.sessions)
	if a.total > 0 {
		tp.Accuracy = float64(a.correct) / float64(a.total) * 100
		tp.AverageTimeSeconds = a.duration / float64(a.total)
		if a.expected > 0 {
			tp.ExpectedTimeSeconds = a.expected / float64(a.total)
		}
	}
	return tp
}

// SummarizeFeedback averages ratings. Feedback needs attention when the
// average rating is below 3 or more than 30% of ratings are negative.
func SummarizeFeedback(feedback []store.FeedbackRecord) FeedbackSummary {
	var s FeedbackSummary
	if len(feedback) == 0 {
		return s
	}
	sum, negative := 0, 0
	for _, f := range feedback {
		sum += f.Rating
		if f.Rating <= NegativeRating {
			negative++
		}
	}
	s.Count = len(feedback)
	s.AverageRating = float64(sum) / float64(len(feedback))
	s.NegativeShare = float64(negative) / float64(len(feedback))
	s.NeedsAttention = s.AverageRating < 3 || s.NegativeShare > 0.3
	return s
}

// sortedByAccuracy returns topics with data, weakest first.
func sortedByAccuracy(topics []TopicPerformance) []TopicPerformance {
	var out []TopicPerformance
	for _, t := range topics {
		if t.HasData() {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b TopicPerformance) int {
		return cmp.Compare(a.Accuracy, b.Accuracy)
	})
	return out
}
