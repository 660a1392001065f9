package diagnosis

import (
	"math"

	"github.com/abhisek/tutorloop/internal/catalog"
)

// Priority is the urgency of a remediation recommendation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities: high > medium > low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// PriorityFor maps a severity to a priority.
func PriorityFor(severity float64) Priority {
	switch {
	case severity >= 70:
		return PriorityHigh
	case severity >= 40:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Recommendation is the remediation advice for one detected pattern.
type Recommendation struct {
	MisconceptionID  string   `json:"misconceptionId"`
	Name             string   `json:"name"`
	Priority         Priority `json:"priority"`
	Strategies       []string `json:"strategies"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	Severity         float64  `json:"severity"`
	Occurrences      int      `json:"occurrences"`
	AffectedTopics   []string `json:"affectedTopics"`
}

// GenerateRecommendations builds one recommendation per pattern, in the
// order given.
func GenerateRecommendations(patterns []DetectedPattern) []Recommendation {
	recs := make([]Recommendation, 0, len(patterns))
	for _, p := range patterns {
		rec := Recommendation{
			MisconceptionID:  p.MisconceptionID,
			Name:             p.Name,
			Priority:         PriorityFor(p.Severity),
			EstimatedMinutes: EstimatedMinutes(p.Severity, p.Occurrences),
			Severity:         p.Severity,
			Occurrences:      p.Occurrences,
			AffectedTopics:   p.AffectedTopics,
		}
		if m := catalog.Get(p.MisconceptionID); m != nil {
			rec.Strategies = m.Strategies
			if rec.Name == "" {
				rec.Name = m.Name
			}
		}
		recs = append(recs, rec)
	}
	return recs
}

// EstimatedMinutes is round(15 × (1 + severity/100) × (1 + log10(occurrences + 1))).
func EstimatedMinutes(severity float64, occurrences int) int {
	return int(math.Round(15 * (1 + severity/100) * (1 + math.Log10(float64(occurrences)+1))))
}
