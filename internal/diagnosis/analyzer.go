package diagnosis

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/tutorloop/internal/catalog"
	"github.com/abhisek/tutorloop/internal/store"
)

// Pattern detection parameters.
const (
	// MinOccurrences is the number of matching mistakes needed before a
	// misconception is reported. A single mistake is noise.
	MinOccurrences = 2

	RecentWindow      = 7 * 24 * time.Hour
	RecentMistakes    = 3
	FrequencySaturate = 10
)

// DetectedPattern is a misconception the student's mistake log shows
// evidence of. It is derived on demand and never stored.
type DetectedPattern struct {
	MisconceptionID string                `json:"misconceptionId"`
	Name            string                `json:"name"`
	Occurrences     int                   `json:"occurrences"`
	AffectedTopics  []string              `json:"affectedTopics"`
	RecentMistakes  []store.MistakeRecord `json:"recentMistakes"`
	Severity        float64               `json:"severity"`
}

// Analyzer detects misconception patterns in a student's mistake log.
type Analyzer struct {
	mistakes store.MistakeRepo
	now      func() time.Time
}

// NewAnalyzer returns an analyzer reading from mistakes.
func NewAnalyzer(mistakes store.MistakeRepo) *Analyzer {
	return &Analyzer{mistakes: mistakes, now: time.Now}
}

// SetClock overrides the analyzer's time source.
func (a *Analyzer) SetClock(now func() time.Time) {
	a.now = now
}

// AnalyzePatterns returns the student's detected patterns, most severe
// first. An empty subject analyzes every subject.
func (a *Analyzer) AnalyzePatterns(ctx context.Context, studentID, subject string) ([]DetectedPattern, error) {
	log, err := a.mistakes.ListMistakes(ctx, studentID, subject)
	if err != nil {
		return nil, fmt.Errorf("list mistakes: %w", err)
	}
	return DetectPatterns(log, catalog.ForSubject(subject), a.now()), nil
}

// DetectPatterns matches a mistake log against candidate misconceptions.
// A mistake matches a misconception when it was classified as that
// misconception or its topic id contains one of the affected-topic
// substrings.
func DetectPatterns(log []store.MistakeRecord, candidates []*catalog.Misconception, now time.Time) []DetectedPattern {
	var patterns []DetectedPattern
	for _, m := range candidates {
		var matching []store.MistakeRecord
		for _, rec := range log {
			if rec.MisconceptionID == m.ID || m.AffectsTopic(rec.TopicID) {
				matching = append(matching, rec)
			}
		}
		if len(matching) < MinOccurrences {
			continue
		}
		patterns = append(patterns, DetectedPattern{
			MisconceptionID: m.ID,
			Name:            m.Name,
			Occurrences:     len(matching),
			AffectedTopics:  distinctTopics(matching),
			RecentMistakes:  newest(matching, RecentMistakes),
			Severity:        Severity(matching, now),
		})
	}

	slices.SortStableFunc(patterns, func(a, b DetectedPattern) int {
		if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Occurrences, a.Occurrences); c != 0 {
			return c
		}
		return cmp.Compare(a.MisconceptionID, b.MisconceptionID)
	})
	return patterns
}

// Severity scores matching mistakes from 0 to 100:
//
//	recency    = min(recent / total, 1) × 30   (recent = last 7 days)
//	frequency  = min(total / 10, 1) × 40
//	difficulty = (mean difficulty / 10) × 30
func Severity(matching []store.MistakeRecord, now time.Time) float64 {
	total := len(matching)
	if total == 0 {
		return 0
	}

	recent, difficulty := 0, 0
	cutoff := now.Add(-RecentWindow)
	for _, m := range matching {
		if !m.Timestamp.Before(cutoff) {
			recent++
		}
		difficulty += min(max(m.Difficulty, 0), 10)
	}

	recency := min(float64(recent)/float64(total), 1) * 30
	frequency := min(float64(total)/FrequencySaturate, 1) * 40
	weight := float64(difficulty) / float64(total) / 10 * 30
	return recency + frequency + weight
}

func distinctTopics(mistakes []store.MistakeRecord) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, m := range mistakes {
		if !seen[m.TopicID] {
			seen[m.TopicID] = true
			topics = append(topics, m.TopicID)
		}
	}
	slices.Sort(topics)
	return topics
}

// newest returns up to n mistakes, newest first.
func newest(mistakes []store.MistakeRecord, n int) []store.MistakeRecord {
	sorted := slices.Clone(mistakes)
	slices.SortStableFunc(sorted, func(a, b store.MistakeRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return sorted[:min(n, len(sorted))]
}
