package curriculum

import (
	"fmt"
	"strings"
	"time"
)

// MinSampleSize is the number of performance records needed before a
// curriculum is judged. Below it the data is too noisy to act on.
const MinSampleSize = 30

// Analysis reasons.
const (
	ReasonInsufficientData = "insufficient-data"
	ReasonWithinTargets    = "within-targets"
)

// InsufficientSampleError is returned when an operation needs more
// performance data than has been collected.
type InsufficientSampleError struct {
	SampleSize int
	Required   int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("insufficient sample: %d performance records, need %d", e.SampleSize, e.Required)
}

// Priority is how urgently a curriculum needs revision.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IssueType classifies a topic-level problem.
type IssueType string

const (
	IssueLowAccuracy   IssueType = "low-accuracy"
	IssueTooEasy       IssueType = "too-easy"
	IssueRushing       IssueType = "rushing"
	IssueLowEngagement IssueType = "low-engagement"
)

// Severity of a topic-level issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue thresholds.
const (
	LowAccuracyThreshold  = 50.0
	TooEasyThreshold      = 95.0
	RushingRatio          = 0.5
	MinStudentsPerTopic   = 5
	LowOverallAccuracy    = 60.0
	MaxHighIssues         = 3
	MaxTopicsOutsideRange = 5
)

// Issue is one problem found with a topic.
type Issue struct {
	TopicID  string    `json:"topicId"`
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Detail   string    `json:"detail"`
}

// Analysis is the verdict on whether a curriculum needs revision.
type Analysis struct {
	GradeLevel        int       `json:"gradeLevel"`
	Subject           string    `json:"subject"`
	Version           string    `json:"version"`
	NeedsOptimization bool      `json:"needsOptimization"`
	Reason            string    `json:"reason"`
	Issues            []Issue   `json:"issues"`
	Priority          Priority  `json:"priority"`
	PriorityScore     int       `json:"priorityScore"`
	Metrics           Metrics   `json:"metrics"`
	AnalyzedAt        time.Time `json:"analyzedAt"`
}

// Evaluate judges metrics. With fewer than MinSampleSize records it never
// recommends optimization.
func Evaluate(m Metrics) Analysis {
	a := Analysis{
		GradeLevel: m.GradeLevel,
		Subject:    m.Subject,
		Version:    m.Version,
		Priority:   PriorityLow,
		Metrics:    m,
	}
	if m.SampleSize < MinSampleSize {
		a.Reason = ReasonInsufficientData
		return a
	}

	a.Issues = DetectIssues(m)
	a.PriorityScore = PriorityScore(m, a.Issues)
	a.Priority = priorityFor(a.PriorityScore)

	reasons := optimizeReasons(m, a.Issues)
	a.NeedsOptimization = len(reasons) > 0
	if a.NeedsOptimization {
		a.Reason = strings.Join(reasons, "; ")
	} else {
		a.Reason = ReasonWithinTargets
	}
	return a
}

// DetectIssues applies the per-topic issue rules. Accuracy and timing
// rules only apply to topics with recorded answers.
func DetectIssues(m Metrics) []Issue {
	var issues []Issue
	for _, t := range m.Topics {
		if t.HasData() {
			switch {
			case t.Accuracy < LowAccuracyThreshold:
				issues = append(issues, Issue{
					TopicID:  t.TopicID,
					Type:     IssueLowAccuracy,
					Severity: SeverityHigh,
					Detail:   fmt.Sprintf("accuracy %.1f%% below %.0f%%", t.Accuracy, LowAccuracyThreshold),
				})
			case t.Accuracy > TooEasyThreshold:
				issues = append(issues, Issue{
					TopicID:  t.TopicID,
					Type:     IssueTooEasy,
					Severity: SeverityMedium,
					Detail:   fmt.Sprintf("accuracy %.1f%% above %.0f%%", t.Accuracy, TooEasyThreshold),
				})
			}
			if t.AverageTimeSeconds < RushingRatio*t.ExpectedTimeSeconds {
				issues = append(issues, Issue{
					TopicID:  t.TopicID,
					Type:     IssueRushing,
					Severity: SeverityLow,
					Detail:   fmt.Sprintf("average %.0fs against %.0fs expected", t.AverageTimeSeconds, t.ExpectedTimeSeconds),
				})
			}
		}
		if t.StudentCount < MinStudentsPerTopic {
			issues = append(issues, Issue{
				TopicID:  t.TopicID,
				Type:     IssueLowEngagement,
				Severity: SeverityMedium,
				Detail:   fmt.Sprintf("%d students", t.StudentCount),
			})
		}
	}
	return issues
}

// ShouldOptimize reports whether metrics call for a revision: overall
// accuracy below 60, at least 3 high-severity issues, feedback needing
// attention, or more than 5 topics with accuracy outside [50, 95].
func ShouldOptimize(m Metrics) bool {
	return len(optimizeReasons(m, DetectIssues(m))) > 0
}

func optimizeReasons(m Metrics, issues []Issue) []string {
	var reasons []string
	if m.OverallAccuracy < LowOverallAccuracy {
		reasons = append(reasons, fmt.Sprintf("overall accuracy %.1f%% below %.0f%%", m.OverallAccuracy, LowOverallAccuracy))
	}
	if high := countSeverity(issues, SeverityHigh); high >= MaxHighIssues {
		reasons = append(reasons, fmt.Sprintf("%d high-severity issues", high))
	}
	if m.Feedback.NeedsAttention {
		reasons = append(reasons, fmt.Sprintf("feedback average %.1f with %.0f%% negative", m.Feedback.AverageRating, m.Feedback.NegativeShare*100))
	}
	outside := 0
	for _, t := range m.Topics {
		if t.HasData() && (t.Accuracy < LowAccuracyThreshold || t.Accuracy > TooEasyThreshold) {
			outside++
		}
	}
	if outside > MaxTopicsOutsideRange {
		reasons = append(reasons, fmt.Sprintf("%d topics with accuracy outside [%.0f, %.0f]", outside, LowAccuracyThreshold, TooEasyThreshold))
	}
	return reasons
}

// PriorityScore weighs how many students the issues touch, the number of
// high-severity issues and very low overall accuracy:
//
//	average students on affected topics  >50 +3, >20 +2, >0 +1
//	high-severity issues                 +2 each
//	overall accuracy                     <40 +5, <50 +4, <60 +3
func PriorityScore(m Metrics, issues []Issue) int {
	score := 0

	affected := make(map[string]bool)
	for _, is := range issues {
		affected[is.TopicID] = true
	}
	students := 0
	for _, t := range m.Topics {
		if affected[t.TopicID] {
			students += t.StudentCount
		}
	}
	if len(affected) > 0 {
		avg := float64(students) / float64(len(affected))
		switch {
		case avg > 50:
			score += 3
		case avg > 20:
			score += 2
		case avg > 0:
			score++
		}
	}

	score += 2 * countSeverity(issues, SeverityHigh)

	switch {
	case m.OverallAccuracy < 40:
		score += 5
	case m.OverallAccuracy < 50:
		score += 4
	case m.OverallAccuracy < 60:
		score += 3
	}
	return score
}

// PriorityOf scores metrics and maps the score to a priority.
func PriorityOf(m Metrics) Priority {
	return priorityFor(PriorityScore(m, DetectIssues(m)))
}

func priorityFor(score int) Priority {
	switch {
	case score >= 7:
		return PriorityHigh
	case score >= 4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func countSeverity(issues []Issue, s Severity) int {
	n := 0
	for _, is := range issues {
		if is.Severity == s {
			n++
		}
	}
	return n
}
