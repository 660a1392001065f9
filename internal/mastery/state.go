// Package mastery tracks per-student adaptive difficulty and per-topic
// mastery.
package mastery

// Status is a topic's mastery status for one student.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusMastered   Status = "mastered"
)

// Mastery thresholds: a topic is mastered at MasteryAccuracy percent or
// better over at least MasteryMinAttempts attempts.
const (
	MasteryAccuracy    = 80.0
	MasteryMinAttempts = 10
)

// StateTransition records a topic status change caused by an attempt.
type StateTransition struct {
	TopicID string `json:"topicId"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

// Mastered reports whether the transition reached StatusMastered.
func (t *StateTransition) Mastered() bool {
	return t != nil && t.To == StatusMastered
}

// IsMastered applies the mastery rule to an accuracy percentage and an
// attempt count.
func IsMastered(accuracy float64, attempts int) bool {
	return attempts >= MasteryMinAttempts && accuracy >= MasteryAccuracy
}

// TopicStats counts a student's attempts on one topic.
type TopicStats struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// Accuracy returns the percentage of correct attempts, 0 when unattempted.
func (s TopicStats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts) * 100
}

// Status derives the topic status from the counts.
func (s TopicStats) Status() Status {
	switch {
	case s.Attempts == 0:
		return StatusNotStarted
	case IsMastered(s.Accuracy(), s.Attempts):
		return StatusMastered
	default:
		return StatusInProgress
	}
}
