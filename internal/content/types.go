// Package content holds curriculum reference data (topics, questions,
// versioned curricula) and the Source interface the engine reads it through.
package content

import "time"

// QuestionType is the presentation format of a question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeNumeric        QuestionType = "numeric"
	TypeShortAnswer    QuestionType = "short-answer"
	TypeTrueFalse      QuestionType = "true-false"
)

// DefaultExpectedTimeSeconds applies to questions without an explicit
// expected answer time.
const DefaultExpectedTimeSeconds = 60

// Topic is one unit of a curriculum.
type Topic struct {
	ID                      string   `json:"id" yaml:"id"`
	Subject                 string   `json:"subject" yaml:"subject"`
	Title                   string   `json:"title" yaml:"title"`
	Description             string   `json:"description,omitempty" yaml:"description"`
	Difficulty              int      `json:"difficulty" yaml:"difficulty"`
	Prerequisites           []string `json:"prerequisites,omitempty" yaml:"prerequisites"`
	ExpectedDurationMinutes int      `json:"expectedDurationMinutes" yaml:"expected_duration_minutes"`
	Order                   int      `json:"order" yaml:"order"`
	Objectives              []string `json:"objectives,omitempty" yaml:"objectives"`
}

// Question is immutable reference data for a single prompt.
type Question struct {
	ID                  string       `json:"id" yaml:"id"`
	TopicID             string       `json:"topicId" yaml:"topic_id"`
	Difficulty          int          `json:"difficulty" yaml:"difficulty"`
	Prompt              string       `json:"prompt" yaml:"prompt"`
	CorrectAnswer       string       `json:"correctAnswer" yaml:"answer"`
	Explanation         string       `json:"explanation,omitempty" yaml:"explanation"`
	Type                QuestionType `json:"type" yaml:"type"`
	Choices             []string     `json:"choices,omitempty" yaml:"choices"`
	Hints               []string     `json:"hints,omitempty" yaml:"hints"`
	ExpectedTimeSeconds int          `json:"expectedTimeSeconds" yaml:"expected_time_seconds"`
}

// ExpectedTime returns the expected answer time, applying the default.
func (q *Question) ExpectedTime() time.Duration {
	secs := q.ExpectedTimeSeconds
	if secs <= 0 {
		secs = DefaultExpectedTimeSeconds
	}
	return time.Duration(secs) * time.Second
}

// Curriculum is one version of the ordered topic list for a grade and subject.
type Curriculum struct {
	ID                 string    `json:"id"`
	GradeLevel         int       `json:"gradeLevel"`
	Subject            string    `json:"subject"`
	Topics             []Topic   `json:"topics"`
	Version            string    `json:"version"`
	LastUpdated        time.Time `json:"lastUpdated"`
	OptimizationReason string    `json:"optimizationReason,omitempty"`

	// PreviousID and PreviousVersion point at the version this one replaced.
	PreviousID      string `json:"previousId,omitempty"`
	PreviousVersion string `json:"previousVersion,omitempty"`
}

// Topic returns the topic with the given id, or nil.
func (c *Curriculum) Topic(id string) *Topic {
	for i := range c.Topics {
		if c.Topics[i].ID == id {
			return &c.Topics[i]
		}
	}
	return nil
}

// Key identifies a curriculum independent of its version.
type Key struct {
	GradeLevel int
	Subject    string
}

// TopicStatus is a topic's state on a student's learning path.
type TopicStatus string

const (
	StatusLocked     TopicStatus = "locked"
	StatusAvailable  TopicStatus = "available"
	StatusInProgress TopicStatus = "in-progress"
	StatusMastered   TopicStatus = "mastered"
)

// TopicProgress is a student's attempt record on one topic.
type TopicProgress struct {
	Attempts int
	Correct  int
}

// Progress is the student state GetLearningPath needs.
type Progress struct {
	Mastered map[string]bool
	Topics   map[string]TopicProgress
}

// PathStep is one entry of a learning path.
type PathStep struct {
	Topic     Topic       `json:"topic"`
	Status    TopicStatus `json:"status"`
	Readiness float64     `json:"readiness"`
}
