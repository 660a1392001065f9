// Package diagnosis classifies student mistakes and turns a student's
// mistake log into prioritized misconception patterns.
package diagnosis

import (
	"time"

	"github.com/abhisek/tutorloop/internal/store"
)

// ErrorCategory classifies a wrong answer.
type ErrorCategory string

const (
	CategoryCareless      ErrorCategory = "careless"
	CategorySpeedRush     ErrorCategory = "speed-rush"
	CategoryMisconception ErrorCategory = "misconception"
	CategoryUnclassified  ErrorCategory = "unclassified"
)

// ClassifyInput holds the context for classification.
type ClassifyInput struct {
	Mistake   store.MistakeRecord
	TimeSpent time.Duration

	// TopicAccuracy is the student's historical accuracy on the topic,
	// 0.0-1.0. Zero when unknown.
	TopicAccuracy float64
}

// Result is the output of classifying a wrong answer.
type Result struct {
	Category        ErrorCategory `json:"category"`
	MisconceptionID string        `json:"misconceptionId,omitempty"`
	Confidence      float64       `json:"confidence"`
	ClassifierName  string        `json:"classifier"`
	Reasoning       string        `json:"reasoning,omitempty"`
}
