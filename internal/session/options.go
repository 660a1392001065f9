package session

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultQuestionCount is used when Options.QuestionCount is zero.
const DefaultQuestionCount = 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options configures StartSession.
type Options struct {
	Type          Type   `json:"type" validate:"required,oneof=practice review remediation assessment"`
	Subject       string `json:"subject" validate:"required"`
	TopicID       string `json:"topicId"`
	QuestionCount int    `json:"questionCount" validate:"gte=0,lte=50"`
}

func (o *Options) normalize(defaultCount int) error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.QuestionCount == 0 {
		o.QuestionCount = cmp.Or(defaultCount, DefaultQuestionCount)
	}
	return nil
}

// strategy picks the question strategy for the options.
func (o *Options) strategy() Strategy {
	switch {
	case o.Type == TypeReview:
		return StrategyReview
	case o.Type == TypeRemediation:
		return StrategyRemediation
	case o.TopicID != "":
		return StrategyTopic
	default:
		return StrategyAdaptive
	}
}

// SubmitOptions carries the client-side context of an answer.
type SubmitOptions struct {
	// StartTime is when the question was shown. When zero, the time the
	// previous answer was accepted (or the session started) is used.
	StartTime time.Time

	// Confidence is the student's self-reported confidence, 0-1.
	Confidence float64

	HintsUsed int
}

var (
	ErrInvalidOptions  = errors.New("invalid session options")
	ErrSessionActive   = errors.New("student already has an active session")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionPaused   = errors.New("session is paused")
	ErrSessionFinished = errors.New("all questions answered")
)
