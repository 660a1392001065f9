package diagnosis

import (
	"time"

	"github.com/abhisek/tutorloop/internal/catalog"
)

// Classifier is a rule-based error classifier. ok is false when the rule
// does not apply.
type Classifier interface {
	Name() string
	Classify(input *ClassifyInput) (r Result, ok bool)
}

// DefaultClassifiers returns classifiers in priority order. An answer with
// a recognizable signature is evidence of a misconception even when rushed,
// so the signature rule runs first.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&SignatureClassifier{},
		&SpeedRushClassifier{},
		&CarelessClassifier{},
	}
}

// RunClassifiers executes rule-based classifiers in order and returns the
// first match.
func RunClassifiers(classifiers []Classifier, input *ClassifyInput) (Result, bool) {
	for _, c := range classifiers {
		if r, ok := c.Classify(input); ok {
			r.ClassifierName = c.Name()
			return r, true
		}
	}
	return Result{}, false
}

// SignatureClassifier maps numeric answer signatures (a dropped sign, a
// shifted decimal point) to catalog misconceptions.
type SignatureClassifier struct{}

func (c *SignatureClassifier) Name() string { return "signature" }

func (c *SignatureClassifier) Classify(input *ClassifyInput) (Result, bool) {
	sig := catalog.DetectSignature(input.Mistake.StudentAnswer, input.Mistake.CorrectAnswer)
	if sig == catalog.SignatureNone {
		return Result{}, false
	}
	if sig == catalog.SignatureOffByOne {
		return Result{Category: CategoryCareless, Confidence: 0.6, Reasoning: string(sig)}, true
	}
	id := catalog.MisconceptionFor(sig)
	if id == "" {
		return Result{}, false
	}
	return Result{
		Category:        CategoryMisconception,
		MisconceptionID: id,
		Confidence:      0.85,
		Reasoning:       string(sig),
	}, true
}

// SpeedRushThreshold is the answer time under which a wrong answer is
// treated as rushed.
const SpeedRushThreshold = 2 * time.Second

// SpeedRushClassifier flags answers submitted too quickly as speed-rush errors.
type SpeedRushClassifier struct{}

func (c *SpeedRushClassifier) Name() string { return "speed-rush" }

func (c *SpeedRushClassifier) Classify(input *ClassifyInput) (Result, bool) {
	if input.TimeSpent > 0 && input.TimeSpent < SpeedRushThreshold {
		return Result{Category: CategorySpeedRush, Confidence: 0.9}, true
	}
	return Result{}, false
}

// CarelessAccuracyThreshold is the minimum historical accuracy (exclusive)
// for a wrong answer to be classified as a careless error.
const CarelessAccuracyThreshold = 0.80

// CarelessClassifier flags wrong answers from high-accuracy students as
// slips rather than knowledge gaps.
type CarelessClassifier struct{}

func (c *CarelessClassifier) Name() string { return "careless" }

func (c *CarelessClassifier) Classify(input *ClassifyInput) (Result, bool) {
	if input.TopicAccuracy > CarelessAccuracyThreshold {
		return Result{Category: CategoryCareless, Confidence: 0.8}, true
	}
	return Result{}, false
}
