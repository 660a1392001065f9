package spacedrep

import "time"

// ComputeQuality scores a review answer on the 0-5 scale.
//
// Incorrect answers score 2, 1 or 0 by confidence (> 0.5, > 0.2, else).
// Correct answers score 5 with confidence >= 0.9 and at most 70% of the
// expected time, 4 with confidence >= 0.8 and no more than the expected
// time, and 3 otherwise.
func ComputeQuality(correct bool, confidence float64, timeSpent, expected time.Duration) int {
	if !correct {
		switch {
		case confidence > 0.5:
			return 2
		case confidence > 0.2:
			return 1
		default:
			return 0
		}
	}

	if expected <= 0 {
		expected = DefaultExpectedTime
	}
	ratio := timeSpent.Seconds() / expected.Seconds()

	switch {
	case confidence >= 0.9 && ratio <= 0.7:
		return 5
	case confidence >= 0.8 && ratio <= 1.0:
		return 4
	default:
		return 3
	}
}

// DefaultExpectedTime is used when a question carries no expected time.
const DefaultExpectedTime = 60 * time.Second
