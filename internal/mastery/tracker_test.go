package mastery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_NoAttempts(t *testing.T) {
	tr := NewTracker(0)
	assert.Equal(t, DefaultDifficulty, tr.CurrentDifficulty())
	assert.Zero(t, tr.RollingAccuracy())
	assert.Zero(t, tr.AverageDifficulty())
}

func TestTracker_RetunesEveryFiveAttempts(t *testing.T) {
	tr := NewTracker(5)
	for range RetuneEvery - 1 {
		tr.RecordAttempt(true, 5)
	}
	assert.Equal(t, 5, tr.Estimate(), "estimate unchanged before the fifth attempt")
	assert.Equal(t, 7, tr.CurrentDifficulty())

	tr.RecordAttempt(true, 5)
	assert.Equal(t, 7, tr.Estimate())
	assert.Equal(t, 9, tr.CurrentDifficulty())
}

func TestTracker_WindowIsRolling(t *testing.T) {
	tr := NewTracker(5)
	for range WindowSize {
		tr.RecordAttempt(false, 3)
	}
	assert.Zero(t, tr.RollingAccuracy())

	for range WindowSize / 2 {
		tr.RecordAttempt(true, 7)
	}
	assert.Equal(t, WindowSize, tr.Len())
	assert.InDelta(t, 50.0, tr.RollingAccuracy(), 1e-9)
	assert.InDelta(t, 5.0, tr.AverageDifficulty(), 1e-9)
}

func TestTracker_DifficultyStaysInRange(t *testing.T) {
	up := NewTracker(9)
	down := NewTracker(2)
	for range 50 {
		up.RecordAttempt(true, 10)
		down.RecordAttempt(false, 1)
		assert.LessOrEqual(t, up.CurrentDifficulty(), MaxDifficulty)
		assert.GreaterOrEqual(t, down.CurrentDifficulty(), MinDifficulty)
	}
	assert.Equal(t, MaxDifficulty, up.CurrentDifficulty())
	assert.Equal(t, MinDifficulty, down.CurrentDifficulty())
}
