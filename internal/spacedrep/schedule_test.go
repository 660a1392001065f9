package spacedrep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSchedule(t *testing.T) {
	tests := []struct {
		name       string
		quality    int
		interval   int
		repetition int
		ease       float64
		want       Schedule
	}{
		{"forgotten resets", 2, 15, 4, 2.5, Schedule{IntervalDays: 1, Repetition: 0, Ease: 2.18}},
		{"blackout", 0, 6, 2, 2.5, Schedule{IntervalDays: 1, Repetition: 0, Ease: 1.7}},
		{"first repetition", 4, 0, 0, 2.5, Schedule{IntervalDays: 1, Repetition: 1, Ease: 2.5}},
		{"second repetition", 5, 1, 1, 2.5, Schedule{IntervalDays: 6, Repetition: 2, Ease: 2.6}},
		{"third repetition grows by ease", 4, 6, 2, 2.5, Schedule{IntervalDays: 15, Repetition: 3, Ease: 2.5}},
		{"hard recall lowers ease", 3, 6, 2, 2.5, Schedule{IntervalDays: 15, Repetition: 3, Ease: 2.36}},
		{"ease floor", 3, 10, 5, 1.3, Schedule{IntervalDays: 13, Repetition: 6, Ease: 1.3}},
		{"quality clamped high", 9, 1, 1, 2.5, Schedule{IntervalDays: 6, Repetition: 2, Ease: 2.6}},
		{"quality clamped low", -3, 6, 2, 2.5, Schedule{IntervalDays: 1, Repetition: 0, Ease: 1.7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextSchedule(tt.quality, tt.interval, tt.repetition, tt.ease)
			assert.Equal(t, tt.want.IntervalDays, got.IntervalDays)
			assert.Equal(t, tt.want.Repetition, got.Repetition)
			assert.InDelta(t, tt.want.Ease, got.Ease, 1e-9)
		})
	}
}

func TestNextSchedule_Deterministic(t *testing.T) {
	for q := 0; q <= MaxQuality; q++ {
		for rep := 0; rep < 6; rep++ {
			a := NextSchedule(q, 6, rep, 2.2)
			b := NextSchedule(q, 6, rep, 2.2)
			assert.Equal(t, a, b, "quality %d repetition %d", q, rep)
		}
	}
}

func TestNextSchedule_EaseNeverBelowFloor(t *testing.T) {
	ease := DefaultEase
	interval, rep := 1, 1
	for range 20 {
		s := NextSchedule(0, interval, rep, ease)
		assert.GreaterOrEqual(t, s.Ease, MinEase)
		ease, interval, rep = s.Ease, s.IntervalDays, s.Repetition
	}
}
