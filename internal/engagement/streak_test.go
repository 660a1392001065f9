package engagement

import (
	"testing"
	"time"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func TestStreakDays(t *testing.T) {
	tests := []struct {
		name     string
		activity []time.Time
		want     int
	}{
		{"no activity", nil, 0},
		{"today only", []time.Time{now}, 1},
		{"three days", []time.Time{daysAgo(2), daysAgo(1), now}, 3},
		{"several sessions a day", []time.Time{daysAgo(1), daysAgo(1).Add(time.Hour), now, now.Add(-time.Hour)}, 2},
		{"alive through yesterday", []time.Time{daysAgo(2), daysAgo(1)}, 2},
		{"broken", []time.Time{daysAgo(3), daysAgo(2), now}, 1},
		{"lapsed", []time.Time{daysAgo(3), daysAgo(2)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StreakDays(tt.activity, now); got != tt.want {
				t.Errorf("StreakDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsStreakMilestone(t *testing.T) {
	for days, want := range map[int]bool{
		1: false, 3: true, 4: false, 7: true, 14: true, 30: true, 45: false, 60: true, 90: true,
	} {
		if got := IsStreakMilestone(days); got != want {
			t.Errorf("IsStreakMilestone(%d) = %v, want %v", days, got, want)
		}
	}
}
