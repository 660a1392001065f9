package engagement

import (
	"slices"
	"time"
)

// StreakMilestones are the day streaks that earn an award.
var StreakMilestones = []int{3, 7, 14, 30}

// IsStreakMilestone reports whether a streak of days earns an award. Past
// the last milestone, every further 30 days does.
func IsStreakMilestone(days int) bool {
	if slices.Contains(StreakMilestones, days) {
		return true
	}
	last := StreakMilestones[len(StreakMilestones)-1]
	return days > last && days%last == 0
}

// StreakDays counts consecutive UTC days with activity, ending on the day
// of now. A streak whose last active day is yesterday is still alive and
// counts up to yesterday.
func StreakDays(activity []time.Time, now time.Time) int {
	days := make(map[time.Time]bool, len(activity))
	for _, t := range activity {
		days[day(t)] = true
	}

	cursor := day(now)
	if !days[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	n := 0
	for days[cursor] {
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return n
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
