package spacedrep

import "math"

// SM-2 constants.
const (
	DefaultEase = 2.5
	MinEase     = 1.3

	// FirstIntervalDays and SecondIntervalDays are the fixed intervals for
	// the first and second successful repetition. Later intervals grow by
	// the ease factor.
	FirstIntervalDays  = 1
	SecondIntervalDays = 6

	// PassingQuality is the lowest quality that counts as recalled.
	PassingQuality = 3
	MaxQuality     = 5
)

// Schedule is the scheduling state carried from one review to the next.
type Schedule struct {
	IntervalDays int
	Repetition   int
	Ease         float64
}

// NextSchedule applies one SM-2 step. It is a pure function of its inputs.
//
// A quality at or below 2 treats the card as forgotten: the repetition count
// resets to 0 and the card comes back the next day. Otherwise the repetition
// count increments and the interval becomes 1 day for the first repetition,
// 6 days for the second, and round(interval × ease) after that.
// The ease factor moves by 0.1 - (5-q)(0.08 + (5-q)0.02) and never drops
// below 1.3.
func NextSchedule(quality, intervalDays, repetition int, ease float64) Schedule {
	quality = clampQuality(quality)
	if ease < MinEase {
		ease = MinEase
	}

	next := Schedule{Ease: nextEase(ease, quality)}
	if quality < PassingQuality {
		next.Repetition = 0
		next.IntervalDays = FirstIntervalDays
		return next
	}

	next.Repetition = repetition + 1
	switch next.Repetition {
	case 1:
		next.IntervalDays = FirstIntervalDays
	case 2:
		next.IntervalDays = SecondIntervalDays
	default:
		prev := max(intervalDays, 1)
		next.IntervalDays = int(math.Round(float64(prev) * ease))
	}
	return next
}

func nextEase(ease float64, quality int) float64 {
	miss := float64(MaxQuality - quality)
	e := ease + 0.1 - miss*(0.08+miss*0.02)
	if e < MinEase {
		e = MinEase
	}
	return math.Round(e*100) / 100
}

func clampQuality(q int) int {
	return min(max(q, 0), MaxQuality)
}
