package mastery

// Difficulty bounds.
const (
	MinDifficulty     = 1
	MaxDifficulty     = 10
	DefaultDifficulty = 5
)

// band maps a lower accuracy bound to the difficulty step applied above it.
type band struct {
	minAccuracy float64
	step        int
}

// bands are checked top-down. 75-81 and 67-74 hold steady; 60-66 and
// 30-59 drop one level.
var bands = []band{
	{95, +2},
	{90, +1},
	{82, +1},
	{75, 0},
	{67, 0},
	{60, -1},
	{30, -1},
	{0, -2},
}

// TargetDifficulty steps current by the band that accuracy (a percentage)
// falls into and clamps the result to [MinDifficulty, MaxDifficulty].
func TargetDifficulty(current int, accuracy float64) int {
	step := -2
	for _, b := range bands {
		if accuracy >= b.minAccuracy {
			step = b.step
			break
		}
	}
	return ClampDifficulty(current + step)
}

// ClampDifficulty bounds d to [MinDifficulty, MaxDifficulty].
func ClampDifficulty(d int) int {
	return min(max(d, MinDifficulty), MaxDifficulty)
}
