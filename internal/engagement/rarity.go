package engagement

// Rarity is an award's tier. Higher tiers mark harder achievements.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// tiers lists the minimum score for rare, epic and legendary in that order.
type tiers [3]float64

func (t tiers) rarity(score float64) Rarity {
	switch {
	case score >= t[2]:
		return RarityLegendary
	case score >= t[1]:
		return RarityEpic
	case score >= t[0]:
		return RarityRare
	}
	return RarityCommon
}

var (
	accuracyTiers   = tiers{50, 75, 90}
	streakTiers     = tiers{7, 14, 30}
	difficultyTiers = tiers{4, 6, 8}
)

// SessionRarity grades a completed session by accuracy percentage.
func SessionRarity(accuracy float64) Rarity { return accuracyTiers.rarity(accuracy) }

// StreakRarity grades a run of consecutive practice days.
func StreakRarity(days int) Rarity { return streakTiers.rarity(float64(days)) }

// MasteryRarity grades mastering a topic of the given difficulty (1-10).
func MasteryRarity(difficulty int) Rarity { return difficultyTiers.rarity(float64(difficulty)) }
