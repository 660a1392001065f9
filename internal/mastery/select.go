package mastery

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/tutorloop/internal/content"
)

// AdaptiveBand is how far from the target a question may be and still be
// picked before the remainder of the pool.
const AdaptiveBand = 2

// SelectAdaptiveQuestions picks count questions near target. The pool is
// ordered by distance from target; questions within AdaptiveBand are taken
// first, the rest top up the selection, and the result is shuffled with rng
// (the package source when rng is nil).
func SelectAdaptiveQuestions(pool []content.Question, target, count int, rng *rand.Rand) []content.Question {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(a, b content.Question) int {
		if c := cmp.Compare(distance(a.Difficulty, target), distance(b.Difficulty, target)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	selected := make([]content.Question, 0, min(count, len(sorted)))
	var rest []content.Question
	for _, q := range sorted {
		if distance(q.Difficulty, target) <= AdaptiveBand && len(selected) < count {
			selected = append(selected, q)
			continue
		}
		rest = append(rest, q)
	}
	for _, q := range rest {
		if len(selected) == count {
			break
		}
		selected = append(selected, q)
	}

	swap := func(i, j int) { selected[i], selected[j] = selected[j], selected[i] }
	if rng != nil {
		rng.Shuffle(len(selected), swap)
	} else {
		rand.Shuffle(len(selected), swap)
	}
	return selected
}

// SelectTopic picks the unlocked, unmastered topic that best matches the
// student's readiness and target difficulty. Higher readiness wins, then a
// closer difficulty, then curriculum order.
func SelectTopic(path []content.PathStep, target int) (content.Topic, bool) {
	var best *content.PathStep
	for i := range path {
		step := &path[i]
		if step.Status == content.StatusLocked || step.Status == content.StatusMastered {
			continue
		}
		if best == nil || betterTopic(step, best, target) {
			best = step
		}
	}
	if best == nil {
		return content.Topic{}, false
	}
	return best.Topic, true
}

func betterTopic(a, b *content.PathStep, target int) bool {
	if a.Readiness != b.Readiness {
		return a.Readiness > b.Readiness
	}
	da, db := distance(a.Topic.Difficulty, target), distance(b.Topic.Difficulty, target)
	if da != db {
		return da < db
	}
	return a.Topic.Order < b.Topic.Order
}

func distance(d, target int) int {
	if d > target {
		return d - target
	}
	return target - d
}
