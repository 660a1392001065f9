package content

// IsUnlocked reports whether every prerequisite of t is mastered.
func IsUnlocked(t Topic, mastered map[string]bool) bool {
	for _, p := range t.Prerequisites {
		if !mastered[p] {
			return false
		}
	}
	return true
}

// Readiness returns the percentage (0-100) of t's prerequisites already
// mastered. A topic without prerequisites is fully ready.
func Readiness(t Topic, mastered map[string]bool) float64 {
	if len(t.Prerequisites) == 0 {
		return 100
	}
	n := 0
	for _, p := range t.Prerequisites {
		if mastered[p] {
			n++
		}
	}
	return float64(n) / float64(len(t.Prerequisites)) * 100
}

// BuildLearningPath returns the curriculum's topics in prerequisite order
// annotated with status and readiness.
func BuildLearningPath(c *Curriculum, progress Progress) []PathStep {
	ordered := TopologicalOrder(c.Topics)
	steps := make([]PathStep, 0, len(ordered))
	for _, t := range ordered {
		step := PathStep{
			Topic:     t,
			Readiness: Readiness(t, progress.Mastered),
		}
		switch {
		case progress.Mastered[t.ID]:
			step.Status = StatusMastered
		case !IsUnlocked(t, progress.Mastered):
			step.Status = StatusLocked
		case progress.Topics[t.ID].Attempts > 0:
			step.Status = StatusInProgress
		default:
			step.Status = StatusAvailable
		}
		steps = append(steps, step)
	}
	return steps
}
