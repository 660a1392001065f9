package curriculum

import (
	"fmt"
	"strings"
)

const refinementSystemPrompt = `You are a K-12 curriculum designer. You revise curricula using aggregate student performance data. Make the smallest set of changes that addresses the problems shown. Keep topic ids stable; only use ids listed for updates and deprecations.`

func buildRefinementMessage(a *Analysis, topics []string) string {
	m := a.Metrics
	var b strings.Builder
	fmt.Fprintf(&b, "Grade: %d\n", m.GradeLevel)
	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Sessions analyzed: %d\n", m.SampleSize)
	fmt.Fprintf(&b, "Overall accuracy: %.1f%%\n", m.OverallAccuracy)

	b.WriteString("\nTopics (weakest first):\n")
	for _, t := range sortedByAccuracy(m.Topics) {
		fmt.Fprintf(&b, "- %s: accuracy %.1f%%, %d students, %.0fs per question (expected %.0fs), difficulty %.1f\n",
			t.TopicID, t.Accuracy, t.StudentCount, t.AverageTimeSeconds, t.ExpectedTimeSeconds, t.AverageDifficulty)
	}
	b.WriteString("\nCurrent topic order:\n")
	for _, line := range topics {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	b.WriteString("\nIssues:\n")
	if len(a.Issues) == 0 {
		b.WriteString("None\n")
	}
	for _, is := range a.Issues {
		fmt.Fprintf(&b, "- %s %s (%s): %s\n", is.TopicID, is.Type, is.Severity, is.Detail)
	}

	if f := m.Feedback; f.Count > 0 {
		fmt.Fprintf(&b, "\nFeedback: %d ratings, average %.1f, %.0f%% negative\n", f.Count, f.AverageRating, f.NegativeShare*100)
	}

	b.WriteString(`
Instructions:
1. For low-accuracy topics, lower the difficulty, lengthen the expected duration or add a bridging topic before them.
2. For too-easy topics, raise the difficulty or merge them into a neighbor.
3. Deprecate a topic only when it is redundant.
4. New topics need an id, title, difficulty (1-10), order and any prerequisites.`)
	return b.String()
}
