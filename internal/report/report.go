package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/curriculum"
)

const barWidth = 20

// scoreBar draws a 0-100 score as a horizontal bar followed by the number.
func scoreBar(score float64) string {
	filled := int(float64(barWidth) * score / 100)
	filled = min(max(filled, 0), barWidth)
	return barFilled.Render(strings.Repeat(" ", filled)) +
		barEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		valueStyle.Render(fmt.Sprintf(" %5.1f", score))
}

func gradeStyle(grade string) lipgloss.Style {
	switch grade {
	case "A", "B":
		return goodStyle
	case "C":
		return warnStyle
	default:
		return badStyle
	}
}

// Quality renders a quality report with one bar per dimension and the
// recommendations underneath.
func Quality(r *curriculum.QualityReport) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Curriculum quality "+r.Version) + "\n")
	fmt.Fprintf(&b, "%s %s  %s\n",
		labelStyle.Render("overall"),
		valueStyle.Render(fmt.Sprintf("%.1f", r.Overall)),
		gradeStyle(r.Grade).Render(r.Grade))

	var recs []string
	for _, s := range r.Scores() {
		fmt.Fprintf(&b, "%-14s %s\n", s.Name, scoreBar(s.Score))
		recs = append(recs, s.Recommendations...)
	}
	if len(recs) > 0 {
		b.WriteString("\n" + labelStyle.Render("recommendations") + "\n")
		for _, rec := range recs {
			b.WriteString(noteStyle.Render("- "+rec) + "\n")
		}
	}
	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Analysis renders a curriculum analysis with its per-topic metrics.
func Analysis(a *curriculum.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("Grade %d %s v%s", a.GradeLevel, a.Subject, a.Version)))
	verdict := goodStyle.Render("no change needed")
	if a.NeedsOptimization {
		verdict = severityStyle(string(a.Priority)).Render(fmt.Sprintf("optimize (%s, score %d)", a.Priority, a.PriorityScore))
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("verdict"), verdict)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("reason"), valueStyle.Render(a.Reason))
	fmt.Fprintf(&b, "%s %d records, %.1f%% accuracy\n",
		labelStyle.Render("sample"), a.Metrics.SampleSize, a.Metrics.OverallAccuracy)

	if len(a.Metrics.Topics) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", labelStyle.Render(fmt.Sprintf("%-20s %8s %8s %8s", "topic", "attempts", "accuracy", "avg s")))
		for _, t := range a.Metrics.Topics {
			fmt.Fprintf(&b, "%-20s %8d %7.1f%% %8.0f\n", truncate(t.TopicID, 20), t.Attempts, t.Accuracy, t.AverageTimeSeconds)
		}
	}
	if len(a.Issues) > 0 {
		b.WriteString("\n")
		for _, is := range a.Issues {
			fmt.Fprintf(&b, "%s %s %s\n",
				severityStyle(string(is.Severity)).Render(fmt.Sprintf("[%s]", is.Severity)),
				valueStyle.Render(is.TopicID),
				noteStyle.Render(is.Detail))
		}
	}
	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Run renders the summary of an automatic optimization run.
func Run(s *curriculum.RunSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Optimization run") + "\n")
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d  %s %d\n",
		labelStyle.Render("processed"), s.Processed,
		goodStyle.Render("optimized"), s.Optimized,
		labelStyle.Render("skipped"), s.Skipped,
		badStyle.Render("failed"), s.Failed)
	for _, it := range s.Items {
		line := fmt.Sprintf("grade %d %-12s %s", it.GradeLevel, it.Subject, it.Outcome)
		switch {
		case it.Error != "":
			line += " " + badStyle.Render(it.Error)
		case it.Version != "":
			line += " " + goodStyle.Render("v"+it.Version)
		}
		b.WriteString(line + "\n")
	}
	if len(s.Review) > 0 {
		b.WriteString("\n" + labelStyle.Render("needs review") + "\n")
		for _, it := range s.Review {
			fmt.Fprintf(&b, "grade %d %-12s %s %s\n", it.GradeLevel, it.Subject,
				severityStyle(string(it.Priority)).Render(string(it.Priority)),
				noteStyle.Render(it.Reason))
		}
	}
	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// History renders a curriculum's versions, newest first.
func History(versions []*content.Curriculum) string {
	if len(versions) == 0 {
		return noteStyle.Render("no versions")
	}
	var b strings.Builder
	for i, c := range versions {
		marker := "  "
		if i == 0 {
			marker = goodStyle.Render("* ")
		}
		fmt.Fprintf(&b, "%s%-6s %s %s\n", marker, c.Version,
			labelStyle.Render(c.LastUpdated.Format("2006-01-02 15:04")),
			noteStyle.Render(c.OptimizationReason))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
