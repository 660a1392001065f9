package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/store"
)

func event(seq int64, purpose, model string, in, out int, ms int64) store.LLMRequestEvent {
	return store.LLMRequestEvent{
		Sequence:  seq,
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		LLMRequestEventData: store.LLMRequestEventData{
			Provider:     "anthropic",
			Model:        model,
			Purpose:      purpose,
			InputTokens:  in,
			OutputTokens: out,
			LatencyMs:    ms,
			Success:      true,
		},
	}
}

func TestAggregateUsage(t *testing.T) {
	events := []store.LLMRequestEvent{
		event(1, "hint", "claude-haiku-4-5", 100, 20, 300),
		event(2, "lesson", "claude-haiku-4-5", 400, 300, 900),
		event(3, "hint", "claude-haiku-4-5", 120, 30, 500),
	}
	got := aggregateUsage(events, func(e store.LLMRequestEvent) string { return e.Purpose })
	require.Len(t, got, 2)
	assert.Equal(t, "hint", got[0].Key)
	assert.Equal(t, 2, got[0].Calls)
	assert.Equal(t, 220, got[0].InputTokens)
	assert.Equal(t, int64(400), got[0].AvgLatencyMs())
	assert.Equal(t, "lesson", got[1].Key)
}

func TestPrintUsageFlagsUnknownModels(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf, []store.LLMRequestEvent{
		event(1, "hint", "claude-haiku-4-5", 1000, 100, 300),
		event(2, "hint", "in-house-model", 10, 10, 10),
	})
	out := buf.String()
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "Pricing unavailable for: in-house-model")
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	e := event(7, "hint", "gpt-4o-mini", 10, 5, 42)
	e.ResponseBody = `{"hint":"count back"}`
	printEvent(&buf, e)
	out := buf.String()
	assert.Contains(t, out, "ID:        7")
	assert.Contains(t, out, `{"hint":"count back"}`)
	assert.Contains(t, out, "(not captured)")
}

func TestGradeSubject(t *testing.T) {
	grade, subject, err := gradeSubject([]string{"6", "math"})
	require.NoError(t, err)
	assert.Equal(t, 6, grade)
	assert.Equal(t, "math", subject)

	for _, bad := range []string{"0", "13", "six"} {
		_, _, err := gradeSubject([]string{bad, "math"})
		assert.Error(t, err, bad)
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0012", formatCost(0.0012))
	assert.Equal(t, "$1.50", formatCost(1.5))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "tutorloop (devel)\n", buf.String())
}
