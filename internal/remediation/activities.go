package remediation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/tutorloop/internal/catalog"
	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/mastery"
)

// Practice question counts per activity.
const (
	GuidedQuestions      = 3
	IndependentQuestions = 5
)

// activityInput is everything a builder needs for one session.
type activityInput struct {
	misconception  *catalog.Misconception
	recommendation diagnosis.Recommendation
	pattern        diagnosis.DetectedPattern
	gradeLevel     int
	minutes        int

	// used collects question ids already placed in the session so practice
	// activities do not repeat each other.
	used []string
}

type activityBuilder func(ctx context.Context, p *Planner, in *activityInput) (Activity, error)

var activityBuilders = map[ActivityType]activityBuilder{
	ActivityExplanation:         buildExplanation,
	ActivityGuidedPractice:      buildGuidedPractice,
	ActivityIndependentPractice: buildIndependentPractice,
}

// activityShare is the fraction of session minutes each activity gets.
var activityShare = map[ActivityType]float64{
	ActivityExplanation:         0.2,
	ActivityGuidedPractice:      0.4,
	ActivityIndependentPractice: 0.4,
}

func activityMinutes(t ActivityType, total int) int {
	return max(1, int(math.Round(float64(total)*activityShare[t])))
}

func buildExplanation(ctx context.Context, p *Planner, in *activityInput) (Activity, error) {
	var recent []string
	for _, m := range in.pattern.RecentMistakes {
		recent = append(recent, fmt.Sprintf("Answered %s, correct was %s (%s)", m.StudentAnswer, m.CorrectAnswer, m.TopicID))
	}
	lesson := p.lessons.Write(ctx, LessonInput{
		Misconception: in.misconception,
		GradeLevel:    in.gradeLevel,
		RecentErrors:  recent,
	})
	return Activity{
		Type:             ActivityExplanation,
		Title:            lesson.Title,
		Content:          lesson.Explanation,
		WorkedExample:    lesson.WorkedExample,
		EstimatedMinutes: activityMinutes(ActivityExplanation, in.minutes),
	}, nil
}

// buildGuidedPractice picks easier questions: one level below the average
// difficulty of the mistakes that formed the pattern.
func buildGuidedPractice(ctx context.Context, p *Planner, in *activityInput) (Activity, error) {
	target := mastery.ClampDifficulty(mistakeDifficulty(in.pattern) - 1)
	qs, err := p.practiceQuestions(ctx, in, target, GuidedQuestions)
	if err != nil {
		return Activity{}, err
	}
	return Activity{
		Type:             ActivityGuidedPractice,
		Title:            "Guided practice: " + in.misconception.Name,
		Content:          firstStrategy(in.misconception),
		Questions:        qs,
		EstimatedMinutes: activityMinutes(ActivityGuidedPractice, in.minutes),
	}, nil
}

func buildIndependentPractice(ctx context.Context, p *Planner, in *activityInput) (Activity, error) {
	target := mastery.ClampDifficulty(mistakeDifficulty(in.pattern))
	qs, err := p.practiceQuestions(ctx, in, target, IndependentQuestions)
	if err != nil {
		return Activity{}, err
	}
	return Activity{
		Type:             ActivityIndependentPractice,
		Title:            "On your own: " + in.misconception.Name,
		Questions:        qs,
		EstimatedMinutes: activityMinutes(ActivityIndependentPractice, in.minutes),
	}, nil
}

// practiceQuestions draws up to count questions near target from the
// pattern's affected topics, in topic order. Topics with no content are
// skipped.
func (p *Planner) practiceQuestions(ctx context.Context, in *activityInput, target, count int) ([]content.Question, error) {
	var out []content.Question
	for _, topicID := range in.pattern.AffectedTopics {
		if len(out) >= count {
			break
		}
		qs, err := p.source.GetQuestionsForTopic(ctx, topicID, content.QuestionQuery{
			Count:      count - len(out),
			Difficulty: content.IntPtr(target),
			ExcludeIDs: in.used,
		})
		if errors.Is(err, content.ErrNoActiveContent) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("practice questions for %s: %w", topicID, err)
		}
		for _, q := range qs {
			in.used = append(in.used, q.ID)
		}
		out = append(out, qs...)
	}
	return out, nil
}

func mistakeDifficulty(p diagnosis.DetectedPattern) int {
	if len(p.RecentMistakes) == 0 {
		return mastery.DefaultDifficulty
	}
	total := 0
	for _, m := range p.RecentMistakes {
		total += m.Difficulty
	}
	return int(math.Round(float64(total) / float64(len(p.RecentMistakes))))
}

func firstStrategy(m *catalog.Misconception) string {
	if len(m.Strategies) == 0 {
		return ""
	}
	return m.Strategies[0]
}
