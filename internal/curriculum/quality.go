package curriculum

import (
	"cmp"
	"slices"

	"github.com/abhisek/tutorloop/internal/content"
)

// SubScore is one capped 0-100 quality dimension.
type SubScore struct {
	Score           float64  `json:"score"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// QualityReport is the result of scoring a curriculum version.
type QualityReport struct {
	CurriculumID  string   `json:"curriculumId"`
	Version       string   `json:"version"`
	Overall       float64  `json:"overall"`
	Grade         string   `json:"grade"`
	Completeness  SubScore `json:"completeness"`
	Pedagogy      SubScore `json:"pedagogy"`
	Accessibility SubScore `json:"accessibility"`
	Engagement    SubScore `json:"engagement"`
	Assessment    SubScore `json:"assessment"`
}

// NamedScore pairs a sub-score with its dimension name.
type NamedScore struct {
	Name string
	SubScore
}

// Scores returns the sub-scores in report order.
func (r *QualityReport) Scores() []NamedScore {
	return []NamedScore{
		{"completeness", r.Completeness},
		{"pedagogy", r.Pedagogy},
		{"accessibility", r.Accessibility},
		{"engagement", r.Engagement},
		{"assessment", r.Assessment},
	}
}

// Quality thresholds.
const (
	MinTopics            = 3
	MinQuestionsPerTopic = 3
	MaxTopicMinutes      = 45
	MinTopicMinutes      = 5
	MaxPromptLength      = 280
	MaxDifficultyJump    = 3
	MinDifficultySpread  = 3
	MaxEntryDifficulty   = 5
)

// QualityEvaluator scores curricula. It is stateless.
type QualityEvaluator struct{}

// Evaluate scores c given the questions of each topic.
func (QualityEvaluator) Evaluate(c *content.Curriculum, questions map[string][]content.Question) QualityReport {
	topics := slices.Clone(c.Topics)
	slices.SortStableFunc(topics, func(a, b content.Topic) int { return cmp.Compare(a.Order, b.Order) })

	r := QualityReport{
		CurriculumID:  c.ID,
		Version:       c.Version,
		Completeness:  completeness(topics, questions),
		Pedagogy:      pedagogy(topics),
		Accessibility: accessibility(topics, questions),
		Engagement:    engagement(topics, questions),
		Assessment:    assessment(topics, questions),
	}
	r.Overall = (r.Completeness.Score + r.Pedagogy.Score + r.Accessibility.Score +
		r.Engagement.Score + r.Assessment.Score) / 5
	r.Grade = LetterGrade(r.Overall)
	return r
}

// LetterGrade maps a 0-100 score to A (>= 90) through F (< 60).
func LetterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

type scorer struct {
	score float64
	recs  []string
}

func newScorer() *scorer {
	return &scorer{score: 100}
}

func (s *scorer) deduct(points float64, rec string) {
	if points <= 0 {
		return
	}
	s.score -= points
	if !slices.Contains(s.recs, rec) {
		s.recs = append(s.recs, rec)
	}
}

func (s *scorer) result() SubScore {
	return SubScore{Score: min(max(s.score, 0), 100), Recommendations: s.recs}
}

func completeness(topics []content.Topic, questions map[string][]content.Question) SubScore {
	s := newScorer()
	if len(topics) == 0 {
		s.deduct(100, "Add topics to the curriculum")
		return s.result()
	}
	if len(topics) < MinTopics {
		s.deduct(20, "Add more topics to cover the subject")
	}
	for _, t := range topics {
		if t.Description == "" {
			s.deduct(5, "Describe every topic")
		}
		if len(t.Objectives) == 0 {
			s.deduct(5, "State learning objectives for every topic")
		}
		if len(questions[t.ID]) == 0 {
			s.deduct(10, "Add practice questions to every topic")
		}
		if t.ExpectedDurationMinutes <= 0 {
			s.deduct(5, "Set an expected duration for every topic")
		}
	}
	return s.result()
}

func pedagogy(topics []content.Topic) SubScore {
	s := newScorer()
	if err := content.ValidatePrerequisites(topics); err != nil {
		s.deduct(30, "Fix the prerequisite graph: "+err.Error())
	}

	byID := make(map[string]content.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}
	linked := false
	for _, t := range topics {
		for _, id := range t.Prerequisites {
			p, ok := byID[id]
			if !ok {
				continue
			}
			linked = true
			if p.Order > t.Order {
				s.deduct(10, "Order topics after their prerequisites")
			}
			if p.Difficulty > t.Difficulty {
				s.deduct(5, "Keep prerequisites easier than the topics that build on them")
			}
		}
	}
	if !linked && len(topics) >= MinTopics {
		s.deduct(10, "Link topics with prerequisites so skills build on each other")
	}

	for i := 1; i < len(topics); i++ {
		if topics[i].Difficulty-topics[i-1].Difficulty > MaxDifficultyJump {
			s.deduct(10, "Smooth large difficulty jumps between consecutive topics")
		}
	}
	return s.result()
}

func accessibility(topics []content.Topic, questions map[string][]content.Question) SubScore {
	s := newScorer()
	if len(topics) > 0 && topics[0].Difficulty > MaxEntryDifficulty {
		s.deduct(15, "Start with an accessible entry topic")
	}

	noHints := 0.0
	for _, t := range topics {
		if t.ExpectedDurationMinutes > MaxTopicMinutes {
			s.deduct(10, "Split topics longer than 45 minutes")
		}
		for _, q := range questions[t.ID] {
			if len(q.Hints) == 0 {
				noHints += 2
			}
			if len(q.Prompt) > MaxPromptLength {
				s.deduct(5, "Shorten long question prompts")
			}
		}
	}
	s.deduct(min(noHints, 30), "Provide hints for every question")
	return s.result()
}

func engagement(topics []content.Topic, questions map[string][]content.Question) SubScore {
	s := newScorer()

	types := make(map[content.QuestionType]bool)
	for _, t := range topics {
		qs := questions[t.ID]
		difficulties := make(map[int]bool)
		for _, q := range qs {
			types[q.Type] = true
			difficulties[q.Difficulty] = true
		}
		if len(qs) > 1 && len(difficulties) < 2 {
			s.deduct(5, "Mix easier and harder questions within each topic")
		}
		if t.ExpectedDurationMinutes > 0 && t.ExpectedDurationMinutes < MinTopicMinutes {
			s.deduct(5, "Give short topics enough practice time")
		}
	}
	switch len(types) {
	case 0, 1:
		s.deduct(30, "Vary question formats")
	case 2:
		s.deduct(15, "Vary question formats")
	}

	if len(topics) >= 2 {
		lo, hi := topics[0].Difficulty, topics[0].Difficulty
		for _, t := range topics[1:] {
			lo, hi = min(lo, t.Difficulty), max(hi, t.Difficulty)
		}
		if hi-lo < MinDifficultySpread {
			s.deduct(15, "Widen the difficulty range across topics")
		}
	}
	return s.result()
}

func assessment(topics []content.Topic, questions map[string][]content.Question) SubScore {
	s := newScorer()
	noExplanation := 0.0
	for _, t := range topics {
		qs := questions[t.ID]
		if len(qs) < MinQuestionsPerTopic {
			s.deduct(15, "Provide at least 3 questions per topic")
		}
		for _, q := range qs {
			if q.Explanation == "" {
				noExplanation += 3
			}
			if q.CorrectAnswer == "" {
				s.deduct(10, "Give every question a correct answer")
			}
			if q.Type == content.TypeMultipleChoice && !hasChoice(q) {
				s.deduct(10, "Include the correct answer among multiple-choice options")
			}
		}
	}
	s.deduct(min(noExplanation, 40), "Explain the answer to every question")
	return s.result()
}

func hasChoice(q content.Question) bool {
	return slices.ContainsFunc(q.Choices, func(c string) bool {
		return content.CheckAnswer(c, q.CorrectAnswer)
	})
}
