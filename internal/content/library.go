package content

import (
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// seedFile is the on-disk shape of seed.yaml.
type seedFile struct {
	Curricula []seedCurriculum `yaml:"curricula"`
}

type seedCurriculum struct {
	GradeLevel int         `yaml:"grade_level"`
	Subject    string      `yaml:"subject"`
	Version    string      `yaml:"version"`
	Topics     []seedTopic `yaml:"topics"`
}

type seedTopic struct {
	Topic     `yaml:",inline"`
	Questions []Question `yaml:"questions"`
}

// Library is a read-only in-memory content store loaded from YAML.
type Library struct {
	keys      []Key
	curricula map[Key]*Curriculum
	questions map[string][]Question // by topic ID, seed order
	byID      map[string]*Question
}

var defaultLibrary = sync.OnceValues(func() (*Library, error) {
	return NewLibrary(seedYAML)
})

// DefaultLibrary returns the library built from the embedded seed content.
func DefaultLibrary() (*Library, error) {
	return defaultLibrary()
}

// NewLibrary parses YAML seed content and validates every curriculum's
// prerequisite graph.
func NewLibrary(data []byte) (*Library, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed content: %w", err)
	}

	lib := &Library{
		curricula: make(map[Key]*Curriculum),
		questions: make(map[string][]Question),
		byID:      make(map[string]*Question),
	}

	seen := make(map[string]bool)
	for _, sc := range f.Curricula {
		key := Key{GradeLevel: sc.GradeLevel, Subject: sc.Subject}
		if _, dup := lib.curricula[key]; dup {
			return nil, fmt.Errorf("duplicate curriculum for grade %d %s", key.GradeLevel, key.Subject)
		}
		c := &Curriculum{
			ID:         fmt.Sprintf("seed-g%d-%s", sc.GradeLevel, sc.Subject),
			GradeLevel: sc.GradeLevel,
			Subject:    sc.Subject,
			Version:    cmp.Or(sc.Version, InitialVersion),
		}
		for i, st := range sc.Topics {
			t := st.Topic
			if t.Subject == "" {
				t.Subject = sc.Subject
			}
			if t.Order == 0 {
				t.Order = i + 1
			}
			c.Topics = append(c.Topics, t)

			for _, q := range st.Questions {
				if seen[q.ID] {
					return nil, fmt.Errorf("duplicate question id %q", q.ID)
				}
				seen[q.ID] = true
				q.TopicID = t.ID
				if q.ExpectedTimeSeconds <= 0 {
					q.ExpectedTimeSeconds = DefaultExpectedTimeSeconds
				}
				if q.Difficulty == 0 {
					q.Difficulty = t.Difficulty
				}
				if q.Type == "" {
					q.Type = TypeShortAnswer
				}
				lib.questions[t.ID] = append(lib.questions[t.ID], q)
			}
		}
		if err := ValidatePrerequisites(c.Topics); err != nil {
			return nil, fmt.Errorf("curriculum %s: %w", c.ID, err)
		}
		lib.curricula[key] = c
		lib.keys = append(lib.keys, key)
	}

	for topicID := range lib.questions {
		qs := lib.questions[topicID]
		for i := range qs {
			lib.byID[qs[i].ID] = &qs[i]
		}
	}
	return lib, nil
}

// Keys returns every curriculum key in seed order.
func (l *Library) Keys() []Key {
	return slices.Clone(l.keys)
}

// Question returns a question by ID.
func (l *Library) Question(id string) (Question, bool) {
	q, ok := l.byID[id]
	if !ok {
		return Question{}, false
	}
	return *q, true
}

// QuestionsForTopic returns every question of a topic in seed order.
func (l *Library) QuestionsForTopic(topicID string) []Question {
	return slices.Clone(l.questions[topicID])
}

// GetCurriculum returns a copy of the seed curriculum.
func (l *Library) GetCurriculum(_ context.Context, gradeLevel int, subject string) (*Curriculum, error) {
	c, ok := l.curricula[Key{GradeLevel: gradeLevel, Subject: subject}]
	if !ok {
		return nil, &NoContentError{GradeLevel: gradeLevel, Subject: subject}
	}
	cp := *c
	cp.Topics = slices.Clone(c.Topics)
	return &cp, nil
}

// GetQuestionsForTopic returns up to q.Count eligible questions.
func (l *Library) GetQuestionsForTopic(_ context.Context, topicID string, q QuestionQuery) ([]Question, error) {
	result := filterQuestions(l.questions[topicID], q)
	if len(result) == 0 {
		return nil, &NoContentError{TopicID: topicID}
	}
	return result, nil
}

// GetLearningPath orders the curriculum and annotates each topic with the
// student's status and readiness.
func (l *Library) GetLearningPath(ctx context.Context, gradeLevel int, subject string, progress Progress) ([]PathStep, error) {
	c, err := l.GetCurriculum(ctx, gradeLevel, subject)
	if err != nil {
		return nil, err
	}
	return BuildLearningPath(c, progress), nil
}

func filterQuestions(pool []Question, q QuestionQuery) []Question {
	excluded := make(map[string]bool, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}

	var candidates []Question
	for _, question := range pool {
		if !excluded[question.ID] {
			candidates = append(candidates, question)
		}
	}

	if q.Difficulty != nil {
		target := *q.Difficulty
		slices.SortStableFunc(candidates, func(a, b Question) int {
			return cmp.Compare(absInt(a.Difficulty-target), absInt(b.Difficulty-target))
		})
		if !q.AdaptiveDifficulty {
			var near []Question
			for _, c := range candidates {
				if absInt(c.Difficulty-target) <= 1 {
					near = append(near, c)
				}
			}
			if len(near) > 0 {
				candidates = near
			}
		}
	}

	if q.Count > 0 && len(candidates) > q.Count {
		candidates = candidates[:q.Count]
	}
	return candidates
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
