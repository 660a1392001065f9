package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process implementation of every repository. It backs
// tests and the --memory serve mode; nothing survives a restart.
type Memory struct {
	mu          sync.Mutex
	seq         int64
	students    map[string]StudentRecord
	mistakes    []MistakeRecord
	cards       map[string]ReviewCard
	performance []PerformanceRecord
	curricula   []CurriculumRecord
	feedback    []FeedbackRecord
	plans       map[string]PlanRecord
	trackers    map[string]TrackerSnapshot
	events      []SessionEvent
	llmEvents   []LLMRequestEvent
	runs        []OptimizationRunData
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		students: make(map[string]StudentRecord),
		cards:    make(map[string]ReviewCard),
		plans:    make(map[string]PlanRecord),
		trackers: make(map[string]TrackerSnapshot),
	}
}

func (m *Memory) Students() StudentRepo        { return m }
func (m *Memory) Mistakes() MistakeRepo        { return m }
func (m *Memory) Cards() CardRepo              { return m }
func (m *Memory) Performance() PerformanceRepo { return m }
func (m *Memory) Curricula() CurriculumRepo    { return m }
func (m *Memory) Feedback() FeedbackRepo       { return m }
func (m *Memory) Plans() PlanRepo              { return m }
func (m *Memory) Trackers() TrackerRepo        { return m }
func (m *Memory) Events() EventRepo            { return m }

func (m *Memory) GetStudent(_ context.Context, id string) (*StudentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, fmt.Errorf("student %q: %w", id, ErrNotFound)
	}
	s.MasteredTopics = slices.Clone(s.MasteredTopics)
	return &s, nil
}

func (m *Memory) SaveStudent(_ context.Context, s StudentRecord) error {
	if s.ID == "" {
		return fmt.Errorf("save student: empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.MasteredTopics = slices.Clone(s.MasteredTopics)
	m.students[s.ID] = s
	return nil
}

func (m *Memory) AppendMistake(_ context.Context, r MistakeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mistakes = append(m.mistakes, r)
	return nil
}

func (m *Memory) ListMistakes(_ context.Context, studentID, subject string) ([]MistakeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MistakeRecord
	for _, r := range m.mistakes {
		if r.StudentID != studentID || (subject != "" && r.Subject != subject) {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b MistakeRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

func (m *Memory) SetMisconception(_ context.Context, mistakeID, misconceptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.mistakes {
		if m.mistakes[i].ID == mistakeID {
			m.mistakes[i].MisconceptionID = misconceptionID
			return nil
		}
	}
	return fmt.Errorf("mistake %q: %w", mistakeID, ErrNotFound)
}

func (m *Memory) GetCard(_ context.Context, id string) (*ReviewCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) FindCard(_ context.Context, studentID, questionID string) (*ReviewCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.StudentID == studentID && c.QuestionID == questionID {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SaveCard(_ context.Context, c ReviewCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.cards {
		if id != c.ID && existing.StudentID == c.StudentID && existing.QuestionID == c.QuestionID {
			return fmt.Errorf("save review card: duplicate card for question %q", c.QuestionID)
		}
	}
	m.cards[c.ID] = c
	return nil
}

func (m *Memory) DueCards(_ context.Context, studentID, topicID string, now time.Time, limit int) ([]ReviewCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ReviewCard
	for _, c := range m.cards {
		if c.StudentID != studentID || c.NextReviewAt.After(now) {
			continue
		}
		if topicID != "" && c.TopicID != topicID {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b ReviewCard) int {
		if c := a.NextReviewAt.Compare(b.NextReviewAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) AppendPerformance(_ context.Context, r PerformanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.performance = append(m.performance, r)
	return nil
}

func (m *Memory) ListPerformance(_ context.Context, gradeLevel int, subject string) ([]PerformanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PerformanceRecord
	for _, r := range m.performance {
		if r.GradeLevel == gradeLevel && r.Subject == subject {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) SaveCurriculum(_ context.Context, r CurriculumRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.curricula {
		if c.ID == r.ID || (c.GradeLevel == r.GradeLevel && c.Subject == r.Subject && c.Version == r.Version) {
			return fmt.Errorf("save curriculum version: duplicate %s %s", r.ID, r.Version)
		}
	}
	m.curricula = append(m.curricula, r)
	return nil
}

func (m *Memory) GetCurriculum(_ context.Context, id string) (*CurriculumRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.curricula {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("curriculum %q: %w", id, ErrNotFound)
}

func (m *Memory) ListCurriculumVersions(_ context.Context, gradeLevel int, subject string) ([]CurriculumRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []CurriculumRecord
	for _, c := range m.curricula {
		if c.GradeLevel == gradeLevel && c.Subject == subject {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) LatestCurriculum(ctx context.Context, gradeLevel int, subject string) (*CurriculumRecord, error) {
	recs, _ := m.ListCurriculumVersions(ctx, gradeLevel, subject)
	if len(recs) == 0 {
		return nil, fmt.Errorf("curriculum grade %d %s: %w", gradeLevel, subject, ErrNotFound)
	}
	return &recs[0], nil
}

func (m *Memory) ListCurriculumKeys(_ context.Context) ([]CurriculumKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []CurriculumKey
	for _, c := range m.curricula {
		k := CurriculumKey{GradeLevel: c.GradeLevel, Subject: c.Subject}
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, compareKeys)
	return out, nil
}

func (m *Memory) AppendFeedback(_ context.Context, f FeedbackRecord) error {
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("save feedback: rating %d out of range 1-5", f.Rating)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, f)
	return nil
}

func (m *Memory) ListFeedback(_ context.Context, gradeLevel int, subject string) ([]FeedbackRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []FeedbackRecord
	for _, f := range m.feedback {
		if f.GradeLevel == gradeLevel && f.Subject == subject {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *Memory) SavePlan(_ context.Context, p PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = p
	return nil
}

func (m *Memory) GetPlan(_ context.Context, id string) (*PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ActivePlan(_ context.Context, studentID, subject string) (*PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *PlanRecord
	for _, p := range m.plans {
		if p.StudentID != studentID || p.Subject != subject || p.Status != PlanActive {
			continue
		}
		if best == nil || p.CreatedAt.After(best.CreatedAt) {
			cp := p
			best = &cp
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func (m *Memory) LoadTracker(_ context.Context, studentID string) (*TrackerSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.trackers[studentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) SaveTracker(_ context.Context, s TrackerSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackers[s.StudentID] = s
	return nil
}

func (m *Memory) AppendSessionEvent(_ context.Context, data SessionEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.events = append(m.events, SessionEvent{Sequence: m.seq, Timestamp: time.Now().UTC(), SessionEventData: data})
	return nil
}

func (m *Memory) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.llmEvents = append(m.llmEvents, LLMRequestEvent{Sequence: m.seq, Timestamp: time.Now().UTC(), LLMRequestEventData: data})
	return nil
}

func (m *Memory) AppendOptimizationRun(_ context.Context, data OptimizationRunData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.runs = append(m.runs, data)
	return nil
}

func inRange(seq int64, ts time.Time, opts QueryOpts) bool {
	if opts.After > 0 && seq <= opts.After {
		return false
	}
	if opts.Before > 0 && seq >= opts.Before {
		return false
	}
	if !opts.From.IsZero() && ts.Before(opts.From) {
		return false
	}
	if !opts.To.IsZero() && ts.After(opts.To) {
		return false
	}
	return true
}

func (m *Memory) QuerySessionEvents(_ context.Context, studentID string, opts QueryOpts) ([]SessionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SessionEvent
	for _, e := range m.events {
		if e.StudentID == studentID && inRange(e.Sequence, e.Timestamp, opts) {
			out = append(out, e)
		}
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) QueryLLMRequests(_ context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LLMRequestEvent
	for i := len(m.llmEvents) - 1; i >= 0; i-- {
		e := m.llmEvents[i]
		if !inRange(e.Sequence, e.Timestamp, opts) {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

// OptimizationRuns returns every recorded optimization run.
func (m *Memory) OptimizationRuns() []OptimizationRunData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.runs)
}
