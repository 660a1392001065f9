package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/engagement"
	"github.com/abhisek/tutorloop/internal/llm"
	"github.com/abhisek/tutorloop/internal/logging"
	"github.com/abhisek/tutorloop/internal/mastery"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/remediation"
	"github.com/abhisek/tutorloop/internal/spacedrep"
	"github.com/abhisek/tutorloop/internal/store"
)

// PerformanceSink receives the performance records of completed sessions.
// It reports false when a record was dropped.
type PerformanceSink interface {
	Record(rec store.PerformanceRecord) bool
}

// Deps are the components an Orchestrator drives. Source, Students,
// Scheduler and Mastery are required; the rest are optional.
type Deps struct {
	Source    content.Source
	Students  store.StudentRepo
	Scheduler *spacedrep.Scheduler
	Mastery   *mastery.Service

	Diagnosis   *diagnosis.Service
	Planner     *remediation.Planner
	Engagement  *engagement.Service
	Performance PerformanceSink
	Provider    llm.Provider

	// QuestionCount is the session length when Options leaves it unset.
	QuestionCount int

	// Store defaults to a MemoryStore.
	Store  Store
	Logger *zap.Logger
}

// Orchestrator runs live sessions. Operations on the same student are
// serialized; different students proceed concurrently.
type Orchestrator struct {
	source     content.Source
	students   store.StudentRepo
	scheduler  *spacedrep.Scheduler
	mastery    *mastery.Service
	diagnosis  *diagnosis.Service
	planner    *remediation.Planner
	engagement *engagement.Service
	perf       PerformanceSink
	provider   llm.Provider
	count      int
	sessions   Store
	locks      *keyedMutex
	logger     *zap.Logger
	now        func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewOrchestrator returns an orchestrator over d.
func NewOrchestrator(d Deps) *Orchestrator {
	sessions := d.Store
	if sessions == nil {
		sessions = NewMemoryStore()
	}
	return &Orchestrator{
		source:     d.Source,
		students:   d.Students,
		scheduler:  d.Scheduler,
		mastery:    d.Mastery,
		diagnosis:  d.Diagnosis,
		planner:    d.Planner,
		engagement: d.Engagement,
		perf:       d.Performance,
		provider:   d.Provider,
		count:      d.QuestionCount,
		sessions:   sessions,
		locks:      newKeyedMutex(),
		logger:     logging.OrNop(d.Logger).Named("session"),
		now:        time.Now,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// SetClock overrides the orchestrator's time source.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// SetRand replaces the source used to shuffle selected questions.
func (o *Orchestrator) SetRand(rng *rand.Rand) {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	o.rng = rng
}

// StartSession builds a session for the student. It fails with
// ErrSessionActive while the student has a live session, and with a
// content.ErrNoActiveContent error when no questions can be selected.
func (o *Orchestrator) StartSession(ctx context.Context, studentID string, opts Options) (*Session, error) {
	if err := opts.normalize(o.count); err != nil {
		return nil, err
	}

	unlock := o.locks.Lock(studentID)
	defer unlock()

	if _, ok := o.sessions.Get(studentID); ok {
		return nil, ErrSessionActive
	}

	student, err := o.students.GetStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	state, err := o.mastery.Load(ctx, studentID, student.CurrentDifficulty)
	if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}

	strategy := opts.strategy()
	sel, err := strategies[strategy](ctx, o, &startRequest{student: *student, opts: opts, state: state})
	if err != nil {
		return nil, err
	}
	if len(sel.items) == 0 {
		return nil, &content.NoContentError{GradeLevel: student.GradeLevel, Subject: opts.Subject, TopicID: opts.TopicID}
	}

	now := o.now().UTC()
	s := &Session{
		ID:                uuid.New().String(),
		StudentID:         studentID,
		Type:              opts.Type,
		Strategy:          sel.strategy,
		Subject:           opts.Subject,
		GradeLevel:        student.GradeLevel,
		TopicID:           sel.topicID,
		PlanID:            sel.planID,
		Items:             sel.items,
		Status:            StatusCreated,
		StartTime:         now,
		CreatedAt:         now,
		questionStartedAt: now,
	}
	o.sessions.Put(s)

	metrics.SessionsStarted.WithLabelValues(string(s.Type)).Inc()
	metrics.ActiveSessions.Inc()
	if o.engagement != nil {
		o.engagement.SessionStarted(ctx, studentID, s.ID, string(s.Type), s.TopicID)
	}
	o.logger.Info("session started",
		zap.String("student", studentID),
		zap.String("session", s.ID),
		zap.String("strategy", string(s.Strategy)),
		zap.Int("questions", len(s.Items)))
	return s.clone(), nil
}

// CurrentSession returns a copy of the student's live session.
func (o *Orchestrator) CurrentSession(_ context.Context, studentID string) (*Session, error) {
	unlock := o.locks.Lock(studentID)
	defer unlock()

	s, ok := o.sessions.Get(studentID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s.clone(), nil
}

// CurrentQuestion returns the question awaiting an answer, or nil when
// every question has been answered.
func (o *Orchestrator) CurrentQuestion(_ context.Context, studentID string) (*QuestionView, error) {
	unlock := o.locks.Lock(studentID)
	defer unlock()

	s, ok := o.sessions.Get(studentID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	return viewOf(s.Current()), nil
}

// AbandonSession discards the student's live session without recording
// performance.
func (o *Orchestrator) AbandonSession(ctx context.Context, studentID string) error {
	unlock := o.locks.Lock(studentID)
	defer unlock()

	s, ok := o.sessions.Get(studentID)
	if !ok {
		return ErrNoActiveSession
	}
	o.sessions.Delete(studentID)

	metrics.SessionsAbandoned.Inc()
	metrics.ActiveSessions.Dec()
	if o.engagement != nil {
		o.engagement.SessionAbandoned(ctx, studentID, s.ID)
	}
	o.logger.Info("session abandoned",
		zap.String("student", studentID),
		zap.String("session", s.ID),
		zap.Int("answered", s.CurrentIndex))
	return nil
}

// ActiveSessions returns the number of live sessions.
func (o *Orchestrator) ActiveSessions() int {
	return o.sessions.Len()
}

// PauseSession stops the session clock. Pausing a paused session is a
// no-op.
func (o *Orchestrator) PauseSession(_ context.Context, studentID string) (*Session, error) {
	unlock := o.locks.Lock(studentID)
	defer unlock()

	s, ok := o.sessions.Get(studentID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if !s.Paused {
		s.Paused = true
		s.PausedAt = o.now().UTC()
		s.Status = StatusPaused
	}
	return s.clone(), nil
}

// ResumeSession restarts the session clock, shifting the start time by
// the paused interval. Resuming a running session is a no-op.
func (o *Orchestrator) ResumeSession(_ context.Context, studentID string) (*Session, error) {
	unlock := o.locks.Lock(studentID)
	defer unlock()

	s, ok := o.sessions.Get(studentID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	if s.Paused {
		o.resume(s)
	}
	return s.clone(), nil
}

func (o *Orchestrator) resume(s *Session) {
	paused := o.now().UTC().Sub(s.PausedAt)
	s.StartTime = s.StartTime.Add(paused)
	s.questionStartedAt = s.questionStartedAt.Add(paused)
	s.Paused = false
	s.PausedAt = time.Time{}
	s.Status = StatusInProgress
}
