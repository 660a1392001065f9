package diagnosis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/catalog"
	"github.com/abhisek/tutorloop/internal/llm"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/store"
)

// QueueSize bounds the async LLM diagnosis queue. Jobs beyond it are dropped.
const QueueSize = 32

// MistakeInput is a wrong answer to record and classify.
type MistakeInput struct {
	store.MistakeRecord
	TimeSpent     time.Duration
	TopicAccuracy float64
}

// Service appends mistakes to the log and classifies them: rule-based
// classifiers run synchronously; mistakes they cannot classify are queued
// for the LLM diagnoser, which fills in the misconception later.
type Service struct {
	classifiers []Classifier
	diagnoser   *Diagnoser
	mistakes    store.MistakeRepo
	logger      *zap.Logger
	now         func() time.Time

	mu      sync.RWMutex
	closed  bool
	pending chan diagnosisJob
	done    chan struct{}
}

type diagnosisJob struct {
	ctx       context.Context
	mistakeID string
	req       *DiagnosisRequest
}

// NewService creates a diagnosis service. If provider is nil, only
// rule-based classification is available.
func NewService(mistakes store.MistakeRepo, provider llm.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		classifiers: DefaultClassifiers(),
		mistakes:    mistakes,
		logger:      logger,
		now:         time.Now,
		pending:     make(chan diagnosisJob, QueueSize),
		done:        make(chan struct{}),
	}
	if provider != nil {
		s.diagnoser = NewDiagnoser(provider, DefaultDiagnoserConfig())
		go s.processLoop()
	} else {
		close(s.done)
	}
	return s
}

// SetClock overrides the time source used for new mistake records.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// RecordMistake appends the mistake to the log and returns the stored
// record with the synchronous classification. When rules are inconclusive
// and an LLM is configured, diagnosis continues in the background.
func (s *Service) RecordMistake(ctx context.Context, in MistakeInput) (*store.MistakeRecord, Result, error) {
	rec := in.MistakeRecord
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now().UTC()
	}

	result, ok := RunClassifiers(s.classifiers, &ClassifyInput{
		Mistake:       rec,
		TimeSpent:     in.TimeSpent,
		TopicAccuracy: in.TopicAccuracy,
	})
	if !ok {
		result = Result{Category: CategoryUnclassified, ClassifierName: "none"}
	}
	if result.Category == CategoryMisconception {
		rec.MisconceptionID = result.MisconceptionID
	}

	if err := s.mistakes.AppendMistake(ctx, rec); err != nil {
		return nil, Result{}, fmt.Errorf("append mistake: %w", err)
	}
	metrics.MistakesClassified.WithLabelValues(result.ClassifierName).Inc()

	if !ok {
		s.dispatchLLM(ctx, rec)
	}
	return &rec, result, nil
}

func (s *Service) dispatchLLM(ctx context.Context, rec store.MistakeRecord) {
	if s.diagnoser == nil {
		return
	}
	candidates := catalog.ForSubject(rec.Subject)
	if len(candidates) == 0 {
		return
	}

	job := diagnosisJob{
		ctx:       llm.WithStudent(context.WithoutCancel(ctx), rec.StudentID),
		mistakeID: rec.ID,
		req: &DiagnosisRequest{
			TopicID:       rec.TopicID,
			Subject:       rec.Subject,
			GradeLevel:    rec.GradeLevel,
			CorrectAnswer: rec.CorrectAnswer,
			StudentAnswer: rec.StudentAnswer,
			Candidates:    candidates,
		},
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.pending <- job:
	default:
		metrics.Dropped.WithLabelValues("diagnosis").Inc()
		s.logger.Debug("diagnosis queue full, dropping job", zap.String("mistake_id", rec.ID))
	}
}

func (s *Service) processLoop() {
	defer close(s.done)
	for job := range s.pending {
		result, err := s.diagnoser.Diagnose(job.ctx, job.req)
		if err != nil {
			s.logger.Debug("llm diagnosis failed", zap.String("mistake_id", job.mistakeID), zap.Error(err))
			continue
		}
		metrics.MistakesClassified.WithLabelValues(result.ClassifierName).Inc()
		if result.Category != CategoryMisconception {
			continue
		}
		if err := s.mistakes.SetMisconception(job.ctx, job.mistakeID, result.MisconceptionID); err != nil {
			s.logger.Warn("failed to store diagnosis",
				zap.String("mistake_id", job.mistakeID),
				zap.String("misconception_id", result.MisconceptionID),
				zap.Error(err))
		}
	}
}

// Close stops accepting LLM jobs and waits for queued ones to finish.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.pending)
	}
	s.mu.Unlock()
	<-s.done
}
