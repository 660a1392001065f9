package curriculum

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/logging"
)

// ErrSchedulerRunning is returned by Start on a running scheduler.
var ErrSchedulerRunning = errors.New("scheduler already running")

// Runner performs one optimization run. *Engine satisfies it.
type Runner interface {
	RunAutoOptimization(ctx context.Context) (*RunSummary, error)
}

// AutoScheduler runs automatic optimization periodically.
type AutoScheduler struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewAutoScheduler creates a scheduler that runs every interval.
func NewAutoScheduler(runner Runner, interval time.Duration, logger *zap.Logger) *AutoScheduler {
	return &AutoScheduler{
		runner:   runner,
		interval: interval,
		logger:   logging.OrNop(logger),
	}
}

// Start begins periodic runs; the first run happens one interval after
// Start. Runs use a context detached from ctx's cancellation so that
// stopping the schedule never interrupts a run in progress. Canceling ctx
// stops the schedule like Stop.
func (s *AutoScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerRunning
	}
	if s.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(ctx, s.stop, s.done)
	s.logger.Info("optimization schedule started", zap.Duration("interval", s.interval))
	return nil
}

func (s *AutoScheduler) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	runCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			s.mu.Lock()
			if s.stop == stop {
				s.running = false
			}
			s.mu.Unlock()
			return
		case <-ticker.C:
		}

		select {
		case <-stop:
			return
		default:
		}

		summary, err := s.runner.RunAutoOptimization(runCtx)
		if err != nil {
			s.logger.Warn("scheduled optimization run failed", zap.Error(err))
			continue
		}
		s.logger.Debug("scheduled optimization run complete",
			zap.Int("processed", summary.Processed),
			zap.Int("failed", summary.Failed))
	}
}

// Stop prevents future runs. A run in progress completes; use Done to wait
// for it.
func (s *AutoScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.logger.Info("optimization schedule stopped")
}

// Done is closed when the scheduling loop has exited. It is nil before the
// first Start.
func (s *AutoScheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Running reports whether the schedule is active.
func (s *AutoScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
