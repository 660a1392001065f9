package curriculum

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/logging"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/store"
)

// DefaultRecorderBuffer is the default recorder queue size.
const DefaultRecorderBuffer = 256

// Recorder writes completed-session performance records to the store in
// the background so session completion never waits on aggregate storage.
// Records that do not fit in the buffer are dropped.
type Recorder struct {
	performance store.PerformanceRepo
	logger      *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan store.PerformanceRecord
	done   chan struct{}
}

// NewRecorder starts a recorder with the given buffer size.
func NewRecorder(performance store.PerformanceRepo, buffer int, logger *zap.Logger) *Recorder {
	if buffer <= 0 {
		buffer = DefaultRecorderBuffer
	}
	r := &Recorder{
		performance: performance,
		logger:      logging.OrNop(logger),
		queue:       make(chan store.PerformanceRecord, buffer),
		done:        make(chan struct{}),
	}
	go r.loop()
	return r
}

// Record queues rec for storage. It reports false when the record was
// dropped because the recorder is full or closed.
func (r *Recorder) Record(rec store.PerformanceRecord) bool {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.queue <- rec:
		return true
	default:
		metrics.Dropped.WithLabelValues("performance").Inc()
		r.logger.Warn("performance queue full, dropping record",
			zap.String("session_id", rec.SessionID),
			zap.String("topic_id", rec.TopicID))
		return false
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for rec := range r.queue {
		if err := r.performance.AppendPerformance(context.Background(), rec); err != nil {
			r.logger.Warn("failed to store performance record",
				zap.String("session_id", rec.SessionID),
				zap.Error(err))
		}
	}
}

// Close stops accepting records and waits until queued ones are stored.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}
