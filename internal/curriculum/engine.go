package curriculum

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/llm"
	"github.com/abhisek/tutorloop/internal/logging"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/store"
)

// Optimization outcomes, used for run items and metrics.
const (
	OutcomeOptimized = "optimized"
	OutcomeSkipped   = "skipped"
	OutcomeReview    = "review"
	OutcomeFailed    = "failed"
)

// Versions is the versioned curriculum store the engine reads and
// publishes to. *content.VersionedSource satisfies it.
type Versions interface {
	content.Source
	Keys(ctx context.Context) ([]content.Key, error)
	Publish(ctx context.Context, c *content.Curriculum) error
	History(ctx context.Context, gradeLevel int, subject string) ([]*content.Curriculum, error)
	Rollback(ctx context.Context, gradeLevel int, subject string) (*content.Curriculum, error)
}

// Config holds engine settings.
type Config struct {
	// Delay is the pause between curricula in an automatic run. It keeps
	// the run within the generative service's budget.
	Delay       time.Duration
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for the engine.
func DefaultConfig() Config {
	return Config{
		Delay:       2 * time.Second,
		MaxTokens:   2048,
		Temperature: 0.4,
	}
}

// Engine analyzes and optimizes curricula.
type Engine struct {
	versions    Versions
	performance store.PerformanceRepo
	feedback    store.FeedbackRepo
	events      store.EventRepo
	provider    llm.Provider
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
}

// NewEngine creates an engine. provider may be nil, in which case
// analysis works and optimization fails with llm.ErrServiceUnavailable.
func NewEngine(versions Versions, repos store.Repos, provider llm.Provider, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		versions:    versions,
		performance: repos.Performance(),
		feedback:    repos.Feedback(),
		events:      repos.Events(),
		provider:    provider,
		cfg:         cfg,
		logger:      logging.OrNop(logger),
		now:         time.Now,
	}
}

// SetClock overrides the engine's time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Analyze builds the current metrics of a curriculum and judges them.
func (e *Engine) Analyze(ctx context.Context, gradeLevel int, subject string) (*Analysis, error) {
	a, _, err := e.analyze(ctx, gradeLevel, subject)
	return a, err
}

func (e *Engine) analyze(ctx context.Context, gradeLevel int, subject string) (*Analysis, *content.Curriculum, error) {
	c, err := e.versions.GetCurriculum(ctx, gradeLevel, subject)
	if err != nil {
		return nil, nil, err
	}
	records, err := e.performance.ListPerformance(ctx, gradeLevel, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("list performance: %w", err)
	}
	feedback, err := e.feedback.ListFeedback(ctx, gradeLevel, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("list feedback: %w", err)
	}

	a := Evaluate(BuildMetrics(records, feedback, c))
	a.AnalyzedAt = e.now().UTC()
	return &a, c, nil
}

// OptimizeResult describes one optimization attempt.
type OptimizeResult struct {
	Analysis        *Analysis           `json:"analysis"`
	Applied         bool                `json:"applied"`
	Curriculum      *content.Curriculum `json:"curriculum"`
	PreviousVersion string              `json:"previousVersion,omitempty"`
	Changes         []string            `json:"changes,omitempty"`

	// Notes carries the raw model output when it could not be parsed.
	Notes string `json:"notes,omitempty"`
}

// Optimize asks the generative service for refinements and publishes them
// as a new version, 0.1 above the current one. The current version is kept
// as the new version's previous version. When the refinements change
// nothing, or cannot be parsed, no version is published and Applied is
// false.
func (e *Engine) Optimize(ctx context.Context, gradeLevel int, subject string) (*OptimizeResult, error) {
	a, current, err := e.analyze(ctx, gradeLevel, subject)
	if err != nil {
		return nil, err
	}
	if a.Metrics.SampleSize < MinSampleSize {
		return nil, &InsufficientSampleError{SampleSize: a.Metrics.SampleSize, Required: MinSampleSize}
	}

	result := &OptimizeResult{Analysis: a, Curriculum: current}

	resp, err := llm.Generate(llm.WithPurpose(ctx, llm.PurposeRefinement), e.provider, llm.Request{
		System: refinementSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildRefinementMessage(a, topicLines(current))},
		},
		Schema:      RefinementSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate refinements: %w", err)
	}

	var r Refinement
	if err := llm.ParseLoose(resp.Content, &r); err != nil {
		e.logger.Warn("unparseable curriculum refinement",
			zap.Int("grade", gradeLevel),
			zap.String("subject", subject),
			zap.Error(err))
		result.Notes = llm.Text(resp.Content)
		return result, nil
	}

	topics, changes := r.Apply(subject, current.Topics)
	if len(changes) == 0 {
		return result, nil
	}
	if err := content.ValidatePrerequisites(topics); err != nil {
		return nil, fmt.Errorf("refined curriculum: %w", err)
	}

	version, err := content.NextVersion(current.Version)
	if err != nil {
		return nil, err
	}
	next := &content.Curriculum{
		ID:                 content.VersionID(gradeLevel, subject, version),
		GradeLevel:         gradeLevel,
		Subject:            subject,
		Topics:             topics,
		Version:            version,
		LastUpdated:        e.now().UTC(),
		OptimizationReason: cmp.Or(r.Reason, a.Reason),
		PreviousID:         current.ID,
		PreviousVersion:    current.Version,
	}
	if err := e.versions.Publish(ctx, next); err != nil {
		return nil, err
	}

	e.logger.Info("curriculum optimized",
		zap.Int("grade", gradeLevel),
		zap.String("subject", subject),
		zap.String("from", current.Version),
		zap.String("to", version),
		zap.Int("changes", len(changes)))

	result.Applied = true
	result.Curriculum = next
	result.PreviousVersion = current.Version
	result.Changes = changes
	return result, nil
}

func topicLines(c *content.Curriculum) []string {
	lines := make([]string, len(c.Topics))
	for i, t := range c.Topics {
		lines[i] = fmt.Sprintf("%d. %s (%s), difficulty %d, %d min", t.Order, t.ID, t.Title, t.Difficulty, t.ExpectedDurationMinutes)
	}
	return lines
}

// RunItem is the outcome for one curriculum in an automatic run.
type RunItem struct {
	GradeLevel int      `json:"gradeLevel"`
	Subject    string   `json:"subject"`
	Outcome    string   `json:"outcome"`
	Priority   Priority `json:"priority,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Version    string   `json:"version,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// RunSummary reports an automatic optimization run.
type RunSummary struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Processed  int       `json:"processed"`
	Optimized  int       `json:"optimized"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Items      []RunItem `json:"items"`

	// Review lists curricula that need optimization but were not urgent
	// enough to change without a human decision.
	Review []RunItem `json:"review,omitempty"`
}

// RunAutoOptimization analyzes every curriculum and optimizes those with
// high priority. Medium and low priority curricula are listed for review.
// A failure on one curriculum is counted and the run continues. The run
// waits Config.Delay between curricula and stops early when ctx is done,
// returning the partial summary with ctx's error.
func (e *Engine) RunAutoOptimization(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{StartedAt: e.now().UTC()}

	keys, err := e.versions.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list curricula: %w", err)
	}

	var runErr error
	for i, key := range keys {
		if i > 0 {
			if err := sleepCtx(ctx, e.cfg.Delay); err != nil {
				runErr = err
				break
			}
		} else if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		item := e.runOne(ctx, key)
		summary.Processed++
		switch item.Outcome {
		case OutcomeOptimized:
			summary.Optimized++
		case OutcomeFailed:
			summary.Failed++
		case OutcomeReview:
			summary.Skipped++
			summary.Review = append(summary.Review, item)
		default:
			summary.Skipped++
		}
		summary.Items = append(summary.Items, item)
		metrics.Optimizations.WithLabelValues(item.Outcome).Inc()
	}
	summary.FinishedAt = e.now().UTC()

	e.recordRun(ctx, summary)
	e.logger.Info("optimization run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("optimized", summary.Optimized),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("review", len(summary.Review)))
	return summary, runErr
}

func (e *Engine) runOne(ctx context.Context, key content.Key) RunItem {
	item := RunItem{GradeLevel: key.GradeLevel, Subject: key.Subject}
	fail := func(err error) RunItem {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		e.logger.Warn("curriculum optimization failed",
			zap.Int("grade", key.GradeLevel),
			zap.String("subject", key.Subject),
			zap.Error(err))
		return item
	}

	a, err := e.Analyze(ctx, key.GradeLevel, key.Subject)
	if err != nil {
		return fail(err)
	}
	item.Priority = a.Priority
	item.Reason = a.Reason
	item.Version = a.Version

	switch {
	case !a.NeedsOptimization:
		item.Outcome = OutcomeSkipped
		return item
	case a.Priority != PriorityHigh:
		item.Outcome = OutcomeReview
		return item
	}

	res, err := e.Optimize(ctx, key.GradeLevel, key.Subject)
	if err != nil {
		return fail(err)
	}
	if !res.Applied {
		item.Outcome = OutcomeSkipped
		return item
	}
	item.Outcome = OutcomeOptimized
	item.Version = res.Curriculum.Version
	return item
}

func (e *Engine) recordRun(ctx context.Context, s *RunSummary) {
	payload, err := json.Marshal(s)
	if err != nil {
		e.logger.Warn("encode run summary", zap.Error(err))
		return
	}
	err = e.events.AppendOptimizationRun(context.WithoutCancel(ctx), store.OptimizationRunData{
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Processed:  s.Processed,
		Optimized:  s.Optimized,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		Summary:    payload,
	})
	if err != nil {
		e.logger.Warn("record optimization run", zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
