package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/config"
	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/curriculum"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/engagement"
	"github.com/abhisek/tutorloop/internal/llm"
	"github.com/abhisek/tutorloop/internal/mastery"
	"github.com/abhisek/tutorloop/internal/remediation"
	"github.com/abhisek/tutorloop/internal/session"
	"github.com/abhisek/tutorloop/internal/spacedrep"
	"github.com/abhisek/tutorloop/internal/store"
)

// application holds every component built from the configuration.
type application struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store

	versions   *content.VersionedSource
	provider   llm.Provider
	engine     *curriculum.Engine
	recorder   *curriculum.Recorder
	diagnosis  *diagnosis.Service
	analyzer   *diagnosis.Analyzer
	scheduler  *spacedrep.Scheduler
	engagement *engagement.Service
	planner    *remediation.Planner
	sessions   *session.Orchestrator
}

// buildApp opens the store and wires the engine. Without a configured
// generative service the engine still runs: hints and lessons fall back
// to stored content and optimization reports the service as unavailable.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	lib, err := content.DefaultLibrary()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load content: %w", err)
	}

	a := &application{cfg: cfg, logger: logger, store: st}
	a.versions = content.NewVersionedSource(lib, st.Curricula())

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.Events(), logger)
	switch {
	case err == nil:
		a.provider = provider
		logger.Info("generative service configured",
			zap.String("provider", provider.Name()),
			zap.String("model", provider.ModelID()))
	case errors.Is(err, llm.ErrServiceUnavailable):
		logger.Warn("no generative service configured; hints, lessons and optimization use fallbacks")
	default:
		st.Close()
		return nil, err
	}

	a.engine = curriculum.NewEngine(a.versions, st, a.provider, cfg.EngineConfig(), logger.Named("curriculum"))
	a.recorder = curriculum.NewRecorder(st.Performance(), cfg.Recorder.Buffer, logger.Named("recorder"))
	a.diagnosis = diagnosis.NewService(st.Mistakes(), a.provider, logger.Named("diagnosis"))
	a.analyzer = diagnosis.NewAnalyzer(st.Mistakes())
	a.scheduler = spacedrep.NewScheduler(st.Cards())
	a.engagement = engagement.NewService(st.Events(), logger.Named("engagement"))
	a.planner = remediation.NewPlanner(a.analyzer, a.versions, st.Plans(),
		remediation.NewLessonWriter(a.provider, remediation.DefaultLessonConfig()))

	a.sessions = session.NewOrchestrator(session.Deps{
		Source:        a.versions,
		Students:      st.Students(),
		Scheduler:     a.scheduler,
		Mastery:       mastery.NewService(st.Trackers()),
		Diagnosis:     a.diagnosis,
		Planner:       a.planner,
		Engagement:    a.engagement,
		Performance:   a.recorder,
		Provider:      a.provider,
		QuestionCount: cfg.Session.QuestionCount,
		Logger:        logger.Named("session"),
	})
	return a, nil
}

// Close drains background work, then closes the store.
func (a *application) Close() error {
	a.recorder.Close()
	a.diagnosis.Close()
	return a.store.Close()
}
