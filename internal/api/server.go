// Package api is the HTTP boundary of the engine: thin gin handlers over
// the session orchestrator, the diagnosis and remediation components and
// the curriculum engine.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/curriculum"
	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/engagement"
	"github.com/abhisek/tutorloop/internal/logging"
	"github.com/abhisek/tutorloop/internal/metrics"
	"github.com/abhisek/tutorloop/internal/remediation"
	"github.com/abhisek/tutorloop/internal/session"
	"github.com/abhisek/tutorloop/internal/spacedrep"
	"github.com/abhisek/tutorloop/internal/store"
)

// Deps are the components the API serves.
type Deps struct {
	Sessions   *session.Orchestrator
	Students   store.StudentRepo
	Analyzer   *diagnosis.Analyzer
	Planner    *remediation.Planner
	Scheduler  *spacedrep.Scheduler
	Engagement *engagement.Service
	Engine     *curriculum.Engine
	Curricula  curriculum.Versions
	Logger     *zap.Logger
}

// Server serves the API.
type Server struct {
	Deps
	router *gin.Engine
	logger *zap.Logger
}

const shutdownTimeout = 10 * time.Second

// NewServer builds the router. mode is a gin mode (debug, release, test).
func NewServer(d Deps, mode string) *Server {
	gin.SetMode(mode)
	s := &Server{Deps: d, router: gin.New(), logger: logging.OrNop(d.Logger).Named("api")}
	s.router.Use(recovery(s.logger), requestLogger(s.logger))
	s.routes()
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")

	st := v1.Group("/students/:id")
	st.PUT("", s.saveStudent)
	st.GET("", s.getStudent)
	st.POST("/session", s.startSession)
	st.GET("/session", s.currentSession)
	st.DELETE("/session", s.abandonSession)
	st.POST("/session/answer", s.submitAnswer)
	st.POST("/session/pause", s.pauseSession)
	st.POST("/session/resume", s.resumeSession)
	st.POST("/session/complete", s.completeSession)
	st.POST("/session/hint", s.requestHint)
	st.GET("/patterns", s.patterns)
	st.GET("/reviews/due", s.dueReviews)
	st.GET("/remediation", s.activePlan)
	st.POST("/remediation", s.createPlan)
	st.GET("/awards", s.awards)

	cur := v1.Group("/curricula")
	cur.GET("", s.listCurricula)
	cur.POST("/optimize", s.runOptimization)
	one := cur.Group("/:grade/:subject")
	one.GET("", s.getCurriculum)
	one.GET("/history", s.curriculumHistory)
	one.GET("/analysis", s.analyzeCurriculum)
	one.POST("/optimize", s.optimizeCurriculum)
	one.GET("/quality", s.curriculumQuality)
	one.GET("/feedback", s.feedbackSummary)
	one.POST("/feedback", s.submitFeedback)
	one.POST("/rollback", s.rollbackCurriculum)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"activeSessions": s.Sessions.ActiveSessions(),
	})
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
