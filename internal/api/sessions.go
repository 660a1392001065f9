package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/tutorloop/internal/session"
)

// sessionView is a session as shown to the student: questions are listed
// without their answers.
type sessionView struct {
	ID              string                `json:"id"`
	StudentID       string                `json:"studentId"`
	Type            session.Type          `json:"type"`
	Strategy        session.Strategy      `json:"strategy"`
	Subject         string                `json:"subject"`
	GradeLevel      int                   `json:"gradeLevel"`
	TopicID         string                `json:"topicId,omitempty"`
	PlanID          string                `json:"planId,omitempty"`
	TotalQuestions  int                   `json:"totalQuestions"`
	CurrentIndex    int                   `json:"currentIndex"`
	CurrentQuestion *session.QuestionView `json:"currentQuestion"`
	Performance     session.Performance   `json:"performance"`
	HintsUsed       int                   `json:"hintsUsed"`
	HelpRequests    int                   `json:"helpRequests"`
	Status          session.Status        `json:"status"`
	Paused          bool                  `json:"paused"`
	StartTime       time.Time             `json:"startTime"`
}

func toSessionView(s *session.Session) sessionView {
	return sessionView{
		ID:              s.ID,
		StudentID:       s.StudentID,
		Type:            s.Type,
		Strategy:        s.Strategy,
		Subject:         s.Subject,
		GradeLevel:      s.GradeLevel,
		TopicID:         s.TopicID,
		PlanID:          s.PlanID,
		TotalQuestions:  len(s.Items),
		CurrentIndex:    s.CurrentIndex,
		CurrentQuestion: s.CurrentView(),
		Performance:     s.Performance,
		HintsUsed:       s.HintsUsed,
		HelpRequests:    s.HelpRequests,
		Status:          s.Status,
		Paused:          s.Paused,
		StartTime:       s.StartTime,
	}
}

type startRequest struct {
	Type          string `json:"type"`
	Subject       string `json:"subject"`
	TopicID       string `json:"topicId"`
	QuestionCount int    `json:"questionCount"`
}

func (s *Server) startSession(c *gin.Context) {
	var req startRequest
	if !bind(c, &req) {
		return
	}
	sess, err := s.Sessions.StartSession(c, c.Param("id"), session.Options{
		Type:          session.Type(req.Type),
		Subject:       req.Subject,
		TopicID:       req.TopicID,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionView(sess))
}

func (s *Server) currentSession(c *gin.Context) {
	sess, err := s.Sessions.CurrentSession(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess))
}

func (s *Server) abandonSession(c *gin.Context) {
	if err := s.Sessions.AbandonSession(c, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type answerRequest struct {
	Answer     string    `json:"answer" binding:"required"`
	StartTime  time.Time `json:"startTime"`
	Confidence float64   `json:"confidence" binding:"min=0,max=1"`
	HintsUsed  int       `json:"hintsUsed" binding:"min=0"`
}

func (s *Server) submitAnswer(c *gin.Context) {
	var req answerRequest
	if !bind(c, &req) {
		return
	}
	res, err := s.Sessions.SubmitAnswer(c, c.Param("id"), req.Answer, session.SubmitOptions{
		StartTime:  req.StartTime,
		Confidence: req.Confidence,
		HintsUsed:  req.HintsUsed,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) pauseSession(c *gin.Context) {
	sess, err := s.Sessions.PauseSession(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess))
}

func (s *Server) resumeSession(c *gin.Context) {
	sess, err := s.Sessions.ResumeSession(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess))
}

type summaryResponse struct {
	*session.Summary
	Session         sessionView `json:"session"`
	DurationSeconds float64     `json:"durationSeconds"`
}

func (s *Server) completeSession(c *gin.Context) {
	sum, err := s.Sessions.CompleteSession(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{
		Summary:         sum,
		Session:         toSessionView(sum.Session),
		DurationSeconds: sum.Duration.Seconds(),
	})
}

func (s *Server) requestHint(c *gin.Context) {
	hint, err := s.Sessions.RequestHint(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, hint)
}
