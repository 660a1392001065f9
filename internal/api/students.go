package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/diagnosis"
	"github.com/abhisek/tutorloop/internal/engagement"
	"github.com/abhisek/tutorloop/internal/store"
)

type studentRequest struct {
	GradeLevel        int      `json:"gradeLevel" binding:"required,min=1,max=12"`
	CurrentDifficulty int      `json:"currentDifficulty" binding:"omitempty,min=1,max=10"`
	MasteredTopics    []string `json:"masteredTopics"`
}

type studentResponse struct {
	ID                string    `json:"id"`
	GradeLevel        int       `json:"gradeLevel"`
	MasteredTopics    []string  `json:"masteredTopics"`
	CurrentTopic      string    `json:"currentTopic,omitempty"`
	CurrentDifficulty int       `json:"currentDifficulty"`
	UpdatedAt         time.Time `json:"updatedAt"`
	Streak            int       `json:"streak"`
}

func toStudentResponse(s *store.StudentRecord) studentResponse {
	mastered := s.MasteredTopics
	if mastered == nil {
		mastered = []string{}
	}
	return studentResponse{
		ID:                s.ID,
		GradeLevel:        s.GradeLevel,
		MasteredTopics:    mastered,
		CurrentTopic:      s.CurrentTopic,
		CurrentDifficulty: s.CurrentDifficulty,
		UpdatedAt:         s.UpdatedAt,
	}
}

// bind decodes the JSON body into req, writing a validation error on
// failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, validationError(err.Error()))
		return false
	}
	return true
}

func (s *Server) saveStudent(c *gin.Context) {
	var req studentRequest
	if !bind(c, &req) {
		return
	}
	rec := store.StudentRecord{
		ID:                c.Param("id"),
		GradeLevel:        req.GradeLevel,
		MasteredTopics:    req.MasteredTopics,
		CurrentDifficulty: req.CurrentDifficulty,
		UpdatedAt:         time.Now().UTC(),
	}
	if existing, err := s.Students.GetStudent(c, rec.ID); err == nil {
		rec.CurrentTopic = existing.CurrentTopic
		if rec.CurrentDifficulty == 0 {
			rec.CurrentDifficulty = existing.CurrentDifficulty
		}
		if rec.MasteredTopics == nil {
			rec.MasteredTopics = existing.MasteredTopics
		}
	}
	if err := s.Students.SaveStudent(c, rec); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStudentResponse(&rec))
}

func (s *Server) getStudent(c *gin.Context) {
	rec, err := s.Students.GetStudent(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := toStudentResponse(rec)
	if s.Engagement != nil {
		streak, err := s.Engagement.Streak(c, rec.ID)
		if err != nil {
			s.logger.Warn("streak lookup failed", zap.String("student", rec.ID), zap.Error(err))
		}
		resp.Streak = streak
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) patterns(c *gin.Context) {
	patterns, err := s.Analyzer.AnalyzePatterns(c, c.Param("id"), c.Query("subject"))
	if err != nil {
		writeError(c, err)
		return
	}
	if patterns == nil {
		patterns = []diagnosis.DetectedPattern{}
	}
	c.JSON(http.StatusOK, gin.H{
		"patterns":        patterns,
		"recommendations": diagnosis.GenerateRecommendations(patterns),
	})
}

type cardResponse struct {
	ID           string    `json:"id"`
	TopicID      string    `json:"topicId"`
	QuestionID   string    `json:"questionId"`
	Difficulty   int       `json:"difficulty"`
	NextReviewAt time.Time `json:"nextReviewAt"`
	Repetition   int       `json:"repetition"`
	IntervalDays int       `json:"intervalDays"`
	Ease         float64   `json:"ease"`
}

func (s *Server) dueReviews(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, validationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	cards, err := s.Scheduler.GetDueCards(c, c.Param("id"), c.Query("topicId"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]cardResponse, len(cards))
	for i, card := range cards {
		out[i] = cardResponse{
			ID:           card.ID,
			TopicID:      card.TopicID,
			QuestionID:   card.QuestionID,
			Difficulty:   card.Difficulty,
			NextReviewAt: card.NextReviewAt,
			Repetition:   card.Repetition,
			IntervalDays: card.IntervalDays,
			Ease:         card.Ease,
		}
	}
	c.JSON(http.StatusOK, gin.H{"cards": out})
}

type planRequest struct {
	Subject string `json:"subject" binding:"required"`
}

func (s *Server) createPlan(c *gin.Context) {
	var req planRequest
	if !bind(c, &req) {
		return
	}
	student, err := s.Students.GetStudent(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	plan, err := s.Planner.CreatePlan(c, *student, req.Subject)
	if err != nil {
		writeError(c, err)
		return
	}
	if plan == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (s *Server) activePlan(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		writeError(c, validationError("subject query parameter is required"))
		return
	}
	plan, err := s.Planner.ActivePlan(c, c.Param("id"), subject)
	if err != nil {
		writeError(c, err)
		return
	}
	if plan == nil {
		writeError(c, newError(http.StatusNotFound, CodeNotFound, "no active remediation plan", ""))
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) awards(c *gin.Context) {
	if s.Engagement == nil {
		c.JSON(http.StatusOK, gin.H{"awards": []engagement.Award{}, "streak": 0})
		return
	}
	id := c.Param("id")
	awards, err := s.Engagement.Awards(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	streak, err := s.Engagement.Streak(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if awards == nil {
		awards = []engagement.Award{}
	}
	c.JSON(http.StatusOK, gin.H{"awards": awards, "streak": streak})
}
