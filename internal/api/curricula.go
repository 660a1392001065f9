package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/tutorloop/internal/curriculum"
)

type curriculumKey struct {
	GradeLevel int    `json:"gradeLevel"`
	Subject    string `json:"subject"`
}

// curriculumParams reads :grade and :subject.
func curriculumParams(c *gin.Context) (int, string, bool) {
	grade, err := strconv.Atoi(c.Param("grade"))
	if err != nil || grade < 1 || grade > 12 {
		writeError(c, validationError("grade must be an integer between 1 and 12"))
		return 0, "", false
	}
	return grade, c.Param("subject"), true
}

func (s *Server) listCurricula(c *gin.Context) {
	keys, err := s.Curricula.Keys(c)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]curriculumKey, len(keys))
	for i, k := range keys {
		out[i] = curriculumKey{GradeLevel: k.GradeLevel, Subject: k.Subject}
	}
	c.JSON(http.StatusOK, gin.H{"curricula": out})
}

func (s *Server) getCurriculum(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	cur, err := s.Curricula.GetCurriculum(c, grade, subject)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

type versionSummary struct {
	ID                 string    `json:"id"`
	Version            string    `json:"version"`
	LastUpdated        time.Time `json:"lastUpdated"`
	OptimizationReason string    `json:"optimizationReason,omitempty"`
	PreviousVersion    string    `json:"previousVersion,omitempty"`
	Topics             int       `json:"topics"`
}

func (s *Server) curriculumHistory(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	history, err := s.Engine.History(c, grade, subject)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]versionSummary, len(history))
	for i, cur := range history {
		out[i] = versionSummary{
			ID:                 cur.ID,
			Version:            cur.Version,
			LastUpdated:        cur.LastUpdated,
			OptimizationReason: cur.OptimizationReason,
			PreviousVersion:    cur.PreviousVersion,
			Topics:             len(cur.Topics),
		}
	}
	c.JSON(http.StatusOK, gin.H{"versions": out})
}

func (s *Server) analyzeCurriculum(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	a, err := s.Engine.Analyze(c, grade, subject)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) optimizeCurriculum(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	res, err := s.Engine.Optimize(c, grade, subject)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) runOptimization(c *gin.Context) {
	sum, err := s.Engine.RunAutoOptimization(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) curriculumQuality(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	q, err := s.Engine.Quality(c, grade, subject)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type feedbackRequest struct {
	TopicID   string `json:"topicId"`
	StudentID string `json:"studentId"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}

type feedbackResponse struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topicId,omitempty"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) submitFeedback(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	var req feedbackRequest
	if !bind(c, &req) {
		return
	}
	rec, err := s.Engine.SubmitFeedback(c, curriculum.FeedbackInput{
		GradeLevel: grade,
		Subject:    subject,
		TopicID:    req.TopicID,
		StudentID:  req.StudentID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedbackResponse{
		ID:        rec.ID,
		TopicID:   rec.TopicID,
		Rating:    rec.Rating,
		CreatedAt: rec.CreatedAt,
	})
}

func (s *Server) feedbackSummary(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	sum, err := s.Engine.FeedbackSummary(c, grade, subject)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) rollbackCurriculum(c *gin.Context) {
	grade, subject, ok := curriculumParams(c)
	if !ok {
		return
	}
	cur, err := s.Engine.Rollback(c, grade, subject)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": cur.Version, "curriculum": cur})
}
