package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/abhisek/tutorloop/internal/content"
	"github.com/abhisek/tutorloop/internal/curriculum"
	"github.com/abhisek/tutorloop/internal/llm"
	"github.com/abhisek/tutorloop/internal/session"
	"github.com/abhisek/tutorloop/internal/store"
)

// AppError is the JSON body of every error response.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

// Error codes.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeNoActiveSession    = "NO_ACTIVE_SESSION"
	CodeNoActiveContent    = "NO_ACTIVE_CONTENT"
	CodeInsufficientSample = "INSUFFICIENT_SAMPLE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeMalformedContent   = "MALFORMED_CONTENT"
	CodeInternalError      = "INTERNAL_ERROR"
)

func newError(status int, code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details, Status: status}
}

func validationError(details string) *AppError {
	return newError(http.StatusBadRequest, CodeValidation, "invalid request", details)
}

// toAppError maps domain errors onto HTTP errors.
func toAppError(err error) *AppError {
	var (
		appErr    *AppError
		verrs     validator.ValidationErrors
		sample    *curriculum.InsufficientSampleError
		noContent *content.NoContentError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &verrs):
		return validationError(describeValidation(verrs))
	case errors.Is(err, session.ErrInvalidOptions), errors.Is(err, curriculum.ErrInvalidRating):
		return validationError(err.Error())
	case errors.Is(err, session.ErrNoActiveSession):
		return newError(http.StatusNotFound, CodeNoActiveSession, "no active session", "")
	case errors.Is(err, session.ErrSessionActive),
		errors.Is(err, session.ErrSessionPaused),
		errors.Is(err, session.ErrSessionFinished):
		return newError(http.StatusConflict, CodeConflict, err.Error(), "")
	case errors.As(err, &noContent):
		return newError(http.StatusNotFound, CodeNoActiveContent, "no active content", noContent.Error())
	case errors.Is(err, content.ErrNoActiveContent):
		return newError(http.StatusNotFound, CodeNoActiveContent, "no active content", "")
	case errors.Is(err, content.ErrNoPreviousVersion):
		return newError(http.StatusConflict, CodeConflict, "nothing to roll back to", err.Error())
	case errors.Is(err, store.ErrNotFound):
		return newError(http.StatusNotFound, CodeNotFound, "not found", err.Error())
	case errors.As(err, &sample):
		return newError(http.StatusUnprocessableEntity, CodeInsufficientSample, "not enough performance data", sample.Error())
	case errors.Is(err, llm.ErrMalformedContent):
		return newError(http.StatusBadGateway, CodeMalformedContent, "generative service returned malformed content", "")
	case errors.Is(err, llm.ErrServiceUnavailable):
		return newError(http.StatusServiceUnavailable, CodeServiceUnavailable, "generative service unavailable", "")
	default:
		return newError(http.StatusInternalServerError, CodeInternalError, "internal server error", "")
	}
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// writeError sends err as an AppError and records it on the context for
// the request logger.
func writeError(c *gin.Context, err error) {
	appErr := toAppError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.Status, appErr)
}
