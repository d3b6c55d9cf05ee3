package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/data/query"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// Envelope wraps every successful response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Meta    *query.Meta `json:"meta,omitempty"`
	Data    any         `json:"data"`
}

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation, domainagg.CodeOutOfRange:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodeRetryable:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusUnprocessableEntity
	case domainagg.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err with the status its code maps to. Uncoded errors
// are internal and their text is not exposed.
func RespondError(c *gin.Context, err error) {
	var aggErr *domainagg.Error
	if !errors.As(err, &aggErr) {
		_ = c.Error(err)
		RespondStatus(c, http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
		return
	}
	status := StatusFor(aggErr.Code)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	msg := aggErr.Message
	if msg == "" {
		msg = string(aggErr.Code)
	}
	RespondStatus(c, status, string(aggErr.Code), errors.New(msg))
}

func RespondStatus(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func RespondPage(c *gin.Context, message string, meta query.Meta, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Meta: &meta, Data: data})
}
