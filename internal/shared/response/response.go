package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/shared"
	"movies-backend/internal/shared/apperror"
)

// StatusClientClosedRequest is returned when the caller gave up before storage answered.
const StatusClientClosedRequest = 499

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message)
}

func TooManyRequests(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}

// HandleError writes the response for errors shared by every domain.
// Domain handlers map their own sentinels first and fall through to this.
func HandleError(c *gin.Context, err error) {
	var validationErr *apperror.ValidationError
	switch {
	case errors.As(err, &validationErr):
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "One or more validation errors occurred", validationErr.Fields)
	case errors.Is(err, apperror.ErrCanceled):
		ErrorResponse(c, StatusClientClosedRequest, "CANCELED", "Request canceled")
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(shared.ContextKeyRequestID)).
			Str("path", c.Request.URL.Path).
			Msg("[Handler] unexpected error")
		InternalServerError(c, "Internal server error")
	}
}
