package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handleError maps service errors to HTTP status codes. Unrecognized
// errors become opaque 500s so internals never leak to the client.
func handleError(c *gin.Context, err error, l *logger.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var response ErrorResponse

	switch {
	case errors.Is(err, model.ErrNotFound):
		statusCode = http.StatusNotFound
		response = ErrorResponse{
			Error:   "not_found",
			Message: "the requested resource was not found",
		}

	case errors.Is(err, model.ErrDuplicateIdentity):
		statusCode = http.StatusConflict
		response = ErrorResponse{
			Error:   "conflict",
			Message: "email or username is already taken",
		}

	case errors.Is(err, model.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		response = ErrorResponse{
			Error:   "invalid_credentials",
			Message: "login or password is incorrect",
		}

	case errors.Is(err, model.ErrInvalidToken):
		statusCode = http.StatusUnauthorized
		response = ErrorResponse{
			Error:   "invalid_token",
			Message: "token is invalid or expired",
		}

	case errors.Is(err, model.ErrAuthenticationFailed):
		statusCode = http.StatusUnauthorized
		response = ErrorResponse{
			Error:   "authentication_failed",
			Message: "authentication failed",
		}

	case errors.Is(err, model.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		response = ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		}

	default:
		statusCode = http.StatusInternalServerError
		response = ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		}
	}

	if statusCode == http.StatusInternalServerError {
		l.Error("request failed",
			"status_code", statusCode,
			"error", err.Error())
	} else {
		l.Debug("request rejected",
			"status_code", statusCode,
			"error", err.Error())
	}

	c.JSON(statusCode, response)
}

// handleBindError writes a 400 for malformed JSON or parameters.
func handleBindError(c *gin.Context, err error, l *logger.Logger) {
	l.Debug("bad request", "error", err.Error())
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// handleValidationError writes a 422 for requests that parsed but failed
// validation.
func handleValidationError(c *gin.Context, err error, l *logger.Logger) {
	l.Debug("validation failed", "error", err.Error())
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
