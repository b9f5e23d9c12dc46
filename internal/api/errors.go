// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/dashboard"
	"github.com/paperiq/dashboard/internal/upload"
	"go.uber.org/zap"
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

// APIError represents a structured API error response
type APIError struct {
	Status   int    `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error with a user-facing message
func NewValidationError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// NewUnauthorizedError creates a 401 that tells the client where to log in
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Status:   http.StatusUnauthorized,
		Code:     "UNAUTHORIZED",
		Message:  message,
		Redirect: LoginPath,
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "PRECONDITION_FAILED",
		Message: message,
	}
}

// NewBadGatewayError creates a 502 for a failed backend call
func NewBadGatewayError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadGateway,
		Code:    "BACKEND_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromError maps domain errors onto API errors. Unknown errors become 500s.
func FromError(err error) *APIError {
	var (
		apiErr  *APIError
		rej     *upload.RejectError
		pre     *dashboard.PreconditionError
		input   *backend.InputError
		status  *backend.StatusError
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, backend.ErrUnauthorized):
		return NewUnauthorizedError(dashboard.MsgSessionExpired)
	case errors.Is(err, backend.ErrNotLoggedIn):
		return NewConflictError("User not logged in")
	case errors.As(err, &rej):
		return NewValidationError(rej.Message)
	case errors.As(err, &pre):
		return NewConflictError(pre.Message)
	case errors.As(err, &input):
		return &APIError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: input.Error()}
	case errors.As(err, &status):
		return NewBadGatewayError(status.Message, err)
	case errors.As(err, &httpErr):
		return &APIError{Status: httpErr.Code, Code: "HTTP_ERROR", Message: fmt.Sprintf("%v", httpErr.Message)}
	default:
		return NewInternalError("An unexpected error occurred", err)
	}
}

// ErrorHandler returns the echo error handler. Details of unexpected errors
// are only exposed when showDetails is set.
func ErrorHandler(logger *zap.Logger, showDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := FromError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
			if !showDetails {
				apiErr = &APIError{Status: apiErr.Status, Code: apiErr.Code, Message: apiErr.Message}
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		_ = c.JSON(apiErr.Status, apiErr)
	}
}
