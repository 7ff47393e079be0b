package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/taskraum/taskraum-mcp/internal/validate"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// Error codes for MCP tool responses.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeAuthRequired  = "AUTH_REQUIRED"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeTaskraumError = "TASKRAUM_ERROR"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapAPIError converts a client or validation error to a coded error.
func WrapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	var verr *validate.Error
	var apiErr *client.APIError
	var netErr net.Error

	switch {
	case errors.As(err, &verr):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: verr.Error(), Cause: err}

	case errors.As(err, &apiErr):
		coded = &CodedError{Code: codeForStatus(apiErr.StatusCode), Message: apiErr.Message, Cause: err}
		if coded.Code == ErrCodeAuthRequired {
			coded.Message = "not logged in or the session expired; call taskraum_login"
		}

	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}

	default:
		coded = &CodedError{Code: ErrCodeTaskraumError, Message: err.Error(), Cause: err}
	}

	slog.Warn("taskraum API error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrCodeInvalidInput
	case http.StatusUnauthorized:
		return ErrCodeAuthRequired
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	default:
		return ErrCodeTaskraumError
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
