package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

// AppError represents an error with the HTTP status it should produce.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapError maps a domain error to an AppError with an appropriate HTTP status code.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrRunNotFound):
		return NewAppError(http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, domain.ErrReadOnly):
		return NewAppError(http.StatusMethodNotAllowed, "Artifacts are read-only", err)
	case errors.Is(err, domain.ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, "Source not authorized", err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		return NewAppError(http.StatusBadRequest, "Invalid request", err)
	default:
		return NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}
