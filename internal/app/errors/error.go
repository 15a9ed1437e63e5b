package errors

import (
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(statusCode int, code, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewValidationError is for caller-supplied data that violates an invariant
// before any state change. The unit of work is never committed.
func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message[0])
	}
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
}

// NewImmutableRecordError is for attempted mutation of an audit log entry
// outside the maintenance bypass. Never retried.
func NewImmutableRecordError(message string) *AppError {
	return NewAppError(http.StatusForbidden, "IMMUTABLE_RECORD", message)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message)
}

// NewConflictError is for a concurrent mutation that raced and lost. The
// caller should retry the whole operation from a fresh read.
func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message)
}

// NewUserError is for a failed business-rule gate. Actionable by the end
// user, not a system fault.
func NewUserError(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, "USER_ERROR", message)
}

func NewInternalServerError(originalError error, message string) *AppError {
	logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
