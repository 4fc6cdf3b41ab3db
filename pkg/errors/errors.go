package custom_error

import (
	"errors"
	"fmt"
	"net/http"
)

type CustomError interface {
	Error() string
}

type UniqueViolationError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23505")
}

type ForeignKeyViolationError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23503")
}

func (f *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", f.message, f.code)
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", e.message, e.code)
}

func WrapDBError(message, code string) CustomError {
	switch code {
	case "23505":
		return &UniqueViolationError{
			message: message,
			code:    code,
		}
	case "23503":
		return &ForeignKeyViolationError{
			message: "Value is already used by other resources " + message,
			code:    code,
		}
	default:
		return fmt.Errorf("uncategorized error occurred with code %s: %s", code, message)
	}
}

// ValidationError covers malformed input: non-positive quantities, bad label
// numbers, missing fields, op-number regression.
type ValidationError struct {
	Message  string `json:"message"`
	Property string `json:"property,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s: %s", e.Property, e.Message)
	}
	return e.Message
}

func NewValidationError(property, message string) *ValidationError {
	return &ValidationError{Message: message, Property: property}
}

// NotFoundError covers unknown ids: part, operation, section, route step,
// balance, label, transfer, audit.
type NotFoundError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
}

func NewNotFoundError(resource, format string, args ...any) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: fmt.Sprintf(format, args...)}
}

// ConflictError covers business-rule failures that depend on current state:
// insufficient balance, scrap mismatch, consumed labels, double-revert.
type ConflictError struct {
	Message string `json:"message"`
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// HTTPStatus maps an error kind onto the HTTP status handlers respond with:
// Validation 400, NotFound 404, Conflict 409, everything else 500.
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
