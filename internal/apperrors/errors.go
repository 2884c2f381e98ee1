// Package apperrors defines the error taxonomy shared by the services and
// its mapping onto HTTP status codes.
package apperrors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError carries the reasons a request was rejected.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a ValidationError.
func Validation(reasons ...string) error {
	return &ValidationError{Reasons: reasons}
}

// NotFoundError reports that an id has no matching document.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError with a client-facing message.
func NotFound(message string) error {
	return &NotFoundError{Message: message}
}

// StatusCode maps an error onto the HTTP status returned to the client.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Validation and not-found
// errors keep their own text; anything else is reported verbatim as well,
// matching how the services have always surfaced store failures.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Message
	}
	return err.Error()
}
