package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Handlers and services wrap these
// with Fail to attach an endpoint-specific message.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type apiError struct {
	base    error
	message string
}

func (e *apiError) Error() string { return e.message }
func (e *apiError) Unwrap() error { return e.base }

// Fail wraps a sentinel error with the message that will be surfaced to the
// client.
func Fail(base error, message string) error {
	return &apiError{base: base, message: message}
}

// RespondError maps a domain error to an HTTP response. Unknown errors
// become an opaque 500; their detail never reaches the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrValidation):
		Message(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		Message(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Message(w, http.StatusUnauthorized, "Unauthorized")
	default:
		Message(w, http.StatusInternalServerError, "Something went wrong!")
	}
}
