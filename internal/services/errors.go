package services

import (
	"errors"
	"fmt"

	"fintrack/internal/repositories"
)

// Error kinds returned by the services. Match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal error")
)

// ErrInvalidCredentials is the message of every authentication failure.
const ErrInvalidCredentials = "invalid credentials"

// Error is a service failure with a message safe to show to the caller.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func notFound(msg string) *Error { return newError(ErrNotFound, msg, nil) }

func conflict(msg string) *Error { return newError(ErrConflict, msg, nil) }

func forbidden(msg string) *Error { return newError(ErrForbidden, msg, nil) }

func unauthorized(err error) *Error { return newError(ErrUnauthorized, ErrInvalidCredentials, err) }

func internal(msg string, err error) *Error { return newError(ErrInternal, msg, err) }

// readError maps a repository failure on a read path.
func readError(entity string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(entity + " not found")
	}
	return internal("failed to load "+entity, err)
}

// writeError maps a repository failure on a write path.
func writeError(entity string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(entity + " not found")
	}
	return newError(ErrConflict, "failed to save "+entity, err)
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "internal server error"
}
