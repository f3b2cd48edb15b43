package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation             ErrorKind = "validation"
	KindInvalidCredentials     ErrorKind = "invalid_credentials"
	KindUnauthenticated        ErrorKind = "unauthenticated"
	KindForbidden              ErrorKind = "forbidden"
	KindNotFound               ErrorKind = "not_found"
	KindInvalidStateTransition ErrorKind = "invalid_state_transition"
	KindAlreadyCheckedOut      ErrorKind = "already_checked_out"
	KindConflict               ErrorKind = "conflict"
	KindInternal               ErrorKind = "internal"
)

// AppError is the failure type returned by services and rendered by handlers.
type AppError struct {
	Kind    ErrorKind
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

// Is matches on kind, so errors.Is(err, &AppError{Kind: KindNotFound}) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidStateTransition, KindAlreadyCheckedOut, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func ErrValidation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func ErrInvalidCredentials() *AppError {
	return &AppError{Kind: KindInvalidCredentials, Message: "invalid email or password"}
}

func ErrUnauthenticated() *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: "authentication required"}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func ErrNotFound(entity string) *AppError {
	return &AppError{Kind: KindNotFound, Message: entity + " not found"}
}

func ErrInvalidStateTransition(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidStateTransition, Message: fmt.Sprintf(format, args...)}
}

func ErrAlreadyCheckedOut() *AppError {
	return &AppError{Kind: KindAlreadyCheckedOut, Message: "check-in is already checked out"}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func ErrInternal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
