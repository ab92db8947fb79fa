package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so the HTTP layer can pick a status code.
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindInvalidIdentifier ErrorKind = "invalid_identifier"
	KindInvalidStatus     ErrorKind = "invalid_status"
	KindInvalidQuantity   ErrorKind = "invalid_quantity"
	KindInvalidPrice      ErrorKind = "invalid_price"
	KindNotFound          ErrorKind = "not_found"
	KindUnavailable       ErrorKind = "unavailable"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindConflict          ErrorKind = "conflict"
	KindUpstreamFailure   ErrorKind = "upstream_failure"
	KindInternal          ErrorKind = "internal"
)

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

// HTTPStatus maps the kind to the response code used by the API.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput, KindInvalidIdentifier, KindInvalidStatus,
		KindInvalidQuantity, KindInvalidPrice, KindUnavailable:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidInput(format string, args ...interface{}) *AppError {
	return newAppError(KindInvalidInput, format, args...)
}

func NewInvalidIdentifier(format string, args ...interface{}) *AppError {
	return newAppError(KindInvalidIdentifier, format, args...)
}

func NewInvalidStatus(format string, args ...interface{}) *AppError {
	return newAppError(KindInvalidStatus, format, args...)
}

func NewInvalidQuantity(format string, args ...interface{}) *AppError {
	return newAppError(KindInvalidQuantity, format, args...)
}

func NewInvalidPrice(format string, args ...interface{}) *AppError {
	return newAppError(KindInvalidPrice, format, args...)
}

func NewNotFound(format string, args ...interface{}) *AppError {
	return newAppError(KindNotFound, format, args...)
}

func NewUnavailable(format string, args ...interface{}) *AppError {
	return newAppError(KindUnavailable, format, args...)
}

func NewUnauthorized(format string, args ...interface{}) *AppError {
	return newAppError(KindUnauthorized, format, args...)
}

func NewForbidden(format string, args ...interface{}) *AppError {
	return newAppError(KindForbidden, format, args...)
}

func NewInvalidTransition(format string, args ...interface{}) *AppError {
	return newAppError(KindInvalidTransition, format, args...)
}

func NewConflict(format string, args ...interface{}) *AppError {
	return newAppError(KindConflict, format, args...)
}

// WrapUpstream marks err as a failure of the database or AI service.
func WrapUpstream(err error, format string, args ...interface{}) *AppError {
	e := newAppError(KindUpstreamFailure, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
