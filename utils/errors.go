package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind discriminates application failures so the HTTP layer can map
// each one to a stable status code.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindUnavailable
	KindInvalidInput
	KindInvalidTransition
	KindForbidden
	KindUnauthorized
	KindDeliveryFailure
)

type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Errorf builds an AppError with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, or 0 if err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// HTTPStatus maps an error to the status code the boundary layer responds
// with. Unrecognized errors are treated as internal.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable, KindInvalidInput, KindInvalidTransition:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
