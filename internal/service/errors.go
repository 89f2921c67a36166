package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure at the user-facing boundary.
type Kind int

const (
	// KindUnknown is an error that did not come through this package.
	KindUnknown Kind = iota

	// KindTransport means the request could not be sent or the response
	// could not be parsed.
	KindTransport

	// KindServer means the backend answered with a non-success status.
	KindServer

	// KindValidation means the input was rejected locally, before any
	// request was made.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindServer:
		return "server error"
	case KindValidation:
		return "invalid input"
	default:
		return "error"
	}
}

// Error is a classified failure of one operation.
type Error struct {
	Kind   Kind
	Op     string // "load", "create", "toggle", "update", "delete"
	Status int    // HTTP status for KindServer
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		return e.Err.Error()
	case KindServer:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsNotFound reports whether the backend said the task does not exist.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsAuth reports whether the backend rejected the credentials.
func IsAuth(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}
