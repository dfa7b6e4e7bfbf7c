package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed console error with HTTP awareness. Status carries
// the upstream response code when the error originated from the accounts API.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the failure classes the console distinguishes.
var (
	// ErrTransport covers network-level failures before a response exists.
	ErrTransport = New("TRANSPORT_ERROR", 0, "request could not be completed")
	// ErrDecode covers non-JSON bodies and shape mismatches.
	ErrDecode = New("DECODE_ERROR", 0, "response could not be decoded")
	// ErrAPI covers non-2xx responses without a usable application payload.
	ErrAPI = New("API_ERROR", http.StatusBadGateway, "accounts API returned an error status")
	// ErrRequestRejected covers success:false payloads; Message carries the
	// server-provided text verbatim.
	ErrRequestRejected = New("REQUEST_REJECTED", http.StatusOK, "request rejected by the accounts API")

	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrConfirmationMismatch = New("CONFIRMATION_MISMATCH", http.StatusBadRequest, "confirmation phrase does not match")
	ErrCacheMiss            = New("CACHE_MISS", 0, "cache miss")
	ErrJobStale             = New("JOB_STALE", 0, "job exceeded its staleness bound")
	ErrBusy                 = New("BUSY", http.StatusConflict, "another submission is already in flight")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target, so sentinel
// comparisons survive Wrap/Clone copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}
