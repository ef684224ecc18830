package photomap

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode represents specific error codes for page-fetch and session
// operations.
type ErrorCode int

const (
	// ErrCodeInvalidRequest is returned when a search request is malformed.
	ErrCodeInvalidRequest ErrorCode = iota + 1000

	// ErrCodeNetwork is returned when the index server produced no response.
	ErrCodeNetwork

	// ErrCodeServer is returned when the index server reported a failure.
	ErrCodeServer

	// ErrCodeMalformedResponse is returned when a response body cannot be
	// parsed as a result page.
	ErrCodeMalformedResponse

	// ErrCodeCanceled is returned when an operation is canceled.
	ErrCodeCanceled

	// ErrCodeSuperseded is returned when a newer session invalidated the one
	// in flight.
	ErrCodeSuperseded
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidRequest:
		return "invalid request"
	case ErrCodeNetwork:
		return "server not accessible"
	case ErrCodeServer:
		return "server failed"
	case ErrCodeMalformedResponse:
		return "malformed response"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeSuperseded:
		return "session superseded"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Common errors that can be returned by fetch and session operations.
var (
	// ErrInvalidRequest is returned when a search request is malformed.
	ErrInvalidRequest = newErrorWithCode(ErrCodeInvalidRequest, "photomap: invalid request")

	// ErrNetwork is returned when the index server produced no response.
	ErrNetwork = newErrorWithCode(ErrCodeNetwork, "photomap: server not accessible")

	// ErrServer is returned when the index server reported a failure.
	ErrServer = newErrorWithCode(ErrCodeServer, "photomap: server failed")

	// ErrMalformedResponse is returned when a response body cannot be parsed
	// as a result page.
	ErrMalformedResponse = newErrorWithCode(ErrCodeMalformedResponse, "photomap: malformed response")

	// ErrCanceled is returned when an operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "photomap: operation canceled")

	// ErrSuperseded is returned when a newer session invalidated the one in
	// flight.
	ErrSuperseded = newErrorWithCode(ErrCodeSuperseded, "photomap: session superseded")
)

// ServerError carries the structured error body returned by the index server.
// Errors built with NewServerError match ErrServer under errors.Is and can be
// retrieved with errors.As.
type ServerError struct {
	// Code is the server's errorCode field.
	Code string
	// Message is the server's errorMessage field.
	Message string
}

// Error implements the error interface for ServerError.
func (e *ServerError) Error() string {
	return fmt.Sprintf("photomap: the server failed with: %s; %s", e.Code, e.Message)
}

// NewServerError creates an error for a structured server failure.
func NewServerError(code, message string) error {
	return errors.Mark(&ServerError{Code: code, Message: message}, ErrServer)
}
