package llm

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates the backend answered with a success status
// but the payload carried no extractable text.
var ErrMalformedResponse = errors.New("llm: backend response carries no text")

// TransportError indicates the backend was unreachable or answered with a
// non-success status. A turn that hits one is aborted and must be resent;
// the gateway never retries on its own.
type TransportError struct {
	// Status is the HTTP status code, or 0 when the request never
	// completed.
	Status int
	// Body holds a truncated error body for diagnostics.
	Body string
	// Err is the underlying network error, if any.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm: transport: %v", e.Err)
	}
	return fmt.Sprintf("llm: backend status %d: %s", e.Status, e.Body)
}

// Unwrap exposes the underlying network error.
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
