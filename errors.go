package reqwest

import (
	"errors"
	"fmt"
)

// ErrorKind classifies where in the request lifecycle an Error arose.
type ErrorKind string

const (
	// KindBuilder marks errors captured while constructing a request
	// (invalid method, URL, header name/value or body encoding).
	KindBuilder ErrorKind = "builder"

	// KindTransport marks errors raised while dispatching a request.
	KindTransport ErrorKind = "transport"
)

// ErrBuilderConsumed is returned by a terminal builder call after the
// builder has already been consumed by Build or Send.
var ErrBuilderConsumed = errors.New("reqwest: request builder already consumed")

// Error is the error type surfaced by Build and Send. It carries the kind
// of failure, the request URL when known, and the underlying cause.
type Error struct {
	Kind ErrorKind
	URL  string
	err  error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("reqwest: %s error for %s: %v", e.Kind, e.URL, e.err)
	}
	return fmt.Sprintf("reqwest: %s error: %v", e.Kind, e.err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.err }

// NewTransportError wraps err as a dispatch error for the given URL. It
// exists for Transport implementations outside this package; the core uses
// the internal helpers below.
func NewTransportError(url string, err error) *Error {
	return transportError(url, err)
}

// builderError wraps err as a construction error.
func builderError(err error) *Error {
	return &Error{Kind: KindBuilder, err: err}
}

// transportError wraps err as a dispatch error for the given URL.
func transportError(url string, err error) *Error {
	return &Error{Kind: KindTransport, URL: url, err: err}
}

// IsBuilderError reports whether err is a construction error.
func IsBuilderError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindBuilder
}

// IsTransportError reports whether err is a dispatch error.
func IsTransportError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTransport
}
