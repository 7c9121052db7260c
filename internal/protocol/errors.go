// Package protocol interprets the server's response envelope and decodes
// the payload of each command into domain types.
package protocol

import (
	"errors"
	"fmt"
)

// Protocol error kinds. A *ProtocolError unwraps to exactly one of these.
var (
	ErrMalformedEnvelope      = errors.New("malformed envelope")
	ErrMalformedErrorEnvelope = errors.New("malformed error envelope")
	ErrMalformedPayload       = errors.New("malformed payload")
	ErrMalformedPlayerEntry   = errors.New("malformed player entry")
)

// ErrTransport matches any *TransportError via errors.Is
var ErrTransport = errors.New("transport failure")

// RemoteError is an application failure reported by the server in the error envelope
type RemoteError struct {
	ID          int
	Description string
	Info        string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server error %d: %s (%s)", e.ID, e.Description, e.Info)
}

// ProtocolError means a response was valid JSON but not the shape this client expects
type ProtocolError struct {
	Kind   error
	Field  string
	Detail string
}

func (e *ProtocolError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Kind
}

func newProtocolError(kind error, field, detail string) *ProtocolError {
	return &ProtocolError{Kind: kind, Field: field, Detail: detail}
}

// TransportError means the round trip itself failed: connectivity, timeout,
// or a body that is not JSON. Status is zero when no response was received.
type TransportError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Method, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets callers test for any transport failure with errors.Is(err, ErrTransport)
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
