package mocks

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mcoot/matchclient/internal/protocol"
	"github.com/mcoot/matchclient/internal/transport"
)

// RecordedCall is one call observed by MockTransport
type RecordedCall struct {
	Method string
	Path   string
	Query  []transport.Param
	Body   string
}

type scripted struct {
	body string
	err  error
}

// MockTransport is a scripted Transport for testing.
// Responses are queued per method+path; the last one queued repeats.
type MockTransport struct {
	Calls []RecordedCall

	responses map[string][]scripted
}

// Ensure MockTransport implements Transport
var _ transport.Transport = (*MockTransport)(nil)

// NewMockTransport creates a MockTransport with nothing scripted
func NewMockTransport() *MockTransport {
	return &MockTransport{responses: make(map[string][]scripted)}
}

func key(method, path string) string {
	return method + " " + path
}

// Respond queues a raw JSON body for method+path
func (m *MockTransport) Respond(method, path, body string) {
	k := key(method, path)
	m.responses[k] = append(m.responses[k], scripted{body: body})
}

// Fail queues a transport failure for method+path
func (m *MockTransport) Fail(method, path string, err error) {
	k := key(method, path)
	m.responses[k] = append(m.responses[k], scripted{err: err})
}

// Call records the call and returns the next scripted response
func (m *MockTransport) Call(_ context.Context, method, path string, query []transport.Param, body string) (json.RawMessage, error) {
	m.Calls = append(m.Calls, RecordedCall{Method: method, Path: path, Query: query, Body: body})

	k := key(method, path)
	queue := m.responses[k]
	if len(queue) == 0 {
		return nil, &protocol.TransportError{Method: method, Path: path, Err: errors.New("no response scripted")}
	}

	next := queue[0]
	if len(queue) > 1 {
		m.responses[k] = queue[1:]
	}

	if next.err != nil {
		return nil, &protocol.TransportError{Method: method, Path: path, Err: next.err}
	}
	return json.RawMessage(next.body), nil
}

// LastCall returns the most recent call, or the zero value if none were made
func (m *MockTransport) LastCall() RecordedCall {
	if len(m.Calls) == 0 {
		return RecordedCall{}
	}
	return m.Calls[len(m.Calls)-1]
}
