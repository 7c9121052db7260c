package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelopeReturnsSuccessPayloadUnchanged(t *testing.T) {
	payloads := []string{
		`{"state":2}`,
		`[1,2,3]`,
		`"ok"`,
		`null`,
		`{"nested":{"deep":[true,false]}}`,
	}

	for _, p := range payloads {
		got, err := ParseEnvelope(json.RawMessage(`{"success":` + p + `}`))
		require.NoError(t, err, p)
		assert.JSONEq(t, p, string(got))
	}
}

func TestParseEnvelopeSuccessWinsOverError(t *testing.T) {
	got, err := ParseEnvelope(json.RawMessage(`{"error":{"id":1,"description":"d","info":"i"},"success":{}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(got))
}

func TestParseEnvelopeRemoteError(t *testing.T) {
	_, err := ParseEnvelope(json.RawMessage(`{"error":{"id":4,"description":"not found","info":"player 9"}}`))
	require.Error(t, err)

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, &RemoteError{ID: 4, Description: "not found", Info: "player 9"}, remote)
	assert.Equal(t, "server error 4: not found (player 9)", remote.Error())
}

func TestParseEnvelopeMalformedErrorEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing id", `{"error":{"description":"d","info":"i"}}`, "id"},
		{"string id", `{"error":{"id":"4","description":"d","info":"i"}}`, ""},
		{"fractional id", `{"error":{"id":1.5,"description":"d","info":"i"}}`, ""},
		{"missing description", `{"error":{"id":4,"info":"i"}}`, "description"},
		{"numeric info", `{"error":{"id":4,"description":"d","info":7}}`, ""},
		{"missing info", `{"error":{"id":4,"description":"d"}}`, "info"},
		{"null error", `{"error":null}`, "id"},
		{"error is a string", `{"error":"boom"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvelope(json.RawMessage(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedErrorEnvelope)

			var remote *RemoteError
			assert.False(t, errors.As(err, &remote))

			var perr *ProtocolError
			require.True(t, errors.As(err, &perr))
			if tt.field != "" {
				assert.Equal(t, tt.field, perr.Field)
			}
		})
	}
}

func TestParseEnvelopeMalformedEnvelope(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"result":{}}`,
		`[]`,
		`"success"`,
		`42`,
		`null`,
		`true`,
	}

	for _, b := range bodies {
		assert.NotPanics(t, func() {
			_, err := ParseEnvelope(json.RawMessage(b))
			assert.ErrorIs(t, err, ErrMalformedEnvelope, b)
		})
	}
}

func TestTransportErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&TransportError{Method: "GET", Path: "/players", Err: cause})

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "GET /players: connection refused", err.Error())

	withStatus := &TransportError{Method: "POST", Path: "/register", Status: 502, Err: errors.New("body is not JSON")}
	assert.Equal(t, "POST /register: HTTP 502: body is not JSON", withStatus.Error())
}
