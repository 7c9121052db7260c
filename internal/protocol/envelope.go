package protocol

import (
	"encoding/json"
)

type errorBody struct {
	ID          *int    `json:"id"`
	Description *string `json:"description"`
	Info        *string `json:"info"`
}

// ParseEnvelope unwraps {"success": ...} or {"error": {...}}.
// The success payload is returned untouched; an error envelope becomes a
// *RemoteError. When both keys are present success wins.
func ParseEnvelope(raw json.RawMessage) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, newProtocolError(ErrMalformedEnvelope, "", "response is not a JSON object")
	}
	if obj == nil {
		return nil, newProtocolError(ErrMalformedEnvelope, "", "response is null")
	}

	if payload, ok := obj["success"]; ok {
		return payload, nil
	}

	errRaw, ok := obj["error"]
	if !ok {
		return nil, newProtocolError(ErrMalformedEnvelope, "", "neither success nor error present")
	}

	return nil, decodeRemoteError(errRaw)
}

func decodeRemoteError(raw json.RawMessage) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return newProtocolError(ErrMalformedErrorEnvelope, "", err.Error())
	}

	switch {
	case body.ID == nil:
		return newProtocolError(ErrMalformedErrorEnvelope, "id", "missing")
	case body.Description == nil:
		return newProtocolError(ErrMalformedErrorEnvelope, "description", "missing")
	case body.Info == nil:
		return newProtocolError(ErrMalformedErrorEnvelope, "info", "missing")
	}

	return &RemoteError{
		ID:          *body.ID,
		Description: *body.Description,
		Info:        *body.Info,
	}
}
