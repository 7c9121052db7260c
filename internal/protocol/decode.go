package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcoot/matchclient/internal/model"
)

// field returns the raw value under key, failing if the payload is not an
// object or the key is absent or null
func field(payload json.RawMessage, key string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil || obj == nil {
		return nil, newProtocolError(ErrMalformedPayload, "", "payload is not a JSON object")
	}

	v, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, newProtocolError(ErrMalformedPayload, key, "missing")
	}
	return v, nil
}

func decodeField[T any](payload json.RawMessage, key string) (T, error) {
	var out T

	v, err := field(payload, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(v, &out); err != nil {
		return out, newProtocolError(ErrMalformedPayload, key, fmt.Sprintf("expected %T", out))
	}
	return out, nil
}

// decodeStrings reads a list of strings under key. A null or non-string
// element fails the whole list.
func decodeStrings(payload json.RawMessage, key string) ([]string, error) {
	elems, err := decodeField[[]json.RawMessage](payload, key)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(elems))
	for i, e := range elems {
		var str *string
		if err := json.Unmarshal(e, &str); err != nil {
			return nil, newProtocolError(ErrMalformedPayload, key, fmt.Sprintf("element %d is %s, expected string", i, jsonKind(e)))
		}
		if str == nil {
			return nil, newProtocolError(ErrMalformedPayload, key, fmt.Sprintf("element %d is null, expected string", i))
		}
		out = append(out, *str)
	}
	return out, nil
}

// jsonKind names the JSON type of v for error details
func jsonKind(v json.RawMessage) string {
	t := bytes.TrimSpace(v)
	if len(t) == 0 {
		return "empty"
	}
	switch t[0] {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	default:
		return "a number"
	}
}

// DecodeRegistration reads {"player": {"nickname", "id", "player_id"}}
func DecodeRegistration(payload json.RawMessage) (model.Identity, error) {
	player, err := field(payload, "player")
	if err != nil {
		return model.Identity{}, err
	}

	nickname, err := decodeField[string](player, "nickname")
	if err != nil {
		return model.Identity{}, err
	}
	serverID, err := decodeField[uint64](player, "id")
	if err != nil {
		return model.Identity{}, err
	}
	playerID, err := decodeField[uint64](player, "player_id")
	if err != nil {
		return model.Identity{}, err
	}

	return model.Identity{
		Nickname: nickname,
		ServerID: model.PlayerID(serverID),
		PlayerID: playerID,
	}, nil
}

// DecodeState reads {"state": <uint>}
func DecodeState(payload json.RawMessage) (uint64, error) {
	return decodeField[uint64](payload, "state")
}

// DecodeInGame reads {"in_game": <bool>}
func DecodeInGame(payload json.RawMessage) (bool, error) {
	return decodeField[bool](payload, "in_game")
}

// DecodeRequests reads {"requests": ["id:nickname", ...]}
func DecodeRequests(payload json.RawMessage) ([]model.Player, error) {
	entries, err := decodeStrings(payload, "requests")
	if err != nil {
		return nil, err
	}
	return ParsePlayerList(entries)
}

// DecodePlayers reads {"players": ["id:nickname", ...]}
func DecodePlayers(payload json.RawMessage) ([]model.Player, error) {
	entries, err := decodeStrings(payload, "players")
	if err != nil {
		return nil, err
	}
	return ParsePlayerList(entries)
}

// DecodeMessages reads {"messages": [string, ...]}
func DecodeMessages(payload json.RawMessage) ([]string, error) {
	return decodeStrings(payload, "messages")
}

// DecodeErrorDescription reads {"description": <string>}
func DecodeErrorDescription(payload json.RawMessage) (string, error) {
	return decodeField[string](payload, "description")
}

// ParsePlayerEntry splits "id:nickname" at the first colon.
// The nickname keeps any further colons.
func ParsePlayerEntry(entry string) (model.Player, error) {
	idPart, nickname, ok := strings.Cut(entry, ":")
	if !ok {
		return model.Player{}, newProtocolError(ErrMalformedPlayerEntry, "", fmt.Sprintf("no colon in %q", entry))
	}

	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return model.Player{}, newProtocolError(ErrMalformedPlayerEntry, "", fmt.Sprintf("bad id in %q", entry))
	}

	return model.NewPlayer(model.PlayerID(id), nickname), nil
}

// ParsePlayerList decodes every entry, failing on the first bad one
func ParsePlayerList(entries []string) ([]model.Player, error) {
	players := make([]model.Player, 0, len(entries))
	for _, e := range entries {
		p, err := ParsePlayerEntry(e)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}
