package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mcoot/matchclient/internal/model"
	"github.com/mcoot/matchclient/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// PlayerView is the JSON shape of a player
type PlayerView struct {
	ID       uint64 `json:"id"`
	Nickname string `json:"nickname"`
}

// IdentityView is the JSON shape of the registration identity
type IdentityView struct {
	Nickname string `json:"nickname"`
	ServerID uint64 `json:"server_id"`
	PlayerID uint64 `json:"player_id"`
}

// StateView is the JSON shape of a session state
type StateView struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// RequestResult reports the outcome of a match request
type RequestResult struct {
	Target uint64 `json:"target"`
	InGame bool   `json:"in_game"`
}

// ErrorDescription pairs a remote error id with its text
type ErrorDescription struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Messages is a batch of in-game messages
type Messages []string

func playerViews(players []model.Player) []PlayerView {
	views := make([]PlayerView, len(players))
	for i, p := range players {
		views[i] = PlayerView{ID: uint64(p.ID), Nickname: p.Nickname}
	}
	return views
}

func identityView(id model.Identity) IdentityView {
	return IdentityView{Nickname: id.Nickname, ServerID: uint64(id.ServerID), PlayerID: id.PlayerID}
}

func stateView(s model.State) StateView {
	return StateView{State: s.Kind.String(), Reason: s.Reason}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error, keeping the fields of a server error
func (o *Output) PrintError(err error) {
	var remote *protocol.RemoteError
	isRemote := errors.As(err, &remote)

	if o.format == "json" {
		body := map[string]any{"message": err.Error()}
		if isRemote {
			body["id"] = remote.ID
			body["description"] = remote.Description
			body["info"] = remote.Info
		}
		data, _ := json.Marshal(map[string]any{"error": body})
		_, _ = fmt.Fprintln(o.errOut, string(data))
		return
	}

	_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []PlayerView:
		o.printPlayers(v)
	case IdentityView:
		_, _ = fmt.Fprintf(o.out, "Registered as %s (server id %d, player id %d)\n", v.Nickname, v.ServerID, v.PlayerID)
	case StateView:
		if v.Reason != "" {
			_, _ = fmt.Fprintf(o.out, "State: %s (%s)\n", v.State, v.Reason)
		} else {
			_, _ = fmt.Fprintf(o.out, "State: %s\n", v.State)
		}
	case RequestResult:
		if v.InGame {
			_, _ = fmt.Fprintf(o.out, "Match with %d started\n", v.Target)
		} else {
			_, _ = fmt.Fprintf(o.out, "Request sent to %d\n", v.Target)
		}
	case ErrorDescription:
		_, _ = fmt.Fprintf(o.out, "Error %d: %s\n", v.ID, v.Description)
	case Messages:
		if len(v) == 0 {
			_, _ = fmt.Fprintln(o.out, "No messages")
		}
		for _, m := range v {
			_, _ = fmt.Fprintf(o.out, "> %s\n", m)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayers(players []PlayerView) {
	if len(players) == 0 {
		_, _ = fmt.Fprintln(o.out, "No players")
		return
	}
	_, _ = fmt.Fprintf(o.out, "Players (%d):\n", len(players))
	for _, p := range players {
		_, _ = fmt.Fprintf(o.out, "  - %s (%d)\n", p.Nickname, p.ID)
	}
}
