package session

import (
	"fmt"

	"github.com/mcoot/matchclient/internal/model"
)

// Server commands
const (
	cmdRegister         = "register"
	cmdPlayers          = "players"
	cmdErrorDescription = "error_description"
	cmdState            = "state"
	cmdSearch           = "search"
	cmdIdle             = "idle"
	cmdRequests         = "requests"
	cmdMessages         = "messages"
	cmdEndGame          = "end_game"
)

// unscopedPath addresses a command directly under the base URL
func unscopedPath(command string) string {
	return "/" + command
}

// scopedPath prefixes the command with the session's server id.
// It never uses the player id.
func scopedPath(id *model.Identity, command string) (string, error) {
	if id == nil {
		return "", model.ErrNotRegistered
	}
	return fmt.Sprintf("/%d/%s", id.ServerID, command), nil
}
