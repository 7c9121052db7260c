package model

import "fmt"

// PlayerID is the server-assigned numeric identifier of a player
type PlayerID uint64

// Player is any player known to the session: self, a peer, or a requester
type Player struct {
	ID       PlayerID
	Nickname string
}

// NewPlayer creates a Player
func NewPlayer(id PlayerID, nickname string) Player {
	return Player{ID: id, Nickname: nickname}
}

// String renders the player in the wire's "id:nickname" form
func (p Player) String() string {
	return fmt.Sprintf("%d:%s", p.ID, p.Nickname)
}

// Identity is what the server hands back on registration.
// ServerID scopes every per-session route; PlayerID is the match-scoped id
// and must never be used for routing.
type Identity struct {
	Nickname string
	ServerID PlayerID
	PlayerID uint64
}
