package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcoot/matchclient/internal/model"
	"github.com/mcoot/matchclient/internal/protocol"
	"github.com/mcoot/matchclient/internal/transport"
)

// Session is a registered player. Only Client.Register produces a usable
// Session; the zero value answers every scoped call with ErrNotRegistered.
type Session struct {
	client   *Client
	identity *model.Identity
	state    model.State
}

// apply runs the state machine. Callers invoke it only after a fully
// successful round trip.
func (s *Session) apply(ev model.Event) model.State {
	prev := s.state
	s.state = model.Transition(prev, ev)

	if s.state != prev {
		s.client.logger.Debug("session state changed",
			slog.String("event", ev.String()),
			slog.String("from", prev.String()),
			slog.String("to", s.state.String()),
		)
	}
	if s.state.IsDisconnected() {
		s.client.logger.Warn("server reported an unknown state",
			slog.String("reason", s.state.Reason),
		)
	}
	return s.state
}

// scopedCall builds the session route and performs the round trip.
// The registration check happens before the transport is touched.
func (s *Session) scopedCall(ctx context.Context, method, command string, query []transport.Param, body string) (json.RawMessage, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("%s: %w", command, model.ErrNotRegistered)
	}

	path, err := scopedPath(s.identity, command)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}

	payload, err := s.client.call(ctx, method, path, query, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}
	return payload, nil
}

// Identity returns a copy of the registration identity
func (s *Session) Identity() (model.Identity, error) {
	if s == nil || s.identity == nil {
		return model.Identity{}, model.ErrNotRegistered
	}
	return *s.identity, nil
}

// Nickname returns the nickname the server confirmed at registration
func (s *Session) Nickname() (string, error) {
	id, err := s.Identity()
	if err != nil {
		return "", err
	}
	return id.Nickname, nil
}

// StoredState returns the locally tracked state without asking the server
func (s *Session) StoredState() model.State {
	if s == nil || s.identity == nil {
		return model.Registration
	}
	return s.state
}

// FetchState asks the server for the authoritative state and overwrites the
// local one. An unknown code yields a Disconnected state, not an error.
func (s *Session) FetchState(ctx context.Context) (model.State, error) {
	payload, err := s.scopedCall(ctx, http.MethodGet, cmdState, nil, "")
	if err != nil {
		return s.StoredState(), err
	}

	code, err := protocol.DecodeState(payload)
	if err != nil {
		return s.StoredState(), fmt.Errorf("%s: %w", cmdState, err)
	}

	return s.apply(model.StateReported(code)), nil
}

// Search puts the player in the matchmaking pool
func (s *Session) Search(ctx context.Context) error {
	if _, err := s.scopedCall(ctx, http.MethodPost, cmdSearch, nil, ""); err != nil {
		return err
	}
	s.apply(model.SearchStarted())
	return nil
}

// Idle takes the player out of the pool or a finished game
func (s *Session) Idle(ctx context.Context) error {
	if _, err := s.scopedCall(ctx, http.MethodPost, cmdIdle, nil, ""); err != nil {
		return err
	}
	s.apply(model.Idled())
	return nil
}

// SendRequest asks target for a match. It reports whether a game started,
// in which case the session is now Playing.
func (s *Session) SendRequest(ctx context.Context, target model.PlayerID) (bool, error) {
	payload, err := s.scopedCall(ctx, http.MethodPost, cmdRequests,
		[]transport.Param{{Key: "send_to", Value: strconv.FormatUint(uint64(target), 10)}}, "")
	if err != nil {
		return false, err
	}

	inGame, err := protocol.DecodeInGame(payload)
	if err != nil {
		return false, fmt.Errorf("%s: %w", cmdRequests, err)
	}

	s.apply(model.RequestSent(inGame))
	return inGame, nil
}

// Requests lists the players who have asked this player for a match
func (s *Session) Requests(ctx context.Context) ([]model.Player, error) {
	payload, err := s.scopedCall(ctx, http.MethodGet, cmdRequests, nil, "")
	if err != nil {
		return nil, err
	}

	players, err := protocol.DecodeRequests(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmdRequests, err)
	}
	return players, nil
}

// SendMessage posts text as the raw request body
func (s *Session) SendMessage(ctx context.Context, text string) error {
	_, err := s.scopedCall(ctx, http.MethodPost, cmdMessages, nil, text)
	return err
}

// Messages fetches the in-game messages addressed to this player
func (s *Session) Messages(ctx context.Context) ([]string, error) {
	payload, err := s.scopedCall(ctx, http.MethodGet, cmdMessages, nil, "")
	if err != nil {
		return nil, err
	}

	msgs, err := protocol.DecodeMessages(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmdMessages, err)
	}
	return msgs, nil
}

// EndGame tells the server the current game is over.
// The local state is left alone; call FetchState to learn where the server put us.
func (s *Session) EndGame(ctx context.Context) error {
	_, err := s.scopedCall(ctx, http.MethodPost, cmdEndGame, nil, "")
	return err
}

// Players lists every player the server knows about
func (s *Session) Players(ctx context.Context) ([]model.Player, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("%s: %w", cmdPlayers, model.ErrNotRegistered)
	}
	return s.client.Players(ctx)
}

// ErrorDescription asks the server for the text behind a remote error id
func (s *Session) ErrorDescription(ctx context.Context, errorID int) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("%s: %w", cmdErrorDescription, model.ErrNotRegistered)
	}
	return s.client.ErrorDescription(ctx, errorID)
}
