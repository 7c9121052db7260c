// Package session tracks one player's registration, lifecycle state and
// identity against the matchmaking server.
//
// A Client is unregistered and can only register or make unscoped calls.
// A successful Register returns a Session, which owns the identity and
// exposes every session-scoped operation. Neither type is safe for
// concurrent use.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcoot/matchclient/internal/model"
	"github.com/mcoot/matchclient/internal/protocol"
	"github.com/mcoot/matchclient/internal/transport"
)

// Client is a session that has not registered yet
type Client struct {
	transport transport.Transport
	logger    *slog.Logger
}

// New creates an unregistered client over an existing transport.
// A nil logger discards output.
func New(t transport.Transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = discardLogger()
	}
	return &Client{
		transport: t,
		logger:    logger,
	}
}

// NewFromURL creates an unregistered client talking HTTP to baseURL
// with the default transport settings
func NewFromURL(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = discardLogger()
	}
	cfg := transport.DefaultConfig()
	cfg.BaseURL = baseURL
	return New(transport.NewHTTP(cfg, logger), logger)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// StoredState is always Registration for an unregistered client
func (c *Client) StoredState() model.State {
	return model.Registration
}

// call performs one round trip and unwraps the envelope
func (c *Client) call(ctx context.Context, method, path string, query []transport.Param, body string) (json.RawMessage, error) {
	raw, err := c.transport.Call(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	return protocol.ParseEnvelope(raw)
}

// Register binds this player to the server under nickname.
// The returned Session starts Idle with the identity the server assigned.
func (c *Client) Register(ctx context.Context, nickname string) (*Session, error) {
	payload, err := c.call(ctx, http.MethodPost, unscopedPath(cmdRegister),
		[]transport.Param{{Key: "name", Value: nickname}}, "")
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	identity, err := protocol.DecodeRegistration(payload)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s := &Session{
		client:   c,
		identity: &identity,
		state:    model.Registration,
	}
	s.apply(model.Registered())

	c.logger.Info("registered",
		slog.String("nickname", identity.Nickname),
		slog.Uint64("server_id", uint64(identity.ServerID)),
		slog.Uint64("player_id", identity.PlayerID),
	)
	return s, nil
}

// Players lists every player the server knows about
func (c *Client) Players(ctx context.Context) ([]model.Player, error) {
	payload, err := c.call(ctx, http.MethodGet, unscopedPath(cmdPlayers), nil, "")
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}

	players, err := protocol.DecodePlayers(payload)
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	return players, nil
}

// ErrorDescription asks the server for the text behind a remote error id
func (c *Client) ErrorDescription(ctx context.Context, errorID int) (string, error) {
	payload, err := c.call(ctx, http.MethodGet, unscopedPath(cmdErrorDescription),
		[]transport.Param{{Key: "id", Value: strconv.Itoa(errorID)}}, "")
	if err != nil {
		return "", fmt.Errorf("error description: %w", err)
	}

	desc, err := protocol.DecodeErrorDescription(payload)
	if err != nil {
		return "", fmt.Errorf("error description: %w", err)
	}
	return desc, nil
}
