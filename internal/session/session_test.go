package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/matchclient/internal/dependencies/mocks"
	"github.com/mcoot/matchclient/internal/model"
	"github.com/mcoot/matchclient/internal/protocol"
	"github.com/mcoot/matchclient/internal/testutil"
	"github.com/mcoot/matchclient/internal/transport"
)

const aliceRegistration = `{"success":{"player":{"nickname":"alice","id":7,"player_id":42}}}`

type SessionSuite struct {
	suite.Suite
	transport *mocks.MockTransport
	client    *Client
	ctx       context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.transport = mocks.NewMockTransport()
	s.client = New(s.transport, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SessionSuite) register() *Session {
	s.transport.Respond(http.MethodPost, "/register", aliceRegistration)
	sess, err := s.client.Register(s.ctx, "alice")
	s.Require().NoError(err)
	return sess
}

// Register tests

func (s *SessionSuite) TestRegisterBindsIdentityAndGoesIdle() {
	sess := s.register()

	s.Equal(model.Idle, sess.StoredState())

	nickname, err := sess.Nickname()
	s.Require().NoError(err)
	s.Equal("alice", nickname)

	id, err := sess.Identity()
	s.Require().NoError(err)
	s.Equal(model.Identity{Nickname: "alice", ServerID: 7, PlayerID: 42}, id)
}

func (s *SessionSuite) TestRegisterSendsNameQuery() {
	s.register()

	call := s.transport.LastCall()
	s.Equal(http.MethodPost, call.Method)
	s.Equal("/register", call.Path)
	s.Equal([]transport.Param{{Key: "name", Value: "alice"}}, call.Query)
	s.Empty(call.Body)
}

func (s *SessionSuite) TestRegisterRemoteError() {
	s.transport.Respond(http.MethodPost, "/register",
		`{"error":{"id":2,"description":"nickname taken","info":"alice"}}`)

	sess, err := s.client.Register(s.ctx, "alice")
	s.Nil(sess)

	var remote *protocol.RemoteError
	s.Require().True(errors.As(err, &remote))
	s.Equal(2, remote.ID)
	s.Equal("nickname taken", remote.Description)
	s.Equal("alice", remote.Info)
	s.Equal(model.Registration, s.client.StoredState())
}

func (s *SessionSuite) TestRegisterMalformedPayload() {
	s.transport.Respond(http.MethodPost, "/register", `{"success":{"player":{"nickname":"alice","id":7}}}`)

	sess, err := s.client.Register(s.ctx, "alice")
	s.Nil(sess)
	s.ErrorIs(err, protocol.ErrMalformedPayload)
}

func (s *SessionSuite) TestRegisterTransportError() {
	s.transport.Fail(http.MethodPost, "/register", errors.New("connection refused"))

	_, err := s.client.Register(s.ctx, "alice")
	s.ErrorIs(err, protocol.ErrTransport)
}

// Unregistered tests

func (s *SessionSuite) TestZeroSessionRejectsScopedOperationsWithoutCalling() {
	var sess Session

	_, err := sess.FetchState(s.ctx)
	s.ErrorIs(err, model.ErrNotRegistered)
	s.ErrorIs(sess.Search(s.ctx), model.ErrNotRegistered)
	s.ErrorIs(sess.Idle(s.ctx), model.ErrNotRegistered)
	_, err = sess.SendRequest(s.ctx, 9)
	s.ErrorIs(err, model.ErrNotRegistered)
	_, err = sess.Requests(s.ctx)
	s.ErrorIs(err, model.ErrNotRegistered)
	s.ErrorIs(sess.SendMessage(s.ctx, "hi"), model.ErrNotRegistered)
	_, err = sess.Messages(s.ctx)
	s.ErrorIs(err, model.ErrNotRegistered)
	s.ErrorIs(sess.EndGame(s.ctx), model.ErrNotRegistered)
	_, err = sess.Nickname()
	s.ErrorIs(err, model.ErrNotRegistered)
	_, err = sess.Identity()
	s.ErrorIs(err, model.ErrNotRegistered)
	s.Equal(model.Registration, sess.StoredState())

	var nilSession *Session
	s.ErrorIs(nilSession.Search(s.ctx), model.ErrNotRegistered)
	_, err = nilSession.Players(s.ctx)
	s.ErrorIs(err, model.ErrNotRegistered)

	s.Empty(s.transport.Calls)
}

func (s *SessionSuite) TestScopedPathRequiresIdentity() {
	_, err := scopedPath(nil, cmdState)
	s.ErrorIs(err, model.ErrNotRegistered)

	path, err := scopedPath(&model.Identity{ServerID: 7, PlayerID: 42}, cmdState)
	s.Require().NoError(err)
	s.Equal("/7/state", path)
}

// State tests

func (s *SessionSuite) TestFetchStateMapsCode() {
	sess := s.register()
	s.transport.Respond(http.MethodGet, "/7/state", `{"success":{"state":2}}`)

	state, err := sess.FetchState(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Searching, state)
	s.Equal(model.Searching, sess.StoredState())
}

func (s *SessionSuite) TestFetchStateUnknownCodeDisconnectsWithoutError() {
	sess := s.register()
	s.transport.Respond(http.MethodGet, "/7/state", `{"success":{"state":99}}`)

	state, err := sess.FetchState(s.ctx)
	s.Require().NoError(err)
	s.True(state.IsDisconnected())
	s.NotEmpty(state.Reason)
	s.True(sess.StoredState().IsDisconnected())
}

func (s *SessionSuite) TestFetchStateRecoversFromDisconnected() {
	sess := s.register()
	s.transport.Respond(http.MethodGet, "/7/state", `{"success":{"state":99}}`)
	s.transport.Respond(http.MethodGet, "/7/state", `{"success":{"state":3}}`)

	_, err := sess.FetchState(s.ctx)
	s.Require().NoError(err)
	state, err := sess.FetchState(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Playing, state)
}

func (s *SessionSuite) TestFetchStateFailureKeepsState() {
	sess := s.register()
	s.transport.Respond(http.MethodGet, "/7/state", `{"success":{"state":"searching"}}`)

	state, err := sess.FetchState(s.ctx)
	s.ErrorIs(err, protocol.ErrMalformedPayload)
	s.Equal(model.Idle, state)
	s.Equal(model.Idle, sess.StoredState())
}

func (s *SessionSuite) TestRoutesUseServerIDNotPlayerID() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/search", `{"success":{}}`)

	s.Require().NoError(sess.Search(s.ctx))
	s.Equal("/7/search", s.transport.LastCall().Path)
}

// Search and idle tests

func (s *SessionSuite) TestSearchThenIdle() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/search", `{"success":null}`)
	s.transport.Respond(http.MethodPost, "/7/idle", `{"success":"ok"}`)

	s.Require().NoError(sess.Search(s.ctx))
	s.Equal(model.Searching, sess.StoredState())

	s.Require().NoError(sess.Idle(s.ctx))
	s.Equal(model.Idle, sess.StoredState())
}

func (s *SessionSuite) TestIdleTwiceStaysIdle() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/idle", `{"success":{}}`)

	s.Require().NoError(sess.Idle(s.ctx))
	s.Equal(model.Idle, sess.StoredState())
	s.Require().NoError(sess.Idle(s.ctx))
	s.Equal(model.Idle, sess.StoredState())
}

func (s *SessionSuite) TestSearchRemoteErrorKeepsState() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/search",
		`{"error":{"id":5,"description":"already searching","info":""}}`)

	err := sess.Search(s.ctx)

	var remote *protocol.RemoteError
	s.Require().True(errors.As(err, &remote))
	s.Equal(5, remote.ID)
	s.Equal(model.Idle, sess.StoredState())
}

func (s *SessionSuite) TestIdleMalformedEnvelopeKeepsState() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/search", `{"success":{}}`)
	s.transport.Respond(http.MethodPost, "/7/idle", `{"status":"ok"}`)

	s.Require().NoError(sess.Search(s.ctx))
	err := sess.Idle(s.ctx)
	s.ErrorIs(err, protocol.ErrMalformedEnvelope)
	s.Equal(model.Searching, sess.StoredState())
}

// Request tests

func (s *SessionSuite) TestSendRequestAcceptedStartsPlaying() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/requests", `{"success":{"in_game":true}}`)

	inGame, err := sess.SendRequest(s.ctx, 9)
	s.Require().NoError(err)
	s.True(inGame)
	s.Equal(model.Playing, sess.StoredState())
	s.Equal([]transport.Param{{Key: "send_to", Value: "9"}}, s.transport.LastCall().Query)
}

func (s *SessionSuite) TestSendRequestPendingKeepsState() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/search", `{"success":{}}`)
	s.transport.Respond(http.MethodPost, "/7/requests", `{"success":{"in_game":false}}`)

	s.Require().NoError(sess.Search(s.ctx))
	inGame, err := sess.SendRequest(s.ctx, 9)
	s.Require().NoError(err)
	s.False(inGame)
	s.Equal(model.Searching, sess.StoredState())
}

func (s *SessionSuite) TestSendRequestMissingFlagKeepsState() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/requests", `{"success":{}}`)

	_, err := sess.SendRequest(s.ctx, 9)
	s.ErrorIs(err, protocol.ErrMalformedPayload)
	s.Equal(model.Idle, sess.StoredState())
}

func (s *SessionSuite) TestRequestsDecodesPlayers() {
	sess := s.register()
	s.transport.Respond(http.MethodGet, "/7/requests", `{"success":{"requests":["3:bob","17:carol:extra"]}}`)

	players, err := sess.Requests(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.Player{{ID: 3, Nickname: "bob"}, {ID: 17, Nickname: "carol:extra"}}, players)
}

func (s *SessionSuite) TestRequestsMalformedEntry() {
	sess := s.register()
	s.transport.Respond(http.MethodGet, "/7/requests", `{"success":{"requests":["bob"]}}`)

	_, err := sess.Requests(s.ctx)
	s.ErrorIs(err, protocol.ErrMalformedPlayerEntry)
}

// Message tests

func (s *SessionSuite) TestSendMessageUsesRawBody() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/messages", `{"success":{}}`)
	s.transport.Respond(http.MethodPost, "/7/requests", `{"success":{"in_game":true}}`)

	_, err := sess.SendRequest(s.ctx, 9)
	s.Require().NoError(err)
	s.Require().NoError(sess.SendMessage(s.ctx, "rock"))

	call := s.transport.LastCall()
	s.Equal("/7/messages", call.Path)
	s.Equal("rock", call.Body)
	s.Empty(call.Query)
	s.Equal(model.Playing, sess.StoredState())
}

func (s *SessionSuite) TestMessages() {
	sess := s.register()
	s.transport.Respond(http.MethodGet, "/7/messages", `{"success":{"messages":["paper","gg"]}}`)

	msgs, err := sess.Messages(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"paper", "gg"}, msgs)
}

// End game tests

func (s *SessionSuite) TestEndGameLeavesStateUnchanged() {
	sess := s.register()
	s.transport.Respond(http.MethodPost, "/7/requests", `{"success":{"in_game":true}}`)
	s.transport.Respond(http.MethodPost, "/7/end_game", `{"success":{}}`)

	_, err := sess.SendRequest(s.ctx, 9)
	s.Require().NoError(err)
	s.Require().NoError(sess.EndGame(s.ctx))
	s.Equal(model.Playing, sess.StoredState())
	s.Equal("/7/end_game", s.transport.LastCall().Path)
}

// Unscoped tests

func (s *SessionSuite) TestPlayersWorksBeforeAndAfterRegistration() {
	s.transport.Respond(http.MethodGet, "/players", `{"success":{"players":["7:alice","3:bob"]}}`)

	players, err := s.client.Players(s.ctx)
	s.Require().NoError(err)
	s.Len(players, 2)

	sess := s.register()
	players, err = sess.Players(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Player{ID: 7, Nickname: "alice"}, players[0])
}

func (s *SessionSuite) TestErrorDescription() {
	s.transport.Respond(http.MethodGet, "/error_description", `{"success":{"description":"unknown player"}}`)

	desc, err := s.client.ErrorDescription(s.ctx, 4)
	s.Require().NoError(err)
	s.Equal("unknown player", desc)
	s.Equal([]transport.Param{{Key: "id", Value: "4"}}, s.transport.LastCall().Query)
}

func (s *SessionSuite) TestErrorDescriptionMalformed() {
	s.transport.Respond(http.MethodGet, "/error_description", `{"success":{}}`)

	_, err := s.client.ErrorDescription(s.ctx, 4)
	s.ErrorIs(err, protocol.ErrMalformedPayload)
}

// Constructor tests

func (s *SessionSuite) TestNilLoggerIsAllowed() {
	s.transport.Respond(http.MethodPost, "/register", aliceRegistration)
	s.transport.Respond(http.MethodGet, "/7/state", `{"success":{"state":99}}`)
	client := New(s.transport, nil)

	var sess *Session
	s.Require().NotPanics(func() {
		var err error
		sess, err = client.Register(s.ctx, "alice")
		s.Require().NoError(err)

		_, err = sess.FetchState(s.ctx)
		s.Require().NoError(err)
	})
	s.True(sess.StoredState().IsDisconnected())
}
