package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Error ids reported by FakeServer
const (
	FakeErrUnknownPlayer = 1
	FakeErrNicknameTaken = 2
	FakeErrBadRequest    = 3
	FakeErrWrongState    = 4
	FakeErrNotInGame     = 5
	FakeErrInternal      = 500
)

var fakeErrorDescriptions = map[int]string{
	FakeErrUnknownPlayer: "unknown player",
	FakeErrNicknameTaken: "nickname already taken",
	FakeErrBadRequest:    "bad request",
	FakeErrWrongState:    "operation not allowed in current state",
	FakeErrNotInGame:     "player is not in a game",
	FakeErrInternal:      "internal server error",
}

// State codes as the real server reports them
const (
	fakeStateIdle      uint64 = 1
	fakeStateSearching uint64 = 2
	fakeStatePlaying   uint64 = 3
)

type fakePlayer struct {
	id       uint64
	playerID uint64
	nickname string
	state    uint64
	opponent uint64
	requests []uint64
	inbox    []string
}

func (p *fakePlayer) entry() string {
	return fmt.Sprintf("%d:%s", p.id, p.nickname)
}

// FakeServer is an in-memory matchmaking server speaking the envelope
// protocol, for integration tests
type FakeServer struct {
	mu sync.Mutex

	nextID  uint64
	players map[uint64]*fakePlayer
	order   []uint64

	router *mux.Router
}

// NewFakeServer creates an empty FakeServer
func NewFakeServer() *FakeServer {
	s := &FakeServer{
		nextID:  1,
		players: make(map[uint64]*fakePlayer),
	}

	r := mux.NewRouter()
	r.HandleFunc("/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/players", s.listPlayers).Methods(http.MethodGet)
	r.HandleFunc("/error_description", s.errorDescription).Methods(http.MethodGet)

	scoped := r.PathPrefix("/{sid:[0-9]+}").Subrouter()
	scoped.HandleFunc("/state", s.withPlayer(s.state)).Methods(http.MethodGet)
	scoped.HandleFunc("/search", s.withPlayer(s.search)).Methods(http.MethodPost)
	scoped.HandleFunc("/idle", s.withPlayer(s.idle)).Methods(http.MethodPost)
	scoped.HandleFunc("/requests", s.withPlayer(s.sendRequest)).Methods(http.MethodPost)
	scoped.HandleFunc("/requests", s.withPlayer(s.listRequests)).Methods(http.MethodGet)
	scoped.HandleFunc("/messages", s.withPlayer(s.sendMessage)).Methods(http.MethodPost)
	scoped.HandleFunc("/messages", s.withPlayer(s.listMessages)).Methods(http.MethodGet)
	scoped.HandleFunc("/end_game", s.withPlayer(s.endGame)).Methods(http.MethodPost)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler, answering panics with an error envelope
func (s *FakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			writeError(w, http.StatusInternalServerError, FakeErrInternal, fmt.Sprint(rec))
		}
	}()
	s.router.ServeHTTP(w, r)
}

// ForceState overwrites the state code of a registered player
func (s *FakeServer) ForceState(serverID, code uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[serverID]; ok {
		p.state = code
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": payload})
}

func writeError(w http.ResponseWriter, status, id int, info string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"id":          id,
			"description": fakeErrorDescriptions[id],
			"info":        info,
		},
	})
}

type playerHandler func(w http.ResponseWriter, r *http.Request, p *fakePlayer)

func (s *FakeServer) withPlayer(next playerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := mux.Vars(r)["sid"]
		id, err := strconv.ParseUint(sid, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, FakeErrBadRequest, sid)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		p, ok := s.players[id]
		if !ok {
			writeError(w, http.StatusNotFound, FakeErrUnknownPlayer, sid)
			return
		}
		next(w, r, p)
	}
}

func (s *FakeServer) register(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, FakeErrBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if p.nickname == name {
			writeError(w, http.StatusConflict, FakeErrNicknameTaken, name)
			return
		}
	}

	p := &fakePlayer{
		id:       s.nextID,
		playerID: 100 + s.nextID,
		nickname: name,
		state:    fakeStateIdle,
	}
	s.nextID++
	s.players[p.id] = p
	s.order = append(s.order, p.id)

	writeSuccess(w, map[string]any{
		"player": map[string]any{
			"nickname":  p.nickname,
			"id":        p.id,
			"player_id": p.playerID,
		},
	})
}

func (s *FakeServer) listPlayers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]string, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.players[id].entry())
	}
	writeSuccess(w, map[string]any{"players": entries})
}

func (s *FakeServer) errorDescription(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, FakeErrBadRequest, "id must be an integer")
		return
	}

	desc, ok := fakeErrorDescriptions[id]
	if !ok {
		writeError(w, http.StatusNotFound, FakeErrBadRequest, "no error with id "+raw)
		return
	}
	writeSuccess(w, map[string]any{"description": desc})
}

func (s *FakeServer) state(w http.ResponseWriter, _ *http.Request, p *fakePlayer) {
	writeSuccess(w, map[string]any{"state": p.state})
}

func (s *FakeServer) search(w http.ResponseWriter, _ *http.Request, p *fakePlayer) {
	if p.state == fakeStatePlaying {
		writeError(w, http.StatusConflict, FakeErrWrongState, "finish the game first")
		return
	}
	p.state = fakeStateSearching
	writeSuccess(w, map[string]any{})
}

func (s *FakeServer) idle(w http.ResponseWriter, _ *http.Request, p *fakePlayer) {
	if p.state == fakeStatePlaying {
		s.finishGame(p)
	}
	p.state = fakeStateIdle
	writeSuccess(w, map[string]any{})
}

func (s *FakeServer) sendRequest(w http.ResponseWriter, r *http.Request, p *fakePlayer) {
	raw := r.URL.Query().Get("send_to")
	targetID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || targetID == p.id {
		writeError(w, http.StatusBadRequest, FakeErrBadRequest, "invalid send_to "+raw)
		return
	}

	target, ok := s.players[targetID]
	if !ok {
		writeError(w, http.StatusNotFound, FakeErrUnknownPlayer, raw)
		return
	}
	if p.state == fakeStatePlaying || target.state == fakeStatePlaying {
		writeError(w, http.StatusConflict, FakeErrWrongState, "already in a game")
		return
	}

	// A mutual request starts the game
	for i, from := range p.requests {
		if from == target.id {
			p.requests = append(p.requests[:i], p.requests[i+1:]...)
			p.state, target.state = fakeStatePlaying, fakeStatePlaying
			p.opponent, target.opponent = target.id, p.id
			writeSuccess(w, map[string]any{"in_game": true})
			return
		}
	}

	for _, from := range target.requests {
		if from == p.id {
			writeSuccess(w, map[string]any{"in_game": false})
			return
		}
	}
	target.requests = append(target.requests, p.id)
	writeSuccess(w, map[string]any{"in_game": false})
}

func (s *FakeServer) listRequests(w http.ResponseWriter, _ *http.Request, p *fakePlayer) {
	entries := make([]string, 0, len(p.requests))
	for _, from := range p.requests {
		if other, ok := s.players[from]; ok {
			entries = append(entries, other.entry())
		}
	}
	writeSuccess(w, map[string]any{"requests": entries})
}

func (s *FakeServer) sendMessage(w http.ResponseWriter, r *http.Request, p *fakePlayer) {
	if p.state != fakeStatePlaying {
		writeError(w, http.StatusConflict, FakeErrNotInGame, p.nickname)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, FakeErrBadRequest, err.Error())
		return
	}

	if opp, ok := s.players[p.opponent]; ok {
		opp.inbox = append(opp.inbox, strings.TrimSpace(string(body)))
	}
	writeSuccess(w, map[string]any{})
}

func (s *FakeServer) listMessages(w http.ResponseWriter, _ *http.Request, p *fakePlayer) {
	msgs := p.inbox
	if msgs == nil {
		msgs = []string{}
	}
	p.inbox = nil
	writeSuccess(w, map[string]any{"messages": msgs})
}

func (s *FakeServer) endGame(w http.ResponseWriter, _ *http.Request, p *fakePlayer) {
	if p.state != fakeStatePlaying {
		writeError(w, http.StatusConflict, FakeErrNotInGame, p.nickname)
		return
	}
	s.finishGame(p)
	writeSuccess(w, map[string]any{})
}

// finishGame returns both sides of p's game to idle. Callers hold s.mu.
func (s *FakeServer) finishGame(p *fakePlayer) {
	if opp, ok := s.players[p.opponent]; ok {
		opp.state = fakeStateIdle
		opp.opponent = 0
	}
	p.state = fakeStateIdle
	p.opponent = 0
}
