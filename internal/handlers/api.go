// internal/handlers/api.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/auth"
	"github.com/jason-s-yu/rams/internal/cards"
	"github.com/jason-s-yu/rams/internal/game"
	"github.com/jason-s-yu/rams/internal/rules"
)

// API serves the REST routes and the websocket feed for games.
type API struct {
	svc      *game.Service
	tokens   *auth.SeatTokens
	hub      *Hub
	defaults game.HouseRules
	log      logrus.FieldLogger
}

// NewAPI wires the handlers. tokens may be nil, which turns seat checks off.
func NewAPI(svc *game.Service, tokens *auth.SeatTokens, hub *Hub, defaults game.HouseRules, logger logrus.FieldLogger) *API {
	return &API{svc: svc, tokens: tokens, hub: hub, defaults: defaults, log: logger}
}

// Routes registers every endpoint on a fresh mux.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", a.handleCreate)
	mux.HandleFunc("GET /games/{id}", a.handleGet)
	mux.HandleFunc("POST /games/{id}/exchange", a.handleExchange)
	mux.HandleFunc("POST /games/{id}/participation", a.handleParticipation)
	mux.HandleFunc("POST /games/{id}/move", a.handleMove)
	mux.HandleFunc("POST /games/{id}/declare-jacks", a.handleDeclareJacks)
	mux.HandleFunc("POST /games/{id}/ai-play", a.handleAIPlay)
	if a.hub != nil {
		mux.HandleFunc("GET /games/{id}/ws", a.hub.Handler(a.svc))
	}
	return mux
}

type createRequest struct {
	Seed  *int64                 `json:"seed"`
	Rules map[string]interface{} `json:"rules"`
}

type createResponse struct {
	game.View

	// SeatTokens holds one token per human seat, keyed by seat index.
	SeatTokens map[int]string `json:"seat_tokens,omitempty"`
}

type actionResponse struct {
	Success bool      `json:"success"`
	State   game.View `json:"state"`
}

type exchangeRequest struct {
	PlayerIndex    *int     `json:"player_index"`
	DiscardCardIDs []string `json:"discard_card_ids"`
}

type participationRequest struct {
	PlayerIndex *int  `json:"player_index"`
	Play        *bool `json:"play"`
}

type moveRequest struct {
	PlayerIndex *int   `json:"player_index"`
	CardID      string `json:"card_id"`
}

type seatRequest struct {
	PlayerIndex *int `json:"player_index"`
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	// an empty body creates a game with the defaults
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, a.log, rules.Invalid("invalid request body: %v", err))
		return
	}
	hr, err := game.ParseRules(req.Rules, a.defaults)
	if err != nil {
		writeError(w, a.log, rules.Invalid("%v", err))
		return
	}

	view, err := a.svc.Create(r.Context(), hr, req.Seed)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	resp := createResponse{View: view}
	if a.tokens != nil {
		for _, p := range view.Players {
			if p.Type != game.PlayerHuman {
				continue
			}
			tok, err := a.tokens.CreateSeatToken(view.Game.ID, p.Seat)
			if err != nil {
				writeError(w, a.log, fmt.Errorf("issue seat token: %w", err))
				return
			}
			if resp.SeatTokens == nil {
				resp.SeatTokens = make(map[int]string)
			}
			resp.SeatTokens[p.Seat] = tok
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	view, err := a.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if !a.decode(w, r, &req) {
		return
	}
	discards, err := cards.ParseIDs(req.DiscardCardIDs)
	if err != nil {
		writeError(w, a.log, rules.Invalid("%v", err))
		return
	}
	a.applySeatAction(w, r, req.PlayerIndex, func(seat int) game.Action {
		return game.Exchange{Seat: seat, Discards: discards}
	})
}

func (a *API) handleParticipation(w http.ResponseWriter, r *http.Request) {
	var req participationRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Play == nil {
		writeError(w, a.log, rules.Invalid("play is required"))
		return
	}
	play := *req.Play
	a.applySeatAction(w, r, req.PlayerIndex, func(seat int) game.Action {
		return game.Participate{Seat: seat, Play: play}
	})
}

func (a *API) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.CardID == "" {
		writeError(w, a.log, rules.Invalid("card_id must be a non-empty string"))
		return
	}
	card, err := cards.ParseID(req.CardID)
	if err != nil {
		writeError(w, a.log, rules.Invalid("%v", err))
		return
	}
	a.applySeatAction(w, r, req.PlayerIndex, func(seat int) game.Action {
		return game.PlayCard{Seat: seat, Card: card}
	})
}

func (a *API) handleDeclareJacks(w http.ResponseWriter, r *http.Request) {
	var req seatRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.applySeatAction(w, r, req.PlayerIndex, func(seat int) game.Action {
		return game.DeclareJacks{Seat: seat}
	})
}

func (a *API) handleAIPlay(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	view, err := a.svc.AIMove(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, State: view})
}

// applySeatAction checks the seat's token when the seat is human, then runs the action.
func (a *API) applySeatAction(w http.ResponseWriter, r *http.Request, playerIndex *int, build func(seat int) game.Action) {
	id, err := gameID(r)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if playerIndex == nil {
		writeError(w, a.log, rules.Invalid("player_index is required"))
		return
	}
	seat := *playerIndex
	if seat < 0 || seat >= game.SeatCount {
		writeError(w, a.log, rules.Invalid("player_index must be an integer 0..%d", game.SeatCount-1))
		return
	}
	if err := a.authorize(r, id, seat); err != nil {
		writeError(w, a.log, err)
		return
	}

	view, err := a.svc.Apply(r.Context(), id, build(seat))
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true, State: view})
}

func (a *API) authorize(r *http.Request, id uuid.UUID, seat int) error {
	if a.tokens == nil {
		return nil
	}
	view, err := a.svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	if view.Players[seat].Type != game.PlayerHuman {
		return nil
	}
	token := bearerToken(r)
	if token == "" {
		return errUnauthorized
	}
	if _, _, err := a.tokens.AuthenticateSeatToken(token); err != nil {
		return fmt.Errorf("%w: %v", errUnauthorized, err)
	}
	return a.tokens.Authorize(token, id, seat)
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, a.log, rules.Invalid("invalid request body: %v", err))
		return false
	}
	return true
}

func gameID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, rules.Invalid("invalid game id %q", r.PathValue("id"))
	}
	return id, nil
}

// bearerToken reads "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
