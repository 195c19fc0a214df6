// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/engine"
	"github.com/jason-s-yu/skyjo/internal/game"
	"github.com/sirupsen/logrus"
)

// pathActions maps POST /game/{id}/{action} onto socket action types.
var pathActions = map[string]string{
	"start":        ActionStart,
	"reset":        ActionReset,
	"reveal":       ActionReveal,
	"draw":         ActionDrawDeck,
	"take-discard": ActionTakeDiscard,
	"place":        ActionPlace,
	"discard-flip": ActionDiscardFlip,
	"undo":         ActionUndo,
}

// CreateGameRequest is the optional body of POST /game/create.
type CreateGameRequest struct {
	PlayerCount *int                   `json:"playerCount,omitempty"`
	Rules       map[string]interface{} `json:"rules,omitempty"`
}

// GameSummary is one entry of GET /game.
type GameSummary struct {
	GameID      uuid.UUID    `json:"game_id"`
	Phase       engine.Phase `json:"phase"`
	PlayerCount int          `json:"playerCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	Watchers    int          `json:"watchers"`
}

// Routes registers the game API on mux, wrapping every handler with mw.
func (gs *GameServer) Routes(mux *http.ServeMux, mw func(http.Handler) http.Handler) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, mw(h))
	}
	handle("GET /ping", PingHandler)
	handle("POST /game/create", gs.CreateGameHandler)
	handle("GET /game", gs.ListGamesHandler)
	handle("GET /game/{id}", gs.GetGameHandler)
	handle("DELETE /game/{id}", gs.DeleteGameHandler)
	handle("POST /game/{id}/{action}", gs.ActionHandler)
	handle("GET /game/ws/{id}", GameWSHandler(gs.Logger, gs))
}

// PingHandler reports liveness.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"type": "pong"})
}

// CreateGameHandler creates a game in the start phase. The body may override
// the server's default house rules.
func (gs *GameServer) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rules, err := game.ParseRules(req.Rules, gs.DefaultRules)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.PlayerCount != nil {
		rules.PlayerCount = *req.PlayerCount
		if err := rules.Validate(); err != nil {
			writeError(w, fmt.Errorf("%w: %v", engine.ErrInvalidPlayerCount, err))
			return
		}
	}

	g := gs.CreateGame(rules)
	writeJSON(w, http.StatusCreated, g.View())
}

// ListGamesHandler lists live games, oldest first.
func (gs *GameServer) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	games := gs.GameStore.ListGames()
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		view := g.View()
		out = append(out, GameSummary{
			GameID:      g.ID,
			Phase:       view.Phase,
			PlayerCount: view.Rules.PlayerCount,
			CreatedAt:   g.CreatedAt,
			Watchers:    gs.clientCount(g.ID),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetGameHandler returns the current view of one game.
func (gs *GameServer) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	g, err := gs.lookupGame(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

// DeleteGameHandler discards a game and closes its sockets.
func (gs *GameServer) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	g, err := gs.lookupGame(r)
	if err != nil {
		writeError(w, err)
		return
	}
	gs.RemoveGame(g.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ActionHandler applies one action. The body carries the action's arguments
// (seat, slot, playerCount); the action type comes from the path.
func (gs *GameServer) ActionHandler(w http.ResponseWriter, r *http.Request) {
	g, err := gs.lookupGame(r)
	if err != nil {
		writeError(w, err)
		return
	}
	actionType, ok := pathActions[r.PathValue("action")]
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown action %q", errNotFound, r.PathValue("action")))
		return
	}

	var msg GameMessage
	if err := decodeBody(r, &msg); err != nil {
		writeError(w, err)
		return
	}
	msg.Type = actionType

	view, err := applyAction(g, msg)
	if err != nil {
		gs.Logger.WithFields(logrus.Fields{
			"game_id": g.ID,
			"action":  actionType,
		}).Debugf("action rejected: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decodeBody decodes an optional JSON body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
}
