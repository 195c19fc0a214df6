package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/engine"
	"github.com/jason-s-yu/skyjo/internal/game"
)

// Error kinds that do not come from the engine.
const (
	kindBadRequest    engine.ErrorKind = "bad_request"
	kindNotFound      engine.ErrorKind = "not_found"
	kindNothingToUndo engine.ErrorKind = "nothing_to_undo"
	kindInternal      engine.ErrorKind = "internal"
)

var errNotFound = errors.New("not found")

// ErrorResponse is the body of every failed request and the socket error message.
type ErrorResponse struct {
	Type    string           `json:"type"`
	Kind    engine.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// classify maps an error to its kind and HTTP status.
func classify(err error) (engine.ErrorKind, int) {
	switch {
	case engine.IsRuleViolation(err):
		return engine.KindOf(err), http.StatusConflict
	case errors.Is(err, game.ErrNothingToUndo):
		return kindNothingToUndo, http.StatusConflict
	case errors.Is(err, errNotFound):
		return kindNotFound, http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return kindBadRequest, http.StatusBadRequest
	default:
		return kindInternal, http.StatusInternalServerError
	}
}

func errorResponse(err error) (ErrorResponse, int) {
	kind, status := classify(err)
	return ErrorResponse{Type: string(game.EventError), Kind: kind, Message: err.Error()}, status
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp, status := errorResponse(err)
	writeJSON(w, status, resp)
}

// lookupGame resolves the {id} path value.
func (gs *GameServer) lookupGame(r *http.Request) (*game.SkyjoGame, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid game id %q", errBadRequest, r.PathValue("id"))
	}
	g, ok := gs.GameStore.GetGame(id)
	if !ok {
		return nil, fmt.Errorf("%w: game %s", errNotFound, id)
	}
	return g, nil
}
