// internal/handlers/actions.go
package handlers

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/skyjo/internal/game"
)

// Action types accepted over the socket. The HTTP routes map onto the same set.
const (
	ActionStart       = "action_start"
	ActionReset       = "action_reset"
	ActionReveal      = "action_reveal"
	ActionDrawDeck    = "action_draw_deck"
	ActionTakeDiscard = "action_take_discard"
	ActionPlace       = "action_place"
	ActionDiscardFlip = "action_discard_flip"
	ActionUndo        = "action_undo"
	ActionSync        = "action_sync"
)

// errBadRequest marks input that could not be understood at all.
var errBadRequest = errors.New("bad request")

// GameMessage represents an incoming action, from a socket or an HTTP body.
type GameMessage struct {
	Type string `json:"type"`

	// PlayerCount overrides the house rules for action_start.
	PlayerCount *int `json:"playerCount,omitempty"`

	Seat *int `json:"seat,omitempty"`

	// Slot is the grid index 0-11. For action_discard_flip an absent slot
	// flips the first face-down card and -1 flips nothing.
	Slot *int `json:"slot,omitempty"`
}

// applyAction routes one message to the game.
func applyAction(g *game.SkyjoGame, msg GameMessage) (game.GameView, error) {
	switch msg.Type {
	case ActionStart:
		if msg.PlayerCount != nil {
			return g.StartWithPlayers(*msg.PlayerCount)
		}
		return g.Start()
	case ActionReset:
		return g.Reset(), nil
	case ActionReveal:
		if msg.Seat == nil || msg.Slot == nil {
			return g.View(), fmt.Errorf("%w: reveal needs seat and slot", errBadRequest)
		}
		return g.Reveal(*msg.Seat, *msg.Slot)
	case ActionDrawDeck:
		return g.DrawFromDeck()
	case ActionTakeDiscard:
		return g.TakeFromDiscard()
	case ActionPlace:
		if msg.Slot == nil {
			return g.View(), fmt.Errorf("%w: place needs slot", errBadRequest)
		}
		return g.PlaceDrawnAt(*msg.Slot)
	case ActionDiscardFlip:
		if msg.Slot == nil {
			return g.DiscardAndFlipFirst()
		}
		return g.DiscardAndFlip(*msg.Slot)
	case ActionUndo:
		return g.Undo()
	case ActionSync:
		return g.View(), nil
	default:
		return g.View(), fmt.Errorf("%w: unknown action type %q", errBadRequest, msg.Type)
	}
}
