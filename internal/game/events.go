// internal/game/events.go
package game

import (
	"github.com/jason-s-yu/skyjo/internal/engine"
)

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventGameStart        GameEventType = "game_start"
	EventGameReset        GameEventType = "game_reset"
	EventGameUndo         GameEventType = "game_undo"
	EventPlayerReveal     GameEventType = "player_reveal"
	EventStarterSelected  GameEventType = "starter_selected" // reveal phase finished, play begins
	EventPlayerDrawDeck   GameEventType = "player_draw_deck"
	EventPlayerTakeDisc   GameEventType = "player_take_discard"
	EventPlayerPlace      GameEventType = "player_place"
	EventPlayerDiscard    GameEventType = "player_discard_flip"
	EventDeckReshuffled   GameEventType = "deck_reshuffled"
	EventGamePlayerTurn   GameEventType = "game_player_turn"
	EventPrivateSyncState GameEventType = "private_sync_state" // full view after every change
	EventError            GameEventType = "error"
)

// EventCard identifies a card in an event payload. Cards only appear in
// events once they are face-up, so the value is always included.
type EventCard struct {
	ID    int  `json:"id"`
	Value int  `json:"value"`
	Idx   *int `json:"idx,omitempty"`
}

// GameEvent holds data about an event that can be broadcast to the clients in a consistent format.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Seat    *int                   `json:"seat,omitempty"`
	Card    *EventCard             `json:"card,omitempty"`  // card that was revealed, drawn or placed
	Card2   *EventCard             `json:"card2,omitempty"` // card that left a hand, or was flipped
	Kind    engine.ErrorKind       `json:"kind,omitempty"`
	Message string                 `json:"message,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *GameView              `json:"state,omitempty"`
}

func buildEventCard(c engine.Card, idx *int) *EventCard {
	return &EventCard{ID: c.ID, Value: c.Value, Idx: idx}
}

func seatPtr(seat int) *int { return &seat }

func idxPtr(idx int) *int { return &idx }
