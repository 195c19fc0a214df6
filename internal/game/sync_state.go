// internal/game/sync_state.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/engine"
)

// CardView is one card as the screen may show it. Face-down cards keep
// their value hidden.
type CardView struct {
	ID     int  `json:"id"`
	FaceUp bool `json:"faceUp"`
	Value  *int `json:"value,omitempty"`
	Idx    int  `json:"idx"`
	Row    int  `json:"row"`
	Col    int  `json:"col"`
}

// PlayerView is the visible state of one seat.
type PlayerView struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Cards          []CardView `json:"cards"`
	VisibleSum     int        `json:"visibleSum"`
	RevealProgress int        `json:"revealProgress"`
	IsCurrentTurn  bool       `json:"isCurrentTurn"`
	FirstFaceDown  *int       `json:"firstFaceDown,omitempty"`
}

// GameView is everything the presentation layer needs to draw the table.
type GameView struct {
	GameID             uuid.UUID    `json:"game_id"`
	Phase              engine.Phase `json:"phase"`
	CurrentPlayer      int          `json:"currentPlayer"`
	Starter            *int         `json:"starter,omitempty"`
	Turn               int          `json:"turn"`
	DeckSize           int          `json:"deckSize"`
	DiscardSize        int          `json:"discardSize"`
	DiscardTop         *CardView    `json:"discardTop,omitempty"`
	Drawn              *CardView    `json:"drawn,omitempty"`
	AwaitingResolution bool         `json:"awaitingResolution"`
	Players            []PlayerView `json:"players"`
	Rules              HouseRules   `json:"rules"`
	CanUndo            bool         `json:"canUndo"`
	Message            string       `json:"message"`
}

// buildView renders s for the screen. Face-down values never leave the engine.
func buildView(id uuid.UUID, rules HouseRules, s engine.GameState, canUndo bool) GameView {
	v := GameView{
		GameID:             id,
		Phase:              s.Phase,
		CurrentPlayer:      s.CurrentPlayer,
		Turn:               s.Turn,
		DeckSize:           len(s.Deck),
		DiscardSize:        len(s.Discard),
		AwaitingResolution: s.AwaitingResolution(),
		Players:            make([]PlayerView, 0, len(s.Players)),
		Rules:              rules,
		CanUndo:            canUndo,
	}
	if s.Starter >= 0 {
		v.Starter = idxPtr(s.Starter)
	}
	if top, ok := s.TopOfDiscard(); ok {
		cv := cardView(top, -1)
		v.DiscardTop = &cv
	}
	if s.Drawn != nil {
		cv := cardView(*s.Drawn, -1)
		v.Drawn = &cv
	}

	for i, p := range s.Players {
		pv := PlayerView{
			ID:             p.ID,
			Name:           p.Name,
			Cards:          make([]CardView, len(p.Cards)),
			VisibleSum:     engine.VisibleSum(p),
			RevealProgress: s.RevealProgress[i],
			IsCurrentTurn:  s.Phase != engine.PhaseStart && i == s.CurrentPlayer,
		}
		for j, c := range p.Cards {
			pv.Cards[j] = cardView(c, j)
		}
		if slot, ok := engine.FirstFaceDownSlot(p); ok {
			pv.FirstFaceDown = idxPtr(slot)
		}
		v.Players = append(v.Players, pv)
	}
	v.Message = statusMessage(s)
	return v
}

func cardView(c engine.Card, idx int) CardView {
	cv := CardView{ID: c.ID, FaceUp: c.FaceUp, Idx: idx}
	if idx >= 0 {
		cv.Row, cv.Col = engine.Row(idx), engine.Col(idx)
	}
	if c.FaceUp {
		val := c.Value
		cv.Value = &val
	}
	return cv
}

// statusMessage is the one-line prompt shown above the table.
func statusMessage(s engine.GameState) string {
	active, ok := s.Active()
	switch {
	case s.Phase == engine.PhaseStart || !ok:
		return "Choose the number of players and start the game"
	case s.Phase == engine.PhaseReveal:
		left := engine.RevealsPerPlayer - s.RevealProgress[s.CurrentPlayer]
		return fmt.Sprintf("%s: reveal %d more card(s)", active.Name, left)
	case s.Drawn != nil:
		return fmt.Sprintf("%s: place the %d in your grid, or discard it and flip a card", active.Name, s.Drawn.Value)
	case s.Turn == 0:
		return fmt.Sprintf("Highest visible sum starts: %s. Draw from the deck or take the discard", active.Name)
	default:
		return fmt.Sprintf("%s: draw from the deck or take the discard", active.Name)
	}
}
