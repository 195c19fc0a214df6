package engine

import (
	"fmt"
	"math/rand"
)

// DrawFromDeck takes the top card of the draw pile, face-up, as the drawn
// card. An empty pile is refilled from the discard pile when
// Rules.ReshuffleOnEmptyDeck is set.
func (g GameState) DrawFromDeck() (GameState, error) {
	if err := g.requireAcquisition("draw"); err != nil {
		return GameState{}, err
	}

	next := g.clone()
	if len(next.Deck) == 0 {
		if !next.Rules.ReshuffleOnEmptyDeck {
			return GameState{}, fmt.Errorf("%w: reshuffling is disabled", ErrDeckExhausted)
		}
		if !next.recycleDiscard() {
			return GameState{}, fmt.Errorf("%w: discard pile has %d card(s), nothing to reshuffle", ErrDeckExhausted, len(next.Discard))
		}
	}

	c := next.popDeck()
	c.FaceUp = true
	next.Drawn = &c
	return next, nil
}

// TakeFromDiscard takes the top of the discard pile as the drawn card.
func (g GameState) TakeFromDiscard() (GameState, error) {
	if err := g.requireAcquisition("take from discard"); err != nil {
		return GameState{}, err
	}
	if len(g.Discard) == 0 {
		return GameState{}, ErrDiscardEmpty
	}

	next := g.clone()
	last := len(next.Discard) - 1
	c := next.Discard[last]
	next.Discard = next.Discard[:last]
	c.FaceUp = true
	next.Drawn = &c
	return next, nil
}

// PlaceDrawnAt swaps the drawn card into the active player's slot. The card
// that was there goes face-up onto the discard pile and the turn ends.
func (g GameState) PlaceDrawnAt(slot int) (GameState, error) {
	if err := g.requireResolution("place"); err != nil {
		return GameState{}, err
	}
	if !validSlot(slot) {
		return GameState{}, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}

	next := g.clone()
	hand := next.Players[next.CurrentPlayer].Cards
	replaced := hand[slot]
	placed := *next.Drawn
	placed.FaceUp = true
	hand[slot] = placed
	next.pushDiscard(replaced)
	next.endTurn()
	return next, nil
}

// DiscardAndFlip puts the drawn card on the discard pile and, unless slot is
// NoSlot, flips that slot face-up. Flipping a card that is already face-up
// does nothing. The turn ends either way.
func (g GameState) DiscardAndFlip(slot int) (GameState, error) {
	if err := g.requireResolution("discard"); err != nil {
		return GameState{}, err
	}
	if slot != NoSlot && !validSlot(slot) {
		return GameState{}, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}

	next := g.clone()
	next.pushDiscard(*next.Drawn)
	next.Drawn = nil
	if slot != NoSlot {
		next.Players[next.CurrentPlayer].Cards[slot].FaceUp = true
	}
	next.endTurn()
	return next, nil
}

// endTurn clears the drawn card and passes the turn to the next seat.
func (g *GameState) endTurn() {
	g.Drawn = nil
	g.CurrentPlayer = (g.CurrentPlayer + 1) % len(g.Players)
	g.Turn++
}

// recycleDiscard moves every discard except the top card, face-down and
// shuffled, into the empty deck. It reports whether any card moved.
func (g *GameState) recycleDiscard() bool {
	if len(g.Discard) < 2 {
		return false
	}
	last := len(g.Discard) - 1
	top := g.Discard[last]
	recycled := append([]Card(nil), g.Discard[:last]...)
	for i := range recycled {
		recycled[i].FaceUp = false
	}
	shuffle(rand.New(rand.NewSource(g.shuffleSeed+int64(g.Reshuffles))), recycled)
	g.Deck = recycled
	g.Discard = []Card{top}
	g.Reshuffles++
	return true
}

func (g GameState) requireAcquisition(op string) error {
	if g.Phase != PhasePlay {
		return fmt.Errorf("%w: %s requires phase %q, game is in %q", ErrInvalidPhase, op, PhasePlay, g.Phase)
	}
	if g.Drawn != nil {
		return fmt.Errorf("%w: card %d is waiting to be placed or discarded", ErrAlreadyAcquired, g.Drawn.ID)
	}
	return nil
}

func (g GameState) requireResolution(op string) error {
	if g.Phase != PhasePlay {
		return fmt.Errorf("%w: %s requires phase %q, game is in %q", ErrInvalidPhase, op, PhasePlay, g.Phase)
	}
	if g.Drawn == nil {
		return fmt.Errorf("%w: draw from the deck or take the discard first", ErrNoAcquiredCard)
	}
	return nil
}
