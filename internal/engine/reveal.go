package engine

import "fmt"

// RevealCard flips one of the active player's face-down cards during the
// reveal phase. Once a player has flipped RevealsPerPlayer cards the turn
// passes to the next player still revealing; after the last one the starter
// is chosen and the play phase begins.
func (g GameState) RevealCard(playerIdx, cardIdx int) (GameState, error) {
	if g.Phase != PhaseReveal {
		return GameState{}, fmt.Errorf("%w: reveal requires phase %q, game is in %q", ErrInvalidPhase, PhaseReveal, g.Phase)
	}
	if playerIdx != g.CurrentPlayer {
		return GameState{}, fmt.Errorf("%w: player %d tried to reveal, player %d is revealing", ErrNotActivePlayer, playerIdx, g.CurrentPlayer)
	}
	if !validSlot(cardIdx) {
		return GameState{}, fmt.Errorf("%w: %d", ErrSlotOutOfRange, cardIdx)
	}
	if g.RevealProgress[playerIdx] >= RevealsPerPlayer {
		return GameState{}, fmt.Errorf("%w: player %d", ErrRevealLimit, playerIdx)
	}
	if g.Players[playerIdx].Cards[cardIdx].FaceUp {
		return GameState{}, fmt.Errorf("%w: player %d slot %d", ErrSlotAlreadyRevealed, playerIdx, cardIdx)
	}

	next := g.clone()
	next.Players[playerIdx].Cards[cardIdx].FaceUp = true
	next.RevealProgress[playerIdx]++

	if next.RevealProgress[playerIdx] < RevealsPerPlayer {
		return next, nil
	}
	if p, ok := next.nextRevealer(playerIdx); ok {
		next.CurrentPlayer = p
		return next, nil
	}
	next.beginPlay()
	return next, nil
}

// nextRevealer finds the first player after from, in seat order, who has not
// finished revealing.
func (g GameState) nextRevealer(from int) (int, bool) {
	n := len(g.Players)
	for step := 1; step < n; step++ {
		p := (from + step) % n
		if g.RevealProgress[p] < RevealsPerPlayer {
			return p, true
		}
	}
	return 0, false
}

// RevealComplete reports whether every player has finished revealing.
func (g GameState) RevealComplete() bool {
	if len(g.Players) == 0 {
		return false
	}
	for i := range g.Players {
		if g.RevealProgress[i] < RevealsPerPlayer {
			return false
		}
	}
	return true
}
