// Package engine implements the Skyjo rules: deck building, dealing, the
// initial two-card reveal, starter selection and the draw/discard/swap turn
// cycle.
//
// Every operation is a pure transition on a GameState value. The receiver is
// never modified; callers keep their previous state when an error is
// returned, which makes undo and replay a matter of holding on to old values.
package engine

const (
	MinPlayers = 2
	MaxPlayers = 8

	// HandSize is the number of slots in every player's grid.
	HandSize = Rows * Cols
	Rows     = 3
	Cols     = 4

	// RevealsPerPlayer is how many cards each player flips before play begins.
	RevealsPerPlayer = 2

	MinCardValue = -2
	MaxCardValue = 12

	// NoSlot tells DiscardAndFlip not to flip anything.
	NoSlot = -1
)

// Phase is the coarse stage of a game.
type Phase string

const (
	PhaseStart  Phase = "start"
	PhaseReveal Phase = "reveal"
	PhasePlay   Phase = "play"
)

// Card is a single Skyjo card. ID and Value never change after the deck is
// built; FaceUp and the pile the card sits in do.
type Card struct {
	ID     int  `json:"id"`
	Value  int  `json:"value"`
	FaceUp bool `json:"faceUp"`
}

// Player owns a fixed grid of HandSize cards.
type Player struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// Row returns the grid row of slot i.
func Row(i int) int { return i / Cols }

// Col returns the grid column of slot i.
func Col(i int) int { return i % Cols }

// VisibleSum adds up the values of the player's face-up cards.
func VisibleSum(p Player) int {
	sum := 0
	for _, c := range p.Cards {
		if c.FaceUp {
			sum += c.Value
		}
	}
	return sum
}

// FirstFaceDownSlot returns the lowest slot index holding a face-down card.
func FirstFaceDownSlot(p Player) (int, bool) {
	for i, c := range p.Cards {
		if !c.FaceUp {
			return i, true
		}
	}
	return NoSlot, false
}

// FaceUpCount returns how many of the player's cards are face-up.
func FaceUpCount(p Player) int {
	n := 0
	for _, c := range p.Cards {
		if c.FaceUp {
			n++
		}
	}
	return n
}

func validSlot(i int) bool { return i >= 0 && i < HandSize }
