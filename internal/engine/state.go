package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Rules are the table options that change engine behaviour.
type Rules struct {
	// ReshuffleOnEmptyDeck turns the discard pile, minus its top card, into a
	// fresh draw pile when a player draws from an empty deck. When false the
	// draw fails with ErrDeckExhausted.
	ReshuffleOnEmptyDeck bool `json:"reshuffleOnEmptyDeck"`
}

// DefaultRules returns the rules used when none are given.
func DefaultRules() Rules {
	return Rules{ReshuffleOnEmptyDeck: true}
}

// GameState is the complete state of one game.
type GameState struct {
	Phase          Phase       `json:"phase"`
	Players        []Player    `json:"players"`
	Deck           []Card      `json:"deck"`
	Discard        []Card      `json:"discard"`
	CurrentPlayer  int         `json:"currentPlayer"`
	Drawn          *Card       `json:"drawn,omitempty"`
	RevealProgress map[int]int `json:"revealProgress"`

	// Starter is the player chosen to open the play phase, -1 before that.
	Starter int `json:"starter"`
	// Turn counts completed play-phase turns.
	Turn int `json:"turn"`
	// Reshuffles counts how often the discard pile was recycled into the deck.
	Reshuffles int   `json:"reshuffles"`
	Rules      Rules `json:"rules"`

	// shuffleSeed is drawn at Start; reshuffles derive their order from it
	// and Reshuffles, so equal states recycle the discard pile identically.
	shuffleSeed int64

	rng *rand.Rand
	ids IDSource
}

// Option configures NewGame.
type Option func(*GameState)

// WithRand sets the random source used to deal. It is shared by every state
// derived from the game and is not part of the state itself.
func WithRand(r *rand.Rand) Option {
	return func(g *GameState) { g.rng = r }
}

// WithSeed seeds a private random source, for reproducible games.
func WithSeed(seed int64) Option {
	return func(g *GameState) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithIDSource sets where card identifiers come from.
func WithIDSource(ids IDSource) Option {
	return func(g *GameState) { g.ids = ids }
}

// WithRules overrides DefaultRules.
func WithRules(r Rules) Option {
	return func(g *GameState) { g.Rules = r }
}

// NewGame returns a game in PhaseStart.
func NewGame(opts ...Option) GameState {
	g := GameState{
		Phase:          PhaseStart,
		RevealProgress: map[int]int{},
		Starter:        -1,
		Rules:          DefaultRules(),
	}
	for _, opt := range opts {
		opt(&g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.ids == nil {
		g.ids = &Counter{}
	}
	return g
}

// Start builds and shuffles a deck, deals HandSize face-down cards to each of
// playerCount players, seeds the discard pile with one face-up card and
// enters the reveal phase with player 0 to act.
func (g GameState) Start(playerCount int) (GameState, error) {
	if g.Phase != PhaseStart {
		return GameState{}, fmt.Errorf("%w: start requires phase %q, game is in %q", ErrInvalidPhase, PhaseStart, g.Phase)
	}
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return GameState{}, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidPlayerCount, playerCount, MinPlayers, MaxPlayers)
	}

	next := g.clone()
	next.Deck = BuildDeck(next.rng, next.ids)
	if need := playerCount*HandSize + 1; len(next.Deck) < need {
		return GameState{}, fmt.Errorf("%w: %d players need %d cards, deck has %d", ErrDeckExhausted, playerCount, need, len(next.Deck))
	}

	next.Players = make([]Player, playerCount)
	for p := 0; p < playerCount; p++ {
		hand := make([]Card, HandSize)
		for i := range hand {
			hand[i] = next.popDeck()
		}
		next.Players[p] = Player{ID: p, Name: DefaultPlayerName(p), Cards: hand}
		next.RevealProgress[p] = 0
	}

	seed := next.popDeck()
	seed.FaceUp = true
	next.Discard = []Card{seed}

	next.Phase = PhaseReveal
	next.CurrentPlayer = 0
	next.Drawn = nil
	next.Starter = -1
	next.Turn = 0
	next.Reshuffles = 0
	next.shuffleSeed = next.rng.Int63()
	return next, nil
}

// Reset discards all game data and returns to PhaseStart, keeping the rules,
// random source and id source.
func (g GameState) Reset() GameState {
	return NewGame(WithRand(g.rng), WithIDSource(g.ids), WithRules(g.Rules))
}

// DefaultPlayerName is the display name of player index p.
func DefaultPlayerName(p int) string {
	return fmt.Sprintf("Player %d", p+1)
}

// TopOfDiscard returns the card on top of the discard pile.
func (g GameState) TopOfDiscard() (Card, bool) {
	if len(g.Discard) == 0 {
		return Card{}, false
	}
	return g.Discard[len(g.Discard)-1], true
}

// Active returns the player whose turn it is.
func (g GameState) Active() (Player, bool) {
	if g.CurrentPlayer < 0 || g.CurrentPlayer >= len(g.Players) {
		return Player{}, false
	}
	return g.Players[g.CurrentPlayer], true
}

// AwaitingResolution reports whether the active player holds a drawn card.
func (g GameState) AwaitingResolution() bool { return g.Drawn != nil }

// CardCount returns the number of cards in play across every pile and hand.
func (g GameState) CardCount() int {
	n := len(g.Deck) + len(g.Discard)
	for _, p := range g.Players {
		n += len(p.Cards)
	}
	if g.Drawn != nil {
		n++
	}
	return n
}

// CheckInvariants verifies the structural invariants of a started game. A
// non-nil result means the engine itself is broken.
func (g GameState) CheckInvariants() error {
	if g.Phase == PhaseStart {
		if len(g.Players) != 0 || len(g.Deck) != 0 || len(g.Discard) != 0 || g.Drawn != nil {
			return fmt.Errorf("start phase holds game data")
		}
		return nil
	}
	if n := g.CardCount(); n != DeckSize {
		return fmt.Errorf("card count is %d, want %d", n, DeckSize)
	}
	if len(g.Players) < MinPlayers || len(g.Players) > MaxPlayers {
		return fmt.Errorf("player count is %d", len(g.Players))
	}
	if g.CurrentPlayer < 0 || g.CurrentPlayer >= len(g.Players) {
		return fmt.Errorf("current player %d out of range", g.CurrentPlayer)
	}
	seen := make(map[int]bool, DeckSize)
	check := func(c Card) error {
		if seen[c.ID] {
			return fmt.Errorf("card %d appears twice", c.ID)
		}
		seen[c.ID] = true
		if c.Value < MinCardValue || c.Value > MaxCardValue {
			return fmt.Errorf("card %d has value %d", c.ID, c.Value)
		}
		return nil
	}
	for i, p := range g.Players {
		if p.ID != i {
			return fmt.Errorf("player at index %d has id %d", i, p.ID)
		}
		if len(p.Cards) != HandSize {
			return fmt.Errorf("player %d holds %d cards", i, len(p.Cards))
		}
		if prog := g.RevealProgress[i]; prog < 0 || prog > RevealsPerPlayer {
			return fmt.Errorf("player %d reveal progress is %d", i, prog)
		}
		for _, c := range p.Cards {
			if err := check(c); err != nil {
				return err
			}
		}
	}
	for _, c := range g.Deck {
		if err := check(c); err != nil {
			return err
		}
	}
	for _, c := range g.Discard {
		if err := check(c); err != nil {
			return err
		}
		if !c.FaceUp {
			return fmt.Errorf("discarded card %d is face-down", c.ID)
		}
	}
	if g.Drawn != nil {
		if g.Phase != PhasePlay {
			return fmt.Errorf("drawn card held in phase %q", g.Phase)
		}
		if err := check(*g.Drawn); err != nil {
			return err
		}
	}
	if g.Phase == PhasePlay {
		for i := range g.Players {
			if g.RevealProgress[i] != RevealsPerPlayer {
				return fmt.Errorf("play phase with player %d at reveal progress %d", i, g.RevealProgress[i])
			}
		}
	}
	return nil
}

// clone returns a deep copy sharing only the dealing and id sources.
func (g GameState) clone() GameState {
	next := g
	if g.Players != nil {
		next.Players = make([]Player, len(g.Players))
		for i, p := range g.Players {
			p.Cards = cloneCards(p.Cards)
			next.Players[i] = p
		}
	}
	next.Deck = cloneCards(g.Deck)
	next.Discard = cloneCards(g.Discard)
	if g.Drawn != nil {
		c := *g.Drawn
		next.Drawn = &c
	}
	next.RevealProgress = make(map[int]int, len(g.RevealProgress))
	for k, v := range g.RevealProgress {
		next.RevealProgress[k] = v
	}
	return next
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// popDeck removes the last card of the deck. Callers check the length.
func (g *GameState) popDeck() Card {
	last := len(g.Deck) - 1
	c := g.Deck[last]
	g.Deck = g.Deck[:last]
	return c
}

func (g *GameState) pushDiscard(c Card) {
	c.FaceUp = true
	g.Discard = append(g.Discard, c)
}
