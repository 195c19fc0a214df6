package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameStartsEmpty(t *testing.T) {
	g := NewGame()
	assert.Equal(t, PhaseStart, g.Phase)
	assert.Empty(t, g.Players)
	assert.Nil(t, g.Drawn)
	assert.Equal(t, -1, g.Starter)
	assert.Equal(t, DefaultRules(), g.Rules)
	requireInvariants(t, g)
}

func TestStartDealsHands(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			g := newStartedGame(t, n, int64(n))

			assert.Equal(t, PhaseReveal, g.Phase)
			assert.Equal(t, 0, g.CurrentPlayer)
			require.Len(t, g.Players, n)
			for i, p := range g.Players {
				assert.Equal(t, i, p.ID)
				assert.Equal(t, fmt.Sprintf("Player %d", i+1), p.Name)
				require.Len(t, p.Cards, HandSize)
				assert.Zero(t, FaceUpCount(p), "player %d should have no visible cards", i)
				assert.Equal(t, 0, g.RevealProgress[i])
			}

			require.Len(t, g.Discard, 1)
			assert.True(t, g.Discard[0].FaceUp)
			assert.Len(t, g.Deck, DeckSize-n*HandSize-1)
			requireInvariants(t, g)
		})
	}
}

func TestStartDealsFromDeckEnd(t *testing.T) {
	seed := int64(11)
	deck := BuildDeck(NewGame(WithSeed(seed)).rng, &Counter{})

	g := newStartedGame(t, 2, seed)
	// player 0 gets the last 12 cards, reversed by popping
	for i := 0; i < HandSize; i++ {
		assert.Equal(t, deck[len(deck)-1-i].ID, g.Players[0].Cards[i].ID)
	}
	assert.Equal(t, deck[len(deck)-1-2*HandSize].ID, g.Discard[0].ID)
}

func TestStartRejectsPlayerCount(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 9, 20} {
		_, err := NewGame().Start(n)
		assert.ErrorIs(t, err, ErrInvalidPlayerCount, "n=%d", n)
	}
}

func TestStartTwiceIsInvalidPhase(t *testing.T) {
	g := newStartedGame(t, 2, 1)
	_, err := g.Start(2)
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestStartDoesNotMutateReceiver(t *testing.T) {
	g := NewGame(WithSeed(3))
	_, err := g.Start(4)
	require.NoError(t, err)
	assert.Equal(t, PhaseStart, g.Phase)
	assert.Empty(t, g.Players)
}

func TestResetReturnsToStart(t *testing.T) {
	g := revealAll(t, newStartedGame(t, 3, 2))
	g, err := g.DrawFromDeck()
	require.NoError(t, err)

	r := g.Reset()
	assert.Equal(t, PhaseStart, r.Phase)
	assert.Empty(t, r.Players)
	assert.Empty(t, r.Deck)
	assert.Empty(t, r.Discard)
	assert.Nil(t, r.Drawn)
	assert.Empty(t, r.RevealProgress)
	assert.Equal(t, g.Rules, r.Rules)
	requireInvariants(t, r)

	// a reset game can be started again
	r, err = r.Start(2)
	require.NoError(t, err)
	requireInvariants(t, r)
}

func TestResetKeepsIDsUnique(t *testing.T) {
	ids := &Counter{}
	g, err := NewGame(WithSeed(1), WithIDSource(ids)).Start(2)
	require.NoError(t, err)
	g, err = g.Reset().Start(2)
	require.NoError(t, err)

	for _, c := range g.Deck {
		assert.GreaterOrEqual(t, c.ID, DeckSize)
	}
}

func TestTopOfDiscard(t *testing.T) {
	_, ok := NewGame().TopOfDiscard()
	assert.False(t, ok)

	g := newStartedGame(t, 2, 4)
	top, ok := g.TopOfDiscard()
	require.True(t, ok)
	assert.Equal(t, g.Discard[0], top)
}

func TestVisibleSumAndFirstFaceDown(t *testing.T) {
	p := Player{Cards: make([]Card, HandSize)}
	for i := range p.Cards {
		p.Cards[i] = Card{ID: i, Value: i - 2}
	}
	assert.Equal(t, 0, VisibleSum(p))
	slot, ok := FirstFaceDownSlot(p)
	assert.True(t, ok)
	assert.Equal(t, 0, slot)

	p.Cards[0].FaceUp = true  // -2
	p.Cards[5].FaceUp = true  // 3
	p.Cards[11].FaceUp = true // 9
	assert.Equal(t, 10, VisibleSum(p))
	slot, ok = FirstFaceDownSlot(p)
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	for i := range p.Cards {
		p.Cards[i].FaceUp = true
	}
	slot, ok = FirstFaceDownSlot(p)
	assert.False(t, ok)
	assert.Equal(t, NoSlot, slot)
}

func TestGridCoordinates(t *testing.T) {
	assert.Equal(t, 0, Row(3))
	assert.Equal(t, 3, Col(3))
	assert.Equal(t, 1, Row(4))
	assert.Equal(t, 0, Col(4))
	assert.Equal(t, 2, Row(11))
	assert.Equal(t, 3, Col(11))
}

func TestCheckInvariantsDetectsDrift(t *testing.T) {
	g := newStartedGame(t, 2, 8)
	g.Deck = g.Deck[1:]
	assert.Error(t, g.CheckInvariants())

	g = newStartedGame(t, 2, 8)
	g.Players[1].Cards = g.Players[1].Cards[:11]
	assert.Error(t, g.CheckInvariants())

	g = newStartedGame(t, 2, 8)
	g.Discard = append(g.Discard, g.Deck[0])
	assert.Error(t, g.CheckInvariants(), "duplicated card must be reported")
}
