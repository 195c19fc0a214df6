package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevealFlipsAndCounts(t *testing.T) {
	g := newStartedGame(t, 3, 1)

	next, err := g.RevealCard(0, 5)
	require.NoError(t, err)
	assert.True(t, next.Players[0].Cards[5].FaceUp)
	assert.Equal(t, 1, next.RevealProgress[0])
	assert.Equal(t, 0, next.CurrentPlayer, "player keeps the turn until two cards are shown")

	assert.False(t, g.Players[0].Cards[5].FaceUp, "receiver must not change")
	assert.Equal(t, 0, g.RevealProgress[0])
}

func TestRevealPassesTurnInSeatOrder(t *testing.T) {
	g := newStartedGame(t, 3, 1)
	var err error

	g, err = g.RevealCard(0, 0)
	require.NoError(t, err)
	g, err = g.RevealCard(0, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, g.CurrentPlayer)
	assert.Equal(t, PhaseReveal, g.Phase)

	g, err = g.RevealCard(1, 2)
	require.NoError(t, err)
	g, err = g.RevealCard(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, g.CurrentPlayer)
	assert.Equal(t, PhaseReveal, g.Phase)
	requireInvariants(t, g)
}

func TestRevealGating(t *testing.T) {
	g := newStartedGame(t, 3, 2)

	tests := []struct {
		name   string
		state  func() GameState
		player int
		slot   int
		want   error
	}{
		{"other player", func() GameState { return g }, 1, 0, ErrNotActivePlayer},
		{"unknown player", func() GameState { return g }, 7, 0, ErrNotActivePlayer},
		{"negative slot", func() GameState { return g }, 0, -1, ErrSlotOutOfRange},
		{"slot past grid", func() GameState { return g }, 0, HandSize, ErrSlotOutOfRange},
		{"already face-up", func() GameState {
			s, err := g.RevealCard(0, 4)
			require.NoError(t, err)
			return s
		}, 0, 4, ErrSlotAlreadyRevealed},
		{"third reveal", func() GameState {
			s := g.clone()
			s.RevealProgress[0] = RevealsPerPlayer
			return s
		}, 0, 6, ErrRevealLimit},
		{"start phase", func() GameState { return NewGame() }, 0, 0, ErrInvalidPhase},
		{"play phase", func() GameState { return revealAll(t, g) }, 0, 9, ErrInvalidPhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state()
			snapshot := before.clone()
			_, err := before.RevealCard(tt.player, tt.slot)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, snapshot, before, "rejected reveal must not change state")
		})
	}
}

func TestRevealFinishedPlayerCannotRevealAgain(t *testing.T) {
	g := newStartedGame(t, 2, 3)
	var err error
	g, err = g.RevealCard(0, 0)
	require.NoError(t, err)
	g, err = g.RevealCard(0, 1)
	require.NoError(t, err)

	_, err = g.RevealCard(0, 2)
	assert.ErrorIs(t, err, ErrNotActivePlayer)
}

func TestStarterSelectionHighestSumFirstOccurrence(t *testing.T) {
	g := newStartedGame(t, 4, 5)
	pairs := [][2]int{{1, 2}, {4, 5}, {9, 0}, {0, 1}} // sums 3, 9, 9, 1
	for p, pair := range pairs {
		g.Players[p].Cards[0].Value = pair[0]
		g.Players[p].Cards[1].Value = pair[1]
	}

	var err error
	for p := range pairs {
		g, err = g.RevealCard(p, 0)
		require.NoError(t, err)
		g, err = g.RevealCard(p, 1)
		require.NoError(t, err)
	}

	assert.Equal(t, PhasePlay, g.Phase)
	assert.Equal(t, 1, g.Starter)
	assert.Equal(t, 1, g.CurrentPlayer)
	assert.Nil(t, g.Drawn)
	assert.True(t, g.RevealComplete())
}

func TestSelectStarter(t *testing.T) {
	mk := func(sums ...int) []Player {
		players := make([]Player, len(sums))
		for i, s := range sums {
			players[i] = Player{ID: i, Cards: []Card{{Value: s, FaceUp: true}, {Value: 12}}}
		}
		return players
	}
	assert.Equal(t, 1, SelectStarter(mk(3, 9, 9, 1)))
	assert.Equal(t, 0, SelectStarter(mk(4, 4)))
	assert.Equal(t, 2, SelectStarter(mk(-4, -3, -1)))
	assert.Equal(t, 0, SelectStarter(mk(-2, -4)))
}

func TestRevealCompleteRunsStarterOnce(t *testing.T) {
	g := revealAll(t, newStartedGame(t, 2, 6))
	require.Equal(t, PhasePlay, g.Phase)
	starter := g.Starter

	// turns that flip more cards never re-run selection
	var err error
	for i := 0; i < 6; i++ {
		g, err = g.DrawFromDeck()
		require.NoError(t, err)
		slot, _ := FirstFaceDownSlot(g.Players[g.CurrentPlayer])
		g, err = g.DiscardAndFlip(slot)
		require.NoError(t, err)
	}
	assert.Equal(t, starter, g.Starter)
}
