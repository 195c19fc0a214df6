package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newStartedGame returns a dealt game in the reveal phase.
func newStartedGame(t *testing.T, players int, seed int64) GameState {
	t.Helper()
	g, err := NewGame(WithSeed(seed)).Start(players)
	require.NoError(t, err)
	return g
}

// revealAll walks every player through the reveal phase, flipping slots 0 and 1.
func revealAll(t *testing.T, g GameState) GameState {
	t.Helper()
	for g.Phase == PhaseReveal {
		p := g.CurrentPlayer
		var err error
		g, err = g.RevealCard(p, g.RevealProgress[p])
		require.NoError(t, err)
	}
	return g
}

// newPlayingGame returns a game in the play phase with current forced to the given seat.
func newPlayingGame(t *testing.T, players int, current int) GameState {
	t.Helper()
	g := revealAll(t, newStartedGame(t, players, 7))
	require.Equal(t, PhasePlay, g.Phase)
	g.CurrentPlayer = current
	return g
}

func requireInvariants(t *testing.T, g GameState) {
	t.Helper()
	require.NoError(t, g.CheckInvariants())
}
