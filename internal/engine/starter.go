package engine

// SelectStarter returns the index of the player with the highest visible
// sum. Ties go to the lowest index. This table plays "highest sum starts"
// on purpose; do not flip it to the printed rule without asking.
func SelectStarter(players []Player) int {
	best, bestSum := 0, 0
	for i, p := range players {
		sum := VisibleSum(p)
		if i == 0 || sum > bestSum {
			best, bestSum = i, sum
		}
	}
	return best
}

// beginPlay runs starter selection once and opens the play phase.
func (g *GameState) beginPlay() {
	g.Starter = SelectStarter(g.Players)
	g.CurrentPlayer = g.Starter
	g.Phase = PhasePlay
	g.Drawn = nil
	g.Turn = 0
}
