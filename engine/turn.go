package engine

// advanceTurn hands the turn to the next active player in seating order
// and resets the per-turn fields. TurnNumber counts turns, not rounds:
// it increments on every handover.
//
// If no active player remains the index freezes in place; CheckEnd is
// expected to have ended the game before that can matter.
func (g *GameState) advanceTurn() {
	g.DiceRoll = nil
	g.CurrentCardID = ""
	g.TurnNumber++
	g.Phase = PhaseRoll

	n := len(g.Players)
	idx := g.CurrentPlayerIndex
	for i := 0; i < n; i++ {
		idx = (idx + 1) % n
		if g.Players[idx].Active {
			g.CurrentPlayerIndex = idx
			return
		}
	}
}

// ForceAdvanceTurn skips the current player's turn without applying any
// action. It exists for the room layer to recover a game whose current
// player can no longer act; normal play always advances through Apply.
func ForceAdvanceTurn(g *GameState) *GameState {
	next := g.Clone()
	next.advanceTurn()
	return next
}
