package engine

import "testing"

// playOut drives a full game with a simple policy: always buy when
// possible, resolve whatever the phase demands, end the turn. It stops
// when CheckEnd reports a terminal state.
func playOut(t *testing.T, seed uint64, players int) *GameState {
	t.Helper()
	board := DefaultBoard()
	g := newTestGame(t, seed, players)

	for steps := 0; ; steps++ {
		if steps > 10000 {
			t.Fatalf("game did not terminate")
		}
		if res := CheckEnd(g, board); res.Ended {
			g.RecordEnd(res)
			return g
		}

		actor := g.CurrentPlayer().ID
		var act Action
		switch g.Phase {
		case PhaseRoll:
			act = Action{Type: ActionRollDice}
		case PhaseAction:
			act = pickActionPhaseMove(g, board)
		case PhaseEndTurn:
			act = Action{Type: ActionEndTurn}
		default:
			t.Fatalf("unexpected phase %s in scripted game", g.Phase)
		}

		next, err := g.Apply(board, actor, act)
		if err != nil {
			t.Fatalf("step %d: %s by %s: %v", steps, act.Type, actor, err)
		}
		assertInvariants(t, next, board)
		g = next
	}
}

// pickActionPhaseMove chooses the forced or greedy follow-up for the
// ACTION phase.
func pickActionPhaseMove(g *GameState, board *Board) Action {
	if g.CurrentCardID != "" {
		return Action{Type: ActionResolveCard}
	}
	p := g.CurrentPlayer()
	tile := board.TileAt(p.Position)
	if tile == nil {
		return Action{Type: ActionSkipBuy}
	}
	switch tile.Type {
	case TileTax:
		return Action{Type: ActionPayTax}
	case TileChance:
		return Action{Type: ActionDrawCard}
	case TileProperty:
		if g.OwnerOf(tile.ID) == nil && p.Balance >= tile.Price {
			return Action{Type: ActionBuyProperty, TileID: tile.ID}
		}
		return Action{Type: ActionSkipBuy}
	}
	return Action{Type: ActionSkipBuy}
}

// assertInvariants checks the structural properties every reachable
// state must satisfy.
func assertInvariants(t *testing.T, g *GameState, board *Board) {
	t.Helper()
	owners := map[string]string{}
	for i := range g.Players {
		p := &g.Players[i]
		if p.Active && p.Balance < 0 {
			t.Fatalf("active player %s has negative balance %d", p.ID, p.Balance)
		}
		if !p.Active && (p.Balance != 0 || len(p.Properties) != 0) {
			t.Fatalf("inactive player %s still holds assets", p.ID)
		}
		for _, tileID := range p.Properties {
			if prev, dup := owners[tileID]; dup {
				t.Fatalf("tile %s owned by both %s and %s", tileID, prev, p.ID)
			}
			owners[tileID] = p.ID
			if board.TileByID(tileID) == nil {
				t.Fatalf("player %s owns unknown tile %s", p.ID, tileID)
			}
		}
	}
	if g.DiceRoll != nil && len(g.DiceRoll) != 2 {
		t.Fatalf("dice roll must be nil or two dice, got %v", g.DiceRoll)
	}
	if !g.CurrentPlayer().Active && g.ActivePlayerCount() > 0 && g.Phase == PhaseRoll {
		t.Fatalf("turn handed to inactive player %s", g.CurrentPlayer().ID)
	}
}

func TestFullGameTerminates(t *testing.T) {
	for _, seed := range []uint64{1, 42, 777} {
		g := playOut(t, seed, 3)
		if !g.GameEnded {
			t.Fatalf("seed %d: game did not record an end", seed)
		}
		if g.EndReason != ReasonTurnLimitReached && g.EndReason != ReasonLastPlayerStanding {
			t.Fatalf("seed %d: unexpected end reason %q", seed, g.EndReason)
		}
		if g.EndReason == ReasonTurnLimitReached && g.TurnNumber < g.TurnLimit {
			t.Fatalf("seed %d: turn-limit end before the limit, turn %d", seed, g.TurnNumber)
		}
	}
}

func TestFullGameDeterministic(t *testing.T) {
	a := playOut(t, 42, 2)
	b := playOut(t, 42, 2)

	if a.WinnerID != b.WinnerID || a.TurnNumber != b.TurnNumber || a.EndReason != b.EndReason {
		t.Fatalf("same seed diverged: %s/%d/%s vs %s/%d/%s",
			a.WinnerID, a.TurnNumber, a.EndReason, b.WinnerID, b.TurnNumber, b.EndReason)
	}
}

func TestFullGameActionsRejectedAfterEnd(t *testing.T) {
	board := DefaultBoard()
	g := playOut(t, 1, 2)

	if _, err := g.Apply(board, g.CurrentPlayer().ID, Action{Type: ActionRollDice}); !IsRejected(err) {
		t.Fatalf("expected rejection after game end, got %v", err)
	}
}
