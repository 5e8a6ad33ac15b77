package engine

import "testing"

// setupCardGame parks the current player on an event tile with the given
// card forced to the top of its deck, ready to draw.
func setupCardGame(t *testing.T, cardID string) (*GameState, *Board) {
	t.Helper()
	board := DefaultBoard()
	g := newTestGame(t, 42, 3)
	if cardID[0] == 'b' {
		g.Players[0].Position = 11 // community fund, deck B
		g.EventDeckB = forceTop(g.EventDeckB, cardID)
	} else {
		g.Players[0].Position = 3 // chance, deck A
		g.EventDeckA = forceTop(g.EventDeckA, cardID)
	}
	g.Phase = PhaseAction
	return g, board
}

// forceTop moves cardID to the front of the deck.
func forceTop(deck []string, cardID string) []string {
	out := []string{cardID}
	for _, id := range deck {
		if id != cardID {
			out = append(out, id)
		}
	}
	return out
}

func TestDrawRotatesDeck(t *testing.T) {
	g, board := setupCardGame(t, "a-dividend")
	before := append([]string(nil), g.EventDeckA...)

	next := mustApply(t, g, board, "a", Action{Type: ActionDrawCard})

	if next.CurrentCardID != "a-dividend" {
		t.Fatalf("expected to draw a-dividend, got %q", next.CurrentCardID)
	}
	if next.Phase != PhaseAction {
		t.Fatalf("drawn card awaits resolution in ACTION, got %s", next.Phase)
	}
	if len(next.EventDeckA) != len(before) {
		t.Fatalf("deck must not shrink: %d vs %d", len(next.EventDeckA), len(before))
	}
	if next.EventDeckA[len(next.EventDeckA)-1] != "a-dividend" {
		t.Fatalf("drawn card must rotate to the bottom, deck %v", next.EventDeckA)
	}
}

func TestSecondDrawRejected(t *testing.T) {
	g, board := setupCardGame(t, "a-dividend")
	next := mustApply(t, g, board, "a", Action{Type: ActionDrawCard})

	expectReject(t, next, board, "a", Action{Type: ActionDrawCard})
}

// A drawn card must be resolved before the turn can close; cheap tax or
// rent payments do not buy a way around it.
func TestPendingCardBlocksOtherActions(t *testing.T) {
	g, board := setupCardGame(t, "a-jail")
	next := mustApply(t, g, board, "a", Action{Type: ActionDrawCard})

	expectReject(t, next, board, "a", Action{Type: ActionPayTax, Amount: 1})
	expectReject(t, next, board, "a", Action{Type: ActionPayRent, TileID: "harbor-lane"})
	expectReject(t, next, board, "a", Action{Type: ActionSkipBuy})
	if next.Phase != PhaseAction || next.CurrentCardID != "a-jail" {
		t.Fatalf("rejected moves must leave the card pending, phase %s card %q", next.Phase, next.CurrentCardID)
	}

	res := mustApply(t, next, board, "a", Action{Type: ActionResolveCard})
	if !res.PlayerByID("a").InJail {
		t.Fatalf("the pending card still applies once resolved")
	}
}

func TestDrawOffEventTileRejected(t *testing.T) {
	board := DefaultBoard()
	g := newTestGame(t, 42, 2)
	g.Players[0].Position = 1
	g.Phase = PhaseAction

	expectReject(t, g, board, "a", Action{Type: ActionDrawCard})
}

func TestResolveWithoutDrawRejected(t *testing.T) {
	board := DefaultBoard()
	g := newTestGame(t, 42, 2)
	g.Phase = PhaseAction

	expectReject(t, g, board, "a", Action{Type: ActionResolveCard})
}

// drawAndResolve runs the two-step card flow and returns the final state.
func drawAndResolve(t *testing.T, g *GameState, board *Board) *GameState {
	t.Helper()
	next := mustApply(t, g, board, "a", Action{Type: ActionDrawCard})
	next = mustApply(t, next, board, "a", Action{Type: ActionResolveCard})
	if next.CurrentCardID != "" {
		t.Fatalf("resolution must clear the pending card")
	}
	if next.Phase != PhaseEndTurn {
		t.Fatalf("resolution must close the turn, got %s", next.Phase)
	}
	return next
}

func TestResolveBalanceCard(t *testing.T) {
	g, board := setupCardGame(t, "a-dividend")
	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Balance; got != 1550 {
		t.Fatalf("expected balance 1550 after dividend, got %d", got)
	}
}

func TestResolveDebitCardCanBankrupt(t *testing.T) {
	g, board := setupCardGame(t, "b-doctor") // pay 50
	g.Players[0].Balance = 30

	next := drawAndResolve(t, g, board)

	p := next.PlayerByID("a")
	if p.Active {
		t.Fatalf("unpayable card must sweep the player bankrupt")
	}
	if p.Balance != 0 {
		t.Fatalf("swept player must be zeroed, got %d", p.Balance)
	}
}

// Card moves relocate without a second landing resolution: landing on an
// owned tile via a card charges nothing.
func TestResolveMoveCardNoLandingEffects(t *testing.T) {
	g, board := setupCardGame(t, "a-advance") // +3 from position 3 -> 6 (jail, visiting)
	g.Players[1].Properties = []string{"cannery-way"}

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Position; got != 6 {
		t.Fatalf("expected position 6 after advance, got %d", got)
	}
	if next.PlayerByID("a").InJail {
		t.Fatalf("moving onto the jail tile is just visiting")
	}
	if next.PlayerByID("a").Balance != 1500 || next.PlayerByID("b").Balance != 1500 {
		t.Fatalf("card moves must not trigger rent")
	}
}

func TestResolveRetreatCard(t *testing.T) {
	g, board := setupCardGame(t, "a-retreat") // -2 from position 3 -> 1

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Position; got != 1 {
		t.Fatalf("expected position 1 after retreat, got %d", got)
	}
	if next.PlayerByID("a").Balance != 1500 {
		t.Fatalf("backward move must not pay the start bonus")
	}
}

func TestResolveMoveToNamedTile(t *testing.T) {
	g, board := setupCardGame(t, "a-promenade")

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Position; got != 23 {
		t.Fatalf("expected position 23, got %d", got)
	}
}

func TestResolveMoveToStartPaysBonus(t *testing.T) {
	g, board := setupCardGame(t, "b-start")

	next := drawAndResolve(t, g, board)

	p := next.PlayerByID("a")
	if p.Position != 0 {
		t.Fatalf("expected position 0, got %d", p.Position)
	}
	if p.Balance != 1500+StartBonus {
		t.Fatalf("advancing to start travels forward past it, balance %d", p.Balance)
	}
}

func TestResolveNearestUnownedCard(t *testing.T) {
	g, board := setupCardGame(t, "a-frontier")
	// Positions 4 and 5 hold the closest properties to chance-1; own them
	// both so the search must continue to foundry-ave at 7.
	g.Players[1].Properties = []string{"market-row", "cannery-way"}

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Position; got != 7 {
		t.Fatalf("expected nearest unowned at position 7, got %d", got)
	}
}

func TestResolveNearestUnownedAllOwnedStaysPut(t *testing.T) {
	g, board := setupCardGame(t, "a-frontier")
	var all []string
	for _, tile := range board.Tiles {
		if tile.Type == TileProperty {
			all = append(all, tile.ID)
		}
	}
	g.Players[1].Properties = all

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Position; got != 3 {
		t.Fatalf("with every property owned the player stays put, got %d", got)
	}
}

func TestResolveGoToJailCard(t *testing.T) {
	g, board := setupCardGame(t, "a-jail")

	next := drawAndResolve(t, g, board)

	p := next.PlayerByID("a")
	if !p.InJail || p.Position != board.JailPosition() {
		t.Fatalf("expected jail relocation, got position %d inJail %v", p.Position, p.InJail)
	}
}

func TestResolveJailCardGrant(t *testing.T) {
	g, board := setupCardGame(t, "a-pardon")

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").GetOutOfJailCards; got != 1 {
		t.Fatalf("expected one jail card held, got %d", got)
	}
}

func TestResolveCollectEach(t *testing.T) {
	g, board := setupCardGame(t, "b-birthday") // collect 10 each

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Balance; got != 1520 {
		t.Fatalf("expected 1520 after collecting from two players, got %d", got)
	}
	if next.PlayerByID("b").Balance != 1490 || next.PlayerByID("c").Balance != 1490 {
		t.Fatalf("each other player pays 10: b=%d c=%d", next.PlayerByID("b").Balance, next.PlayerByID("c").Balance)
	}
}

// Paying each player drains the actor in seating order: earlier players
// collect in full before the pocket runs dry, the shortfall is forgiven,
// and the payer keeps playing at zero.
func TestResolvePayEachCapsAtBalance(t *testing.T) {
	g, board := setupCardGame(t, "b-chairman") // pay 25 each
	g.Players[0].Balance = 30

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("b").Balance; got != 1525 {
		t.Fatalf("first creditor collects in full, got %d", got)
	}
	if got := next.PlayerByID("c").Balance; got != 1505 {
		t.Fatalf("second creditor collects the remaining 5, got %d", got)
	}
	p := next.PlayerByID("a")
	if !p.Active || p.Balance != 0 {
		t.Fatalf("drained payer stays in the game at zero, got balance %d active %v", p.Balance, p.Active)
	}
}

// A collection card charges each payer at most what they hold; nobody
// is bankrupted over a card.
func TestResolveCollectEachCapsAtPayerBalance(t *testing.T) {
	g, board := setupCardGame(t, "b-birthday") // collect 10 each
	g.Players[1].Balance = 4

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Balance; got != 1514 {
		t.Fatalf("actor collects 4 + 10, got %d", got)
	}
	b := next.PlayerByID("b")
	if !b.Active || b.Balance != 0 {
		t.Fatalf("short payer stays in the game at zero, got balance %d active %v", b.Balance, b.Active)
	}
	if got := next.PlayerByID("c").Balance; got != 1490 {
		t.Fatalf("solvent payer pays in full, got %d", got)
	}
}

func TestCollectEachSkipsInactive(t *testing.T) {
	g, board := setupCardGame(t, "b-birthday")
	g.Players[2].Active = false
	g.Players[2].Balance = 0

	next := drawAndResolve(t, g, board)

	if got := next.PlayerByID("a").Balance; got != 1510 {
		t.Fatalf("only active players pay, got %d", got)
	}
	if next.PlayerByID("c").Balance != 0 {
		t.Fatalf("inactive players must not be charged")
	}
}
