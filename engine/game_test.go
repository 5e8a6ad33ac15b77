package engine

import (
	"encoding/json"
	"testing"
)

// newTestGame builds a symmetric n-player game with the default board
// and a fixed seed.
func newTestGame(t *testing.T, seed uint64, n int) *GameState {
	t.Helper()
	players := make([]PlayerSeed, n)
	for i := range players {
		players[i] = PlayerSeed{ID: playerID(i), UserID: "user-" + playerID(i)}
	}
	return NewGame(seed, players, DefaultConfig())
}

func playerID(i int) string {
	return string(rune('a' + i))
}

func TestNewGameDefaults(t *testing.T) {
	g := newTestGame(t, 42, 3)

	if g.Phase != PhaseRoll {
		t.Fatalf("expected initial phase ROLL, got %s", g.Phase)
	}
	if g.TurnNumber != 1 {
		t.Fatalf("expected turn 1, got %d", g.TurnNumber)
	}
	if g.MinTurnsBeforeEnd != 3 {
		t.Fatalf("expected min turns raised to player count 3, got %d", g.MinTurnsBeforeEnd)
	}
	for i := range g.Players {
		p := &g.Players[i]
		if p.Balance != 1500 {
			t.Errorf("player %s: expected balance 1500, got %d", p.ID, p.Balance)
		}
		if !p.Active || p.Position != 0 || len(p.Properties) != 0 {
			t.Errorf("player %s: unexpected initial state %+v", p.ID, p)
		}
	}
	if len(g.EventDeckA) != len(DeckACardIDs()) {
		t.Fatalf("deck A: expected %d cards, got %d", len(DeckACardIDs()), len(g.EventDeckA))
	}
	if len(g.EventDeckB) != len(DeckBCardIDs()) {
		t.Fatalf("deck B: expected %d cards, got %d", len(DeckBCardIDs()), len(g.EventDeckB))
	}
}

func TestNewGameShuffleContainsAllCards(t *testing.T) {
	g := newTestGame(t, 7, 2)
	seen := map[string]bool{}
	for _, id := range g.EventDeckA {
		seen[id] = true
	}
	for _, id := range DeckACardIDs() {
		if !seen[id] {
			t.Fatalf("deck A missing card %q after shuffle", id)
		}
	}
}

func TestNewGameDeterministic(t *testing.T) {
	a := newTestGame(t, 99, 4)
	b := newTestGame(t, 99, 4)

	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatalf("same seed produced different initial states")
	}

	c := newTestGame(t, 100, 4)
	jc, _ := json.Marshal(c)
	if string(ja) == string(jc) {
		t.Fatalf("different seeds produced identical initial states")
	}
}

func TestZeroSeedCorrected(t *testing.T) {
	g := newTestGame(t, 0, 2)
	if g.RNG == 0 {
		t.Fatalf("zero seed must be corrected, xorshift would stick at 0")
	}
	first := g.rollDie()
	if first < 1 || first > 6 {
		t.Fatalf("die out of range: %d", first)
	}
}

// A serialize/deserialize round trip must replay identically: the RNG
// travels with the state.
func TestRoundTripReplaysIdentically(t *testing.T) {
	board := DefaultBoard()
	g := newTestGame(t, 1234, 2)

	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored GameState
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	next1, err := g.Apply(board, "a", Action{Type: ActionRollDice})
	if err != nil {
		t.Fatalf("roll on original: %v", err)
	}
	next2, err := restored.Apply(board, "a", Action{Type: ActionRollDice})
	if err != nil {
		t.Fatalf("roll on restored: %v", err)
	}
	if next1.DiceRoll[0] != next2.DiceRoll[0] || next1.DiceRoll[1] != next2.DiceRoll[1] {
		t.Fatalf("replay diverged: %v vs %v", next1.DiceRoll, next2.DiceRoll)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := newTestGame(t, 5, 2)
	g.Players[0].Properties = []string{"harbor-lane"}
	g.TradeProposals = []TradeProposal{{ID: "t1", OfferedTiles: []string{"harbor-lane"}, Status: TradePending}}

	c := g.Clone()
	c.Players[0].Properties[0] = "dock-street"
	c.Players[0].Balance = 0
	c.TradeProposals[0].OfferedTiles[0] = "dock-street"
	c.EventDeckA[0] = "mutated"

	if g.Players[0].Properties[0] != "harbor-lane" {
		t.Errorf("clone shared the properties slice")
	}
	if g.Players[0].Balance != 1500 {
		t.Errorf("clone shared player structs")
	}
	if g.TradeProposals[0].OfferedTiles[0] != "harbor-lane" {
		t.Errorf("clone shared trade tile slices")
	}
	if g.EventDeckA[0] == "mutated" {
		t.Errorf("clone shared the event deck")
	}
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	board := DefaultBoard()
	g := newTestGame(t, 42, 2)
	before, _ := json.Marshal(g)

	if _, err := g.Apply(board, "a", Action{Type: ActionRollDice}); err != nil {
		t.Fatalf("roll: %v", err)
	}

	after, _ := json.Marshal(g)
	if string(before) != string(after) {
		t.Fatalf("Apply mutated its receiver")
	}
}
