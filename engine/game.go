// Package engine implements the authoritative rules for the board game:
// turn and phase progression, action validation and application, trade
// settlement, bankruptcy detection, and win-condition evaluation.
//
// The package is pure: it performs no I/O, and every state transition is
// deterministic for a given RNG seed. Callers own concurrency; Apply
// always returns a fresh copy and never mutates its input.
package engine

// Fixed economic constants shared by every game.
const (
	StartBonus     = 200 // credited when a move passes the start tile
	JailReleaseFee = 50  // forced payment after three failed jail rolls
	MaxJailTurns   = 3
)

// Config holds per-game settings fixed at creation time.
type Config struct {
	StartingBalance   int
	TurnLimit         int
	MinTurnsBeforeEnd int
}

// DefaultConfig returns the standard game settings.
func DefaultConfig() Config {
	return Config{
		StartingBalance:   1500,
		TurnLimit:         60,
		MinTurnsBeforeEnd: 0, // raised to the player count in NewGame
	}
}

// PlayerSeed identifies one participant at game creation.
type PlayerSeed struct {
	ID     string
	UserID string
}

// NewGame constructs the initial state: seeded balances, empty property
// sets, both event decks shuffled, first player to move in ROLL.
// MinTurnsBeforeEnd is raised to the player count so every player gets a
// turn before elimination can end the game.
func NewGame(seed uint64, players []PlayerSeed, cfg Config) *GameState {
	g := &GameState{
		Phase:             PhaseRoll,
		TurnNumber:        1,
		TurnLimit:         cfg.TurnLimit,
		MinTurnsBeforeEnd: cfg.MinTurnsBeforeEnd,
		TradeProposals:    []TradeProposal{},
		RNG:               seed,
	}
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	if g.MinTurnsBeforeEnd < len(players) {
		g.MinTurnsBeforeEnd = len(players)
	}

	g.Players = make([]PlayerState, len(players))
	for i, p := range players {
		g.Players[i] = PlayerState{
			ID:         p.ID,
			UserID:     p.UserID,
			Balance:    cfg.StartingBalance,
			Properties: []string{},
			Active:     true,
		}
	}

	g.EventDeckA = g.shuffledDeck(DeckACardIDs())
	g.EventDeckB = g.shuffledDeck(DeckBCardIDs())
	return g
}

// ---------------------------------------------------------------------------
// xorshift64 RNG — embedded in the state so dice and shuffles replay
// identically after a serialize/deserialize round trip.
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// rollDie returns a uniform draw in [1, 6].
func (g *GameState) rollDie() int {
	return int(g.randN(6)) + 1
}

// shuffledDeck returns a Fisher-Yates shuffled copy of ids.
func (g *GameState) shuffledDeck(ids []string) []string {
	deck := append([]string(nil), ids...)
	for i := len(deck) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
