package engine

// CardEffect classifies what resolving an event card does. A card applies
// exactly one effect.
type CardEffect string

const (
	EffectBalance     CardEffect = "BALANCE"      // credit or debit the actor
	EffectMove        CardEffect = "MOVE"         // relative move, pass-start bonus applies
	EffectMoveTo      CardEffect = "MOVE_TO"      // named tile, or nearest unowned property when TileID is empty
	EffectGoToJail    CardEffect = "GO_TO_JAIL"   // immediate relocation, jail flag set
	EffectJailCard    CardEffect = "JAIL_CARD"    // grant one get-out-of-jail card
	EffectCollectEach CardEffect = "COLLECT_EACH" // per-player transfer; sign of Amount picks direction
)

// CardDef is a static event card definition, looked up by id.
type CardDef struct {
	ID     string     `json:"id"`
	Text   string     `json:"text"`
	Effect CardEffect `json:"effect"`
	Amount int        `json:"amount,omitempty"` // balance delta or per-player amount
	Steps  int        `json:"steps,omitempty"`  // relative move distance (may be negative)
	TileID string     `json:"tileId,omitempty"` // MOVE_TO destination; empty = nearest unowned
}

// cardRegistry holds every card definition keyed by id. Definitions are
// static; decks only rotate ids.
var cardRegistry = map[string]CardDef{
	"a-dividend":     {ID: "a-dividend", Text: "Bank pays you a dividend of 50", Effect: EffectBalance, Amount: 50},
	"a-fine":         {ID: "a-fine", Text: "Speeding fine, pay 15", Effect: EffectBalance, Amount: -15},
	"a-advance":      {ID: "a-advance", Text: "Advance three tiles", Effect: EffectMove, Steps: 3},
	"a-retreat":      {ID: "a-retreat", Text: "Go back two tiles", Effect: EffectMove, Steps: -2},
	"a-frontier":     {ID: "a-frontier", Text: "Advance to the nearest unowned property", Effect: EffectMoveTo},
	"a-promenade":    {ID: "a-promenade", Text: "Take a walk on Regent Promenade", Effect: EffectMoveTo, TileID: "regent-promenade"},
	"a-jail":         {ID: "a-jail", Text: "Go directly to jail", Effect: EffectGoToJail},
	"a-pardon":       {ID: "a-pardon", Text: "Get out of jail free", Effect: EffectJailCard},
	"b-birthday":     {ID: "b-birthday", Text: "It is your birthday, collect 10 from every player", Effect: EffectCollectEach, Amount: 10},
	"b-chairman":     {ID: "b-chairman", Text: "Elected chairman, pay each player 25", Effect: EffectCollectEach, Amount: -25},
	"b-inheritance":  {ID: "b-inheritance", Text: "You inherit 100", Effect: EffectBalance, Amount: 100},
	"b-doctor":       {ID: "b-doctor", Text: "Doctor's fees, pay 50", Effect: EffectBalance, Amount: -50},
	"b-repairs":      {ID: "b-repairs", Text: "Street repairs, pay 40", Effect: EffectBalance, Amount: -40},
	"b-start":        {ID: "b-start", Text: "Advance to Start", Effect: EffectMoveTo, TileID: "start"},
	"b-jail":         {ID: "b-jail", Text: "Go directly to jail", Effect: EffectGoToJail},
	"b-pardon":       {ID: "b-pardon", Text: "Get out of jail free", Effect: EffectJailCard},
}

// CardByID looks up a card definition. The second return is false for an
// unknown id.
func CardByID(id string) (CardDef, bool) {
	c, ok := cardRegistry[id]
	return c, ok
}

// DeckACardIDs returns the fixed id set for event deck A.
func DeckACardIDs() []string {
	return []string{"a-dividend", "a-fine", "a-advance", "a-retreat", "a-frontier", "a-promenade", "a-jail", "a-pardon"}
}

// DeckBCardIDs returns the fixed id set for event deck B.
func DeckBCardIDs() []string {
	return []string{"b-birthday", "b-chairman", "b-inheritance", "b-doctor", "b-repairs", "b-start", "b-jail", "b-pardon"}
}

// drawFromDeck removes the top id and re-appends it at the bottom, so
// decks never run out, they only rotate. Returns the drawn id and the
// rotated deck; the input slice is not modified.
func drawFromDeck(deck []string) (string, []string) {
	if len(deck) == 0 {
		return "", deck
	}
	top := deck[0]
	rotated := make([]string, 0, len(deck))
	rotated = append(rotated, deck[1:]...)
	rotated = append(rotated, top)
	return top, rotated
}
