package engine

import "fmt"

// Phase identifies which step of a turn the game is waiting on.
// Exactly one phase is active at a time.
type Phase string

const (
	PhaseRoll          Phase = "ROLL"
	PhaseAction        Phase = "ACTION"
	PhaseEndTurn       Phase = "END_TURN"
	PhaseAwaitingTrade Phase = "AWAITING_TRADE_RESPONSE"
)

// ActionType identifies a player action submitted to the engine.
type ActionType string

const (
	ActionRollDice          ActionType = "ROLL_DICE"
	ActionEndTurn           ActionType = "END_TURN"
	ActionBuyProperty       ActionType = "BUY_PROPERTY"
	ActionSkipBuy           ActionType = "SKIP_BUY"
	ActionPayRent           ActionType = "PAY_RENT"
	ActionPayTax            ActionType = "PAY_TAX"
	ActionDrawCard          ActionType = "DRAW_CARD"
	ActionResolveCard       ActionType = "RESOLVE_CARD"
	ActionUseJailCard       ActionType = "USE_JAIL_CARD"
	ActionDeclareBankruptcy ActionType = "DECLARE_BANKRUPTCY"
	ActionProposeTrade      ActionType = "PROPOSE_TRADE"
	ActionAcceptTrade       ActionType = "ACCEPT_TRADE"
	ActionDeclineTrade      ActionType = "DECLINE_TRADE"
	ActionCancelTrade       ActionType = "CANCEL_TRADE"
)

// Action is the tagged variant carried over the wire and into the engine.
// Only the fields relevant to the Type are set.
type Action struct {
	Type    ActionType     `json:"type"`
	TileID  string         `json:"tileId,omitempty"`
	Amount  int            `json:"amount,omitempty"`
	TradeID string         `json:"tradeId,omitempty"`
	Trade   *TradeProposal `json:"trade,omitempty"`
}

// TradeStatus is a one-way transition from PENDING only.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeAccepted  TradeStatus = "ACCEPTED"
	TradeDeclined  TradeStatus = "DECLINED"
	TradeCancelled TradeStatus = "CANCELLED"
)

// TradeProposal describes an exchange of tiles and cash between two players.
// It is immutable once it leaves PENDING.
type TradeProposal struct {
	ID             string      `json:"id"`
	FromPlayerID   string      `json:"fromPlayerId"`
	ToPlayerID     string      `json:"toPlayerId"`
	OfferedTiles   []string    `json:"offeredTiles"`
	RequestedTiles []string    `json:"requestedTiles"`
	OfferedCash    int         `json:"offeredCash"`
	RequestedCash  int         `json:"requestedCash"`
	Status         TradeStatus `json:"status"`
}

// PlayerState holds one participant's position in the game.
// Balance may transiently go negative inside an apply; the bankruptcy
// sweep resolves it before the state is returned.
type PlayerState struct {
	ID                string   `json:"id"`
	UserID            string   `json:"userId"`
	Position          int      `json:"position"`
	Balance           int      `json:"balance"`
	Properties        []string `json:"properties"`
	InJail            bool     `json:"inJail"`
	JailTurns         int      `json:"jailTurns"`
	Active            bool     `json:"active"`
	GetOutOfJailCards int      `json:"getOutOfJailCards"`
}

// OwnsTile reports whether the player currently holds the given tile.
func (p *PlayerState) OwnsTile(tileID string) bool {
	for _, id := range p.Properties {
		if id == tileID {
			return true
		}
	}
	return false
}

// removeTile drops tileID from the player's property set, if present.
func (p *PlayerState) removeTile(tileID string) {
	for i, id := range p.Properties {
		if id == tileID {
			p.Properties = append(p.Properties[:i], p.Properties[i+1:]...)
			return
		}
	}
}

// GameState is the complete, self-contained state of one game.
// Every Apply call produces a structurally independent copy; old and new
// states never share mutable substructures.
type GameState struct {
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	Players            []PlayerState   `json:"players"`
	DiceRoll           []int           `json:"diceRoll,omitempty"` // nil or exactly two values in [1,6]
	Phase              Phase           `json:"phase"`
	TurnNumber         int             `json:"turnNumber"`
	TurnLimit          int             `json:"turnLimit"`
	MinTurnsBeforeEnd  int             `json:"minTurnsBeforeEnd"`
	CurrentCardID      string          `json:"currentCardId,omitempty"`
	TradeProposals     []TradeProposal `json:"tradeProposals"`
	EventDeckA         []string        `json:"eventDeckA"`
	EventDeckB         []string        `json:"eventDeckB"`
	GameEnded          bool            `json:"gameEnded"`
	WinnerID           string          `json:"winnerId,omitempty"`
	WinnerNetWorth     int             `json:"winnerNetWorth,omitempty"`
	EndReason          string          `json:"endReason,omitempty"`
	RNG                uint64          `json:"rng"`
}

// CurrentPlayer returns the player at CurrentPlayerIndex.
func (g *GameState) CurrentPlayer() *PlayerState {
	return &g.Players[g.CurrentPlayerIndex]
}

// PlayerByID returns the player with the given per-game id, or nil.
func (g *GameState) PlayerByID(id string) *PlayerState {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// OwnerOf returns the player owning tileID, or nil if the tile is unowned.
// At most one player can own a tile; the first match is authoritative.
func (g *GameState) OwnerOf(tileID string) *PlayerState {
	for i := range g.Players {
		if g.Players[i].OwnsTile(tileID) {
			return &g.Players[i]
		}
	}
	return nil
}

// ActivePlayerCount returns the number of players still in the game.
func (g *GameState) ActivePlayerCount() int {
	n := 0
	for i := range g.Players {
		if g.Players[i].Active {
			n++
		}
	}
	return n
}

// TradeByID returns the proposal with the given id, or nil.
func (g *GameState) TradeByID(id string) *TradeProposal {
	for i := range g.TradeProposals {
		if g.TradeProposals[i].ID == id {
			return &g.TradeProposals[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the game state. No slice is shared with
// the receiver.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Players = make([]PlayerState, len(g.Players))
	for i := range g.Players {
		c.Players[i] = g.Players[i]
		c.Players[i].Properties = append([]string(nil), g.Players[i].Properties...)
	}
	if g.DiceRoll != nil {
		c.DiceRoll = append([]int(nil), g.DiceRoll...)
	}
	c.TradeProposals = make([]TradeProposal, len(g.TradeProposals))
	for i := range g.TradeProposals {
		c.TradeProposals[i] = g.TradeProposals[i]
		c.TradeProposals[i].OfferedTiles = append([]string(nil), g.TradeProposals[i].OfferedTiles...)
		c.TradeProposals[i].RequestedTiles = append([]string(nil), g.TradeProposals[i].RequestedTiles...)
	}
	c.EventDeckA = append([]string(nil), g.EventDeckA...)
	c.EventDeckB = append([]string(nil), g.EventDeckB...)
	return &c
}

// RejectedError signals that an action failed validation. The state is
// unchanged and the reason is safe to surface to the initiator.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

// reject builds a RejectedError with a formatted reason.
func reject(format string, args ...interface{}) *RejectedError {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err is a validation rejection.
func IsRejected(err error) bool {
	_, ok := err.(*RejectedError)
	return ok
}
