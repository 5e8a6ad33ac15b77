package engine

import "fmt"

// Apply validates act for actorID and, if legal, applies it to a deep
// copy of the state. The receiver is never modified: on success the new
// state is returned, on rejection the receiver remains the authoritative
// state and the error explains why.
//
// After every successful application the bankruptcy sweep runs, so a
// returned state never contains an active player with a negative balance.
func (g *GameState) Apply(board *Board, actorID string, act Action) (*GameState, error) {
	if err := Validate(g, board, actorID, act); err != nil {
		return nil, err
	}

	next := g.Clone()
	var err error
	switch act.Type {
	case ActionRollDice:
		err = next.applyRoll(board)
	case ActionBuyProperty:
		err = next.applyBuy(board, act)
	case ActionSkipBuy:
		next.advanceTurn()
	case ActionPayRent:
		err = next.applyPayRent(board, act)
	case ActionPayTax:
		err = next.applyPayTax(board, act)
	case ActionDrawCard:
		err = next.applyDrawCard(board)
	case ActionResolveCard:
		err = next.applyResolveCard(board)
	case ActionUseJailCard:
		next.applyUseJailCard()
	case ActionEndTurn:
		next.advanceTurn()
	case ActionDeclareBankruptcy:
		next.applyBankruptcy(actorID)
	case ActionProposeTrade:
		next.applyProposeTrade(act)
	case ActionAcceptTrade:
		err = next.applyAcceptTrade(act)
	case ActionDeclineTrade:
		next.applyCloseTrade(act.TradeID, TradeDeclined)
	case ActionCancelTrade:
		next.applyCloseTrade(act.TradeID, TradeCancelled)
	default:
		err = fmt.Errorf("unhandled action type %q", act.Type)
	}
	if err != nil {
		return nil, err
	}

	next.sweepBankrupt()
	return next, nil
}

// applyRoll rolls two dice, handles jail, moves the player, and resolves
// the landed tile into the next phase.
func (g *GameState) applyRoll(board *Board) error {
	d1, d2 := g.rollDie(), g.rollDie()
	g.DiceRoll = []int{d1, d2}
	p := g.CurrentPlayer()

	if p.InJail {
		if d1 == d2 {
			p.InJail = false
			p.JailTurns = 0
		} else {
			p.JailTurns++
			if p.JailTurns >= MaxJailTurns {
				// Forced release: pay the fee and move on the roll.
				p.Balance -= JailReleaseFee
				p.InJail = false
				p.JailTurns = 0
			} else {
				g.Phase = PhaseEndTurn
				return nil
			}
		}
	}

	g.movePlayer(board, p, d1+d2)
	g.resolveLanding(board, p)
	return nil
}

// movePlayer moves p by steps tiles (negative steps move backward) and
// credits the start bonus on a forward pass over the start tile. The
// pass is detected by the position wrapping to a numerically smaller
// value, so backward moves never earn it.
func (g *GameState) movePlayer(board *Board, p *PlayerState, steps int) {
	size := board.Size()
	if size == 0 {
		return
	}
	old := p.Position
	p.Position = ((old+steps)%size + size) % size
	if steps > 0 && p.Position < old {
		p.Balance += StartBonus
	}
}

// movePlayerTo moves p forward to the given position, traveling the
// cyclic distance so the start bonus applies on the way.
func (g *GameState) movePlayerTo(board *Board, p *PlayerState, position int) {
	size := board.Size()
	if size == 0 {
		return
	}
	dist := ((position-p.Position)%size + size) % size
	if dist == 0 {
		return
	}
	g.movePlayer(board, p, dist)
}

// resolveLanding inspects the tile under p and decides the next phase.
// Rent is charged here automatically; buy, tax and card decisions are
// deferred to an explicit follow-up action in the ACTION phase.
func (g *GameState) resolveLanding(board *Board, p *PlayerState) {
	tile := board.TileAt(p.Position)
	if tile == nil {
		g.Phase = PhaseEndTurn
		return
	}

	switch tile.Type {
	case TileProperty:
		owner := g.OwnerOf(tile.ID)
		switch {
		case owner == nil:
			g.Phase = PhaseAction // buy or skip
		case owner.ID == p.ID:
			g.Phase = PhaseEndTurn
		case owner.Active:
			g.transferCapped(p, owner, tile.Rent)
			g.Phase = PhaseEndTurn
		default:
			// Tiles held by a bankrupt player collect no rent.
			g.Phase = PhaseEndTurn
		}
	case TileTax:
		g.Phase = PhaseAction // awaiting PAY_TAX
	case TileChance:
		g.Phase = PhaseAction // awaiting DRAW_CARD
	case TileGoToJail:
		g.sendToJail(board, p)
		g.Phase = PhaseEndTurn
	default:
		g.Phase = PhaseEndTurn
	}
}

// transferCapped debits from by the full amount and credits to with at
// most from's pre-debit balance. The debtor may go negative; the
// bankruptcy sweep settles that after the apply completes.
func (g *GameState) transferCapped(from, to *PlayerState, amount int) {
	paid := amount
	if from.Balance < paid {
		paid = from.Balance
	}
	if paid < 0 {
		paid = 0
	}
	from.Balance -= amount
	to.Balance += paid
}

// transferAvailable moves at most from's current balance. Unlike rent,
// the shortfall stays unpaid and the payer never goes negative.
func (g *GameState) transferAvailable(from, to *PlayerState, amount int) {
	paid := amount
	if from.Balance < paid {
		paid = from.Balance
	}
	if paid < 0 {
		paid = 0
	}
	from.Balance -= paid
	to.Balance += paid
}

// sendToJail relocates p to the jail tile and flags the stay.
func (g *GameState) sendToJail(board *Board, p *PlayerState) {
	p.Position = board.JailPosition()
	p.InJail = true
	p.JailTurns = 0
}

// applyBuy transfers an unowned property to the current player. The
// ownership and balance checks repeat here so a stale call can never
// corrupt the books.
func (g *GameState) applyBuy(board *Board, act Action) error {
	tile := board.TileByID(act.TileID)
	if tile == nil || tile.Type != TileProperty {
		return reject("tile %q is not purchasable", act.TileID)
	}
	if g.OwnerOf(tile.ID) != nil {
		return reject("tile %q is already owned", act.TileID)
	}
	p := g.CurrentPlayer()
	if p.Balance < tile.Price {
		return reject("insufficient balance to buy %q", act.TileID)
	}
	p.Balance -= tile.Price
	p.Properties = append(p.Properties, tile.ID)
	g.advanceTurn()
	return nil
}

// applyPayRent settles an explicit rent payment to the tile's owner.
// The tile's configured rent is authoritative, not the submitted amount.
func (g *GameState) applyPayRent(board *Board, act Action) error {
	tile := board.TileByID(act.TileID)
	if tile == nil {
		return reject("unknown tile %q", act.TileID)
	}
	owner := g.OwnerOf(tile.ID)
	p := g.CurrentPlayer()
	if owner == nil || owner.ID == p.ID {
		return reject("no rent due on tile %q", act.TileID)
	}
	if owner.Active {
		g.transferCapped(p, owner, tile.Rent)
	}
	g.Phase = PhaseEndTurn
	return nil
}

// applyPayTax debits the tax configured on the occupied tile. A tax
// amount from the action is honored only when the tile carries none.
func (g *GameState) applyPayTax(board *Board, act Action) error {
	p := g.CurrentPlayer()
	amount := act.Amount
	if tile := board.TileAt(p.Position); tile != nil && tile.Type == TileTax && tile.TaxAmount > 0 {
		amount = tile.TaxAmount
	}
	if amount <= 0 {
		return reject("no tax due here")
	}
	p.Balance -= amount
	g.Phase = PhaseEndTurn
	return nil
}

// applyDrawCard rotates the top card off the deck for the occupied
// event tile and parks it as the pending card. The game stays in ACTION
// until the card is resolved.
func (g *GameState) applyDrawCard(board *Board) error {
	p := g.CurrentPlayer()
	tile := board.TileAt(p.Position)
	if tile == nil || tile.Type != TileChance {
		return reject("not on an event tile")
	}
	var id string
	switch tile.Deck {
	case "B":
		id, g.EventDeckB = drawFromDeck(g.EventDeckB)
	default:
		id, g.EventDeckA = drawFromDeck(g.EventDeckA)
	}
	if id == "" {
		return reject("event deck is empty")
	}
	g.CurrentCardID = id
	return nil
}

// applyResolveCard applies the pending card's effect to the current
// player and closes the turn. Card moves relocate without triggering a
// second landing resolution.
func (g *GameState) applyResolveCard(board *Board) error {
	card, ok := CardByID(g.CurrentCardID)
	if !ok {
		return reject("unknown card %q", g.CurrentCardID)
	}
	g.CurrentCardID = ""
	p := g.CurrentPlayer()

	switch card.Effect {
	case EffectBalance:
		p.Balance += card.Amount
	case EffectMove:
		g.movePlayer(board, p, card.Steps)
	case EffectMoveTo:
		if card.TileID != "" {
			if tile := board.TileByID(card.TileID); tile != nil {
				g.movePlayerTo(board, p, tile.Position)
			}
		} else if tile := board.NearestUnownedProperty(g, p.Position); tile != nil {
			g.movePlayerTo(board, p, tile.Position)
		}
	case EffectGoToJail:
		g.sendToJail(board, p)
	case EffectJailCard:
		p.GetOutOfJailCards++
	case EffectCollectEach:
		g.applyCollectEach(p, card.Amount)
	}

	g.Phase = PhaseEndTurn
	return nil
}

// applyCollectEach moves amount between the actor and every other active
// player. Positive amounts collect, negative amounts pay out. Each leg
// is capped at the debtor's balance at that moment and the shortfall is
// forgiven, so a shallow pocket pays earlier seats in full, runs dry,
// and is never driven into bankruptcy by the card.
func (g *GameState) applyCollectEach(actor *PlayerState, amount int) {
	for i := range g.Players {
		other := &g.Players[i]
		if other.ID == actor.ID || !other.Active {
			continue
		}
		if amount > 0 {
			g.transferAvailable(other, actor, amount)
		} else {
			g.transferAvailable(actor, other, -amount)
		}
	}
}

// applyUseJailCard spends one get-out-of-jail card and restores the
// turn to a clean ROLL so the release roll moves normally.
func (g *GameState) applyUseJailCard() {
	p := g.CurrentPlayer()
	p.GetOutOfJailCards--
	p.InJail = false
	p.JailTurns = 0
	g.DiceRoll = nil
	g.Phase = PhaseRoll
}

// applyBankruptcy voluntarily retires a player: balance zeroed,
// properties returned to the bank. If the quitter held the turn, the
// turn is handed over immediately.
func (g *GameState) applyBankruptcy(actorID string) {
	p := g.PlayerByID(actorID)
	p.Active = false
	p.Balance = 0
	p.Properties = []string{}
	if g.CurrentPlayer().ID == actorID {
		g.Phase = PhaseEndTurn
	}
}

// applyProposeTrade records the proposal as PENDING and parks the game
// until the counterpart responds.
func (g *GameState) applyProposeTrade(act Action) {
	t := *act.Trade
	t.Status = TradePending
	t.OfferedTiles = append([]string(nil), act.Trade.OfferedTiles...)
	t.RequestedTiles = append([]string(nil), act.Trade.RequestedTiles...)
	if t.ID == "" {
		t.ID = fmt.Sprintf("trade-%x", g.nextRand())
	}
	g.TradeProposals = append(g.TradeProposals, t)
	g.Phase = PhaseAwaitingTrade
}

// applyAcceptTrade settles an accepted proposal: every exchanged tile
// and both cash legs move in one step. The validity re-check repeats
// here so a stale accept can never half-apply.
func (g *GameState) applyAcceptTrade(act Action) error {
	t := g.TradeByID(act.TradeID)
	if err := verifyTradeStillValid(g, t); err != nil {
		return err
	}
	from := g.PlayerByID(t.FromPlayerID)
	to := g.PlayerByID(t.ToPlayerID)

	for _, tileID := range t.OfferedTiles {
		from.removeTile(tileID)
		to.Properties = append(to.Properties, tileID)
	}
	for _, tileID := range t.RequestedTiles {
		to.removeTile(tileID)
		from.Properties = append(from.Properties, tileID)
	}
	from.Balance += t.RequestedCash - t.OfferedCash
	to.Balance += t.OfferedCash - t.RequestedCash

	t.Status = TradeAccepted
	g.Phase = PhaseEndTurn
	return nil
}

// applyCloseTrade marks a pending proposal declined or cancelled and
// unparks the proposer's turn if the trade was holding it.
func (g *GameState) applyCloseTrade(tradeID string, status TradeStatus) {
	t := g.TradeByID(tradeID)
	t.Status = status
	if g.Phase == PhaseAwaitingTrade {
		g.Phase = PhaseEndTurn
	}
}

// sweepBankrupt retires every active player whose balance went negative
// during the apply. Properties return to the bank unowned.
func (g *GameState) sweepBankrupt() {
	for i := range g.Players {
		p := &g.Players[i]
		if p.Active && p.Balance < 0 {
			p.Active = false
			p.Balance = 0
			p.Properties = []string{}
		}
	}
}
