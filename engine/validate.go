package engine

// Validate checks whether actorID may perform act against the current
// state. It returns nil when the action is legal and a *RejectedError
// with a human-readable reason otherwise. The state is never modified.
//
// Ownership and balance checks always run against the state passed in,
// which callers must ensure is the latest one for the game.
func Validate(g *GameState, board *Board, actorID string, act Action) error {
	if g.GameEnded {
		return reject("game has ended")
	}
	actor := g.PlayerByID(actorID)
	if actor == nil {
		return reject("unknown player %q", actorID)
	}

	// Bankruptcy and trade responses are addressed to specific named
	// players; everything else belongs to the player whose turn it is.
	switch act.Type {
	case ActionDeclareBankruptcy, ActionAcceptTrade, ActionDeclineTrade, ActionCancelTrade:
	default:
		if g.CurrentPlayer().ID != actorID {
			return reject("not your turn")
		}
	}

	switch act.Type {
	case ActionRollDice:
		if g.Phase != PhaseRoll {
			return reject("cannot roll in phase %s", g.Phase)
		}
		if g.DiceRoll != nil {
			return reject("dice already rolled this turn")
		}

	case ActionBuyProperty:
		if g.Phase != PhaseAction {
			return reject("cannot buy in phase %s", g.Phase)
		}
		tile := board.TileByID(act.TileID)
		if tile == nil {
			return reject("unknown tile %q", act.TileID)
		}
		if tile.Type != TileProperty {
			return reject("tile %q is not purchasable", act.TileID)
		}
		if tile.Position != actor.Position {
			return reject("you are not on tile %q", act.TileID)
		}
		if owner := g.OwnerOf(tile.ID); owner != nil {
			return reject("tile %q is already owned", act.TileID)
		}
		if actor.Balance < tile.Price {
			return reject("insufficient balance to buy %q", act.TileID)
		}

	case ActionSkipBuy:
		if g.Phase != PhaseAction {
			return reject("cannot skip in phase %s", g.Phase)
		}
		if g.CurrentCardID != "" {
			return reject("resolve the pending card first")
		}

	case ActionPayRent:
		if g.Phase != PhaseAction {
			return reject("cannot pay rent in phase %s", g.Phase)
		}
		if g.CurrentCardID != "" {
			return reject("resolve the pending card first")
		}
		tile := board.TileByID(act.TileID)
		if tile == nil {
			return reject("unknown tile %q", act.TileID)
		}
		if tile.Position != actor.Position {
			return reject("you are not on tile %q", act.TileID)
		}
		owner := g.OwnerOf(tile.ID)
		if owner == nil || owner.ID == actorID {
			return reject("no rent due on tile %q", act.TileID)
		}

	case ActionPayTax:
		if g.Phase != PhaseAction {
			return reject("cannot pay tax in phase %s", g.Phase)
		}
		if g.CurrentCardID != "" {
			return reject("resolve the pending card first")
		}
		if tile := board.TileAt(actor.Position); tile == nil || tile.Type != TileTax {
			return reject("not on a tax tile")
		}

	case ActionDrawCard:
		if g.Phase != PhaseAction {
			return reject("cannot draw a card in phase %s", g.Phase)
		}
		if g.CurrentCardID != "" {
			return reject("a card is already pending resolution")
		}
		tile := board.TileAt(actor.Position)
		if tile == nil || tile.Type != TileChance {
			return reject("not on an event tile")
		}

	case ActionResolveCard:
		if g.Phase != PhaseAction {
			return reject("cannot resolve a card in phase %s", g.Phase)
		}
		if g.CurrentCardID == "" {
			return reject("no card pending resolution")
		}

	case ActionUseJailCard:
		if g.Phase != PhaseRoll {
			return reject("cannot use a jail card in phase %s", g.Phase)
		}
		if !actor.InJail {
			return reject("you are not in jail")
		}
		if actor.GetOutOfJailCards <= 0 {
			return reject("no get-out-of-jail cards held")
		}

	case ActionEndTurn:
		if g.Phase != PhaseEndTurn {
			return reject("cannot end turn in phase %s", g.Phase)
		}

	case ActionDeclareBankruptcy:
		if !actor.Active {
			return reject("player already inactive")
		}

	case ActionProposeTrade:
		if act.Trade == nil {
			return reject("missing trade proposal")
		}
		if g.Phase == PhaseAwaitingTrade {
			return reject("another trade is awaiting a response")
		}
		return validateTradeTerms(g, actor, act.Trade)

	case ActionAcceptTrade:
		t := g.TradeByID(act.TradeID)
		if t == nil {
			return reject("unknown trade %q", act.TradeID)
		}
		if t.Status != TradePending {
			return reject("trade %q is not pending", act.TradeID)
		}
		if t.ToPlayerID != actorID {
			return reject("trade %q is not addressed to you", act.TradeID)
		}
		// Ownership may have changed hands since the proposal was made;
		// re-verify everything against the current state.
		return verifyTradeStillValid(g, t)

	case ActionDeclineTrade:
		t := g.TradeByID(act.TradeID)
		if t == nil {
			return reject("unknown trade %q", act.TradeID)
		}
		if t.Status != TradePending {
			return reject("trade %q is not pending", act.TradeID)
		}
		if t.ToPlayerID != actorID {
			return reject("trade %q is not addressed to you", act.TradeID)
		}

	case ActionCancelTrade:
		t := g.TradeByID(act.TradeID)
		if t == nil {
			return reject("unknown trade %q", act.TradeID)
		}
		if t.Status != TradePending {
			return reject("trade %q is not pending", act.TradeID)
		}
		if t.FromPlayerID != actorID {
			return reject("only the proposer may cancel trade %q", act.TradeID)
		}

	default:
		return reject("unknown action type %q", act.Type)
	}

	return nil
}

// validateTradeTerms checks a fresh proposal: both parties active, and
// every offered/requested tile owned by the right party right now.
func validateTradeTerms(g *GameState, proposer *PlayerState, t *TradeProposal) error {
	if t.FromPlayerID != proposer.ID {
		return reject("trade proposer mismatch")
	}
	counterpart := g.PlayerByID(t.ToPlayerID)
	if counterpart == nil {
		return reject("unknown trade counterpart %q", t.ToPlayerID)
	}
	if counterpart.ID == proposer.ID {
		return reject("cannot trade with yourself")
	}
	if !proposer.Active || !counterpart.Active {
		return reject("both trade parties must be active")
	}
	if t.OfferedCash < 0 || t.RequestedCash < 0 {
		return reject("trade cash amounts must be non-negative")
	}
	for _, tileID := range t.OfferedTiles {
		if !proposer.OwnsTile(tileID) {
			return reject("you do not own offered tile %q", tileID)
		}
	}
	for _, tileID := range t.RequestedTiles {
		if !counterpart.OwnsTile(tileID) {
			return reject("counterpart does not own requested tile %q", tileID)
		}
	}
	return nil
}

// verifyTradeStillValid re-runs the proposal checks at acceptance time,
// including cash sufficiency on both sides.
func verifyTradeStillValid(g *GameState, t *TradeProposal) error {
	from := g.PlayerByID(t.FromPlayerID)
	to := g.PlayerByID(t.ToPlayerID)
	if from == nil || to == nil {
		return reject("trade party no longer in game")
	}
	if !from.Active || !to.Active {
		return reject("both trade parties must be active")
	}
	for _, tileID := range t.OfferedTiles {
		if !from.OwnsTile(tileID) {
			return reject("proposer no longer owns tile %q", tileID)
		}
	}
	for _, tileID := range t.RequestedTiles {
		if !to.OwnsTile(tileID) {
			return reject("you no longer own tile %q", tileID)
		}
	}
	if from.Balance < t.OfferedCash {
		return reject("proposer cannot cover offered cash")
	}
	if to.Balance < t.RequestedCash {
		return reject("insufficient balance to cover requested cash")
	}
	return nil
}
