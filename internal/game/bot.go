// internal/game/bot.go
package game

import (
	"log"
	"math/rand"
	"time"

	"github.com/mlandis/boardwalk/engine"
	"github.com/mlandis/boardwalk/internal/models"
)

// buyBias is the chance a bot buys an affordable unowned property.
const buyBias = 0.7

// scheduleBotTurn arms the bot timer when the next move belongs to a
// bot: either the current player is one, or a pending trade awaits a
// bot's response. One timer fires one action; multi-step turns (roll,
// then buy, then end) chain through fresh schedules rather than
// recursion, so a misbehaving game can never blow the stack. Assumes
// lock is held by caller.
func (r *Room) scheduleBotTurn() {
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	if r.Status != models.GameStatusActive || r.State.GameEnded {
		return
	}
	if r.nextBotMove() == nil {
		return
	}
	r.botTimer = time.AfterFunc(r.BotDelay, r.playBotTurn)
}

// nextBotMove returns the bot seat that owes the next move, or nil when
// play is waiting on a human. Assumes lock is held by caller.
func (r *Room) nextBotMove() *models.Player {
	if r.State.Phase == engine.PhaseAwaitingTrade {
		if t := pendingTrade(r.State); t != nil {
			if p := r.playerByID(t.ToPlayerID); p != nil && p.IsBot {
				return p
			}
		}
		return nil
	}
	if p := r.playerByID(r.State.CurrentPlayer().ID); p != nil && p.IsBot {
		return p
	}
	return nil
}

// playBotTurn performs exactly one bot action under the room lock. A
// panic anywhere in the bot path skips the turn instead of killing the
// room.
func (r *Room) playBotTurn() {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Room %s: bot turn panicked: %v; skipping turn.", r.ID, rec)
			r.forceAdvanceLocked()
		}
	}()

	if r.Status != models.GameStatusActive || r.State.GameEnded {
		return
	}
	p := r.nextBotMove()
	if p == nil {
		return
	}

	act := r.decideBotAction(p)
	if err := r.submitLocked(p, act); err != nil {
		// A rejected bot action means the driver's view of the rules
		// disagrees with the engine. Skip rather than retry-loop.
		log.Printf("Room %s: bot %s action %s rejected: %v; skipping turn.", r.ID, p.ID, act.Type, err)
		r.forceAdvanceLocked()
	}
}

// decideBotAction picks the forced move for the phase, or the greedy
// choice where the rules leave one open. Assumes lock is held by caller.
func (r *Room) decideBotAction(seat *models.Player) engine.Action {
	cur := r.State.PlayerByID(seat.ID)

	switch r.State.Phase {
	case engine.PhaseRoll:
		if cur.InJail && cur.GetOutOfJailCards > 0 {
			return engine.Action{Type: engine.ActionUseJailCard}
		}
		return engine.Action{Type: engine.ActionRollDice}

	case engine.PhaseAction:
		if r.State.CurrentCardID != "" {
			return engine.Action{Type: engine.ActionResolveCard}
		}
		tile := r.Board.TileAt(cur.Position)
		if tile == nil {
			return engine.Action{Type: engine.ActionSkipBuy}
		}
		switch tile.Type {
		case engine.TileTax:
			return engine.Action{Type: engine.ActionPayTax}
		case engine.TileChance:
			return engine.Action{Type: engine.ActionDrawCard}
		case engine.TileProperty:
			if r.State.OwnerOf(tile.ID) == nil && cur.Balance >= tile.Price && rand.Float64() < buyBias {
				return engine.Action{Type: engine.ActionBuyProperty, TileID: tile.ID}
			}
			return engine.Action{Type: engine.ActionSkipBuy}
		default:
			return engine.Action{Type: engine.ActionSkipBuy}
		}

	case engine.PhaseAwaitingTrade:
		t := pendingTrade(r.State)
		if t == nil {
			return engine.Action{Type: engine.ActionEndTurn}
		}
		if r.botWantsTrade(t, cur) {
			return engine.Action{Type: engine.ActionAcceptTrade, TradeID: t.ID}
		}
		return engine.Action{Type: engine.ActionDeclineTrade, TradeID: t.ID}

	default: // PhaseEndTurn
		return engine.Action{Type: engine.ActionEndTurn}
	}
}

// botWantsTrade accepts only strictly profitable deals: what the bot
// receives is worth more, at purchase prices, than what it gives up.
func (r *Room) botWantsTrade(t *engine.TradeProposal, cur *engine.PlayerState) bool {
	if t.RequestedCash > cur.Balance {
		return false
	}
	incoming := t.OfferedCash - t.RequestedCash
	for _, tileID := range t.OfferedTiles {
		if tile := r.Board.TileByID(tileID); tile != nil {
			incoming += tile.Price
		}
	}
	for _, tileID := range t.RequestedTiles {
		if tile := r.Board.TileByID(tileID); tile != nil {
			incoming -= tile.Price
		}
	}
	return incoming > 0
}

// pendingTrade returns the proposal currently parking the game, if any.
func pendingTrade(g *engine.GameState) *engine.TradeProposal {
	for i := len(g.TradeProposals) - 1; i >= 0; i-- {
		if g.TradeProposals[i].Status == engine.TradePending {
			return &g.TradeProposals[i]
		}
	}
	return nil
}
