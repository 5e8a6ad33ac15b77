package engine

// End reasons recorded on the terminal state.
const (
	ReasonLastPlayerStanding = "last_player_standing"
	ReasonTurnLimitReached   = "turn_limit_reached"
)

// EndResult reports whether the game is over and who won.
type EndResult struct {
	Ended          bool
	WinnerID       string
	WinnerNetWorth int
	Reason         string
}

// NetWorth is the player's balance plus the purchase price of every tile
// they hold. Rent never counts toward it.
func NetWorth(p *PlayerState, board *Board) int {
	total := p.Balance
	for _, tileID := range p.Properties {
		if tile := board.TileByID(tileID); tile != nil {
			total += tile.Price
		}
	}
	return total
}

// CheckEnd evaluates the win conditions against the state. Elimination
// and turn-limit wins are both gated on the minimum turn count so every
// player moves at least once before the game can close. The player-count
// gate is checked on its own, not just folded into MinTurnsBeforeEnd at
// construction, so a state restored with a low configured minimum still
// cannot end before every seat has had a turn.
//
// CheckEnd never mutates the state; callers record the result with
// RecordEnd on the state they persist.
func CheckEnd(g *GameState, board *Board) EndResult {
	if g.GameEnded {
		return EndResult{Ended: true, WinnerID: g.WinnerID, WinnerNetWorth: g.WinnerNetWorth, Reason: g.EndReason}
	}
	if g.TurnNumber < g.MinTurnsBeforeEnd || g.TurnNumber < len(g.Players) {
		return EndResult{}
	}

	active := 0
	var last *PlayerState
	for i := range g.Players {
		if g.Players[i].Active {
			active++
			last = &g.Players[i]
		}
	}
	if active <= 1 {
		res := EndResult{Ended: true, Reason: ReasonLastPlayerStanding}
		if last != nil {
			res.WinnerID = last.ID
			res.WinnerNetWorth = NetWorth(last, board)
		}
		return res
	}

	if g.TurnLimit > 0 && g.TurnNumber >= g.TurnLimit {
		res := EndResult{Ended: true, Reason: ReasonTurnLimitReached}
		for i := range g.Players {
			p := &g.Players[i]
			if !p.Active {
				continue
			}
			// Seating order breaks net-worth ties.
			if nw := NetWorth(p, board); res.WinnerID == "" || nw > res.WinnerNetWorth {
				res.WinnerID = p.ID
				res.WinnerNetWorth = nw
			}
		}
		return res
	}

	return EndResult{}
}

// RecordEnd stamps a terminal result onto the state. Further actions are
// rejected once GameEnded is set.
func (g *GameState) RecordEnd(res EndResult) {
	if !res.Ended {
		return
	}
	g.GameEnded = true
	g.WinnerID = res.WinnerID
	g.WinnerNetWorth = res.WinnerNetWorth
	g.EndReason = res.Reason
}
