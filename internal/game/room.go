// internal/game/room.go
package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mlandis/boardwalk/engine"
	"github.com/mlandis/boardwalk/internal/cache"
	"github.com/mlandis/boardwalk/internal/models"
)

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

// Constants defining the various GameEvent types used for WebSocket communication.
const (
	EventGameInit       GameEventType = "game_init"       // Private: board + full state on join/reconnect.
	EventGameState      GameEventType = "game_state"      // Public: authoritative state after an accepted action.
	EventActionRejected GameEventType = "action_rejected" // Private: the initiator's action failed validation.
	EventGameEnd        GameEventType = "game_end"        // Public: terminal state with winner and reason.
)

// GameEvent is the standard structure for broadcasting game state changes.
type GameEvent struct {
	Type    GameEventType     `json:"type"`
	GameID  uuid.UUID         `json:"gameId"`
	ActorID string            `json:"actorId,omitempty"` // player id that triggered the event
	Action  *engine.Action    `json:"action,omitempty"`  // the accepted action, on state events
	Reason  string            `json:"reason,omitempty"`  // rejection or end reason
	State   *engine.GameState `json:"state,omitempty"`
	Board   *engine.Board     `json:"board,omitempty"` // only on init events

	WinnerID       string `json:"winnerId,omitempty"`
	WinnerNetWorth int    `json:"winnerNetWorth,omitempty"`
}

// RecordStore persists the authoritative state between actions. The
// postgres implementation lives in internal/database; tests use an
// in-memory one.
type RecordStore interface {
	InsertGame(ctx context.Context, gameID uuid.UUID, status string, state *engine.GameState, board *engine.Board) error
	UpdateGameState(ctx context.Context, gameID uuid.UUID, status string, state *engine.GameState) error
}

// persistTimeout bounds each synchronous store call so a slow database
// cannot wedge a room's lock indefinitely.
const persistTimeout = 5 * time.Second

// Room owns one game: the authoritative engine state, the seat list,
// the per-game lock that serializes every action, and the fan-out
// callbacks wired up by the transport layer.
type Room struct {
	ID     uuid.UUID
	Board  *engine.Board
	State  *engine.GameState
	Status models.GameStatus

	Players []*models.Player

	Store RecordStore // nil disables persistence

	// Communication callbacks, wired by the websocket layer.
	BroadcastFn         func(ev GameEvent)                // sends to every connected player
	BroadcastToPlayerFn func(userID string, ev GameEvent) // sends to one user

	// OnGameEnd runs after the terminal state is persisted and broadcast.
	OnGameEnd func(roomID uuid.UUID, winnerID string, reason string)

	BotDelay        time.Duration // pause before a bot acts
	DisconnectGrace time.Duration // how long a vanished human keeps their seat

	actionIndex  int
	botTimer     *time.Timer
	forfeitTimer map[string]*time.Timer // keyed by player id

	Mu sync.Mutex // protects everything above
}

// NewRoom creates a room over a fresh game seeded from the clock.
func NewRoom(board *engine.Board, players []*models.Player, cfg engine.Config) *Room {
	seeds := make([]engine.PlayerSeed, len(players))
	for i, p := range players {
		seeds[i] = engine.PlayerSeed{ID: p.ID, UserID: p.UserID}
	}
	id, _ := uuid.NewRandom()
	return &Room{
		ID:              id,
		Board:           board,
		State:           engine.NewGame(uint64(time.Now().UnixNano()), seeds, cfg),
		Status:          models.GameStatusLobby,
		Players:         players,
		BotDelay:        time.Second,
		DisconnectGrace: 60 * time.Second,
		forfeitTimer:    make(map[string]*time.Timer),
	}
}

// RestoreRoom rebuilds a room around a persisted state, e.g. after a
// service restart. Seats are reconstructed from the state itself.
func RestoreRoom(id uuid.UUID, board *engine.Board, state *engine.GameState, status models.GameStatus) *Room {
	players := make([]*models.Player, len(state.Players))
	for i := range state.Players {
		ep := &state.Players[i]
		players[i] = &models.Player{
			ID:     ep.ID,
			UserID: ep.UserID,
			IsBot:  models.IsBotUserID(ep.UserID),
		}
	}
	return &Room{
		ID:              id,
		Board:           board,
		State:           state,
		Status:          status,
		Players:         players,
		BotDelay:        time.Second,
		DisconnectGrace: 60 * time.Second,
		forfeitTimer:    make(map[string]*time.Timer),
	}
}

// Start activates the room: persists the initial record and, if the
// opening turn belongs to a bot, schedules it.
func (r *Room) Start() error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != models.GameStatusLobby {
		return fmt.Errorf("room %s already started", r.ID)
	}
	r.Status = models.GameStatusActive

	if r.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := r.Store.InsertGame(ctx, r.ID, string(r.Status), r.State, r.Board); err != nil {
			r.Status = models.GameStatusLobby
			return fmt.Errorf("persist initial state: %w", err)
		}
	}

	log.Printf("Room %s: game started with %d players.", r.ID, len(r.Players))
	r.logAction("", "game_start", map[string]interface{}{"players": len(r.Players)})
	r.fireEvent(GameEvent{Type: EventGameState, GameID: r.ID, State: r.State})
	r.scheduleBotTurn()
	return nil
}

// SubmitAction runs the full pipeline for one user-submitted action:
// identity, validation, application, end check, persistence, broadcast.
// The room lock serializes concurrent submissions; losers of the race
// revalidate against the state the winner produced.
func (r *Room) SubmitAction(userID string, act engine.Action) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerByUserID(userID)
	if p == nil {
		return fmt.Errorf("user %s has no seat in room %s", userID, r.ID)
	}
	return r.submitLocked(p, act)
}

// submitLocked applies one action for the seated player. Assumes lock
// is held by caller.
func (r *Room) submitLocked(p *models.Player, act engine.Action) error {
	if r.Status != models.GameStatusActive {
		return fmt.Errorf("room %s is not active", r.ID)
	}

	next, err := r.State.Apply(r.Board, p.ID, act)
	if err != nil {
		if engine.IsRejected(err) {
			r.fireEventToPlayer(p.UserID, GameEvent{
				Type:    EventActionRejected,
				GameID:  r.ID,
				ActorID: p.ID,
				Action:  &act,
				Reason:  err.Error(),
			})
			log.Printf("Room %s: rejected %s from %s: %v", r.ID, act.Type, p.ID, err)
		}
		return err
	}

	if res := engine.CheckEnd(next, r.Board); res.Ended {
		next.RecordEnd(res)
	}

	// Persist before broadcast: no client may see a state that could be
	// lost on a crash.
	if err := r.persistLocked(next); err != nil {
		log.Printf("Room %s: failed to persist state after %s: %v", r.ID, act.Type, err)
		return fmt.Errorf("persist state: %w", err)
	}
	r.State = next

	r.logAction(p.UserID, string(act.Type), actionPayload(act))
	r.fireEvent(GameEvent{
		Type:    EventGameState,
		GameID:  r.ID,
		ActorID: p.ID,
		Action:  &act,
		State:   r.State,
	})

	if r.State.GameEnded {
		r.finishLocked()
		return nil
	}
	r.scheduleBotTurn()
	return nil
}

// persistLocked writes the candidate state through the store. Assumes
// lock is held by caller.
func (r *Room) persistLocked(state *engine.GameState) error {
	if r.Store == nil {
		return nil
	}
	status := r.Status
	if state.GameEnded {
		status = models.GameStatusCompleted
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	return r.Store.UpdateGameState(ctx, r.ID, string(status), state)
}

// finishLocked closes out a terminal game: stops timers, broadcasts the
// result, runs the end callback. Assumes lock is held by caller.
func (r *Room) finishLocked() {
	r.Status = models.GameStatusCompleted
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	for id, t := range r.forfeitTimer {
		t.Stop()
		delete(r.forfeitTimer, id)
	}

	log.Printf("Room %s: game over, winner %q (%s).", r.ID, r.State.WinnerID, r.State.EndReason)
	r.logAction("", string(EventGameEnd), map[string]interface{}{
		"winnerId": r.State.WinnerID,
		"reason":   r.State.EndReason,
	})
	r.fireEvent(GameEvent{
		Type:           EventGameEnd,
		GameID:         r.ID,
		State:          r.State,
		WinnerID:       r.State.WinnerID,
		WinnerNetWorth: r.State.WinnerNetWorth,
		Reason:         r.State.EndReason,
	})

	if r.OnGameEnd != nil {
		go r.OnGameEnd(r.ID, r.State.WinnerID, r.State.EndReason)
	}
}

// HandleConnect marks a seat live and sends the joining user the board
// and current state so they can render immediately.
func (r *Room) HandleConnect(userID string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerByUserID(userID)
	if p == nil {
		return
	}
	p.Connected = true
	if t, ok := r.forfeitTimer[p.ID]; ok {
		t.Stop()
		delete(r.forfeitTimer, p.ID)
		log.Printf("Room %s: player %s reconnected within grace.", r.ID, p.ID)
	}
	r.fireEventToPlayer(userID, GameEvent{
		Type:   EventGameInit,
		GameID: r.ID,
		State:  r.State,
		Board:  r.Board,
	})
}

// HandleDisconnect marks a seat dead and starts the forfeit grace
// timer. A player who stays away too long is declared bankrupt so the
// game can finish without them.
func (r *Room) HandleDisconnect(userID string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerByUserID(userID)
	if p == nil || p.IsBot {
		return
	}
	p.Connected = false
	if r.Status != models.GameStatusActive || r.DisconnectGrace <= 0 {
		return
	}
	ep := r.State.PlayerByID(p.ID)
	if ep == nil || !ep.Active {
		return
	}
	if _, pending := r.forfeitTimer[p.ID]; pending {
		return
	}

	log.Printf("Room %s: player %s disconnected, forfeit in %s.", r.ID, p.ID, r.DisconnectGrace)
	playerID := p.ID
	r.forfeitTimer[p.ID] = time.AfterFunc(r.DisconnectGrace, func() {
		r.forfeitPlayer(playerID)
	})
}

// forfeitPlayer retires a player whose grace expired.
func (r *Room) forfeitPlayer(playerID string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	delete(r.forfeitTimer, playerID)
	p := r.playerByID(playerID)
	if p == nil || p.Connected || r.Status != models.GameStatusActive {
		return
	}
	ep := r.State.PlayerByID(playerID)
	if ep == nil || !ep.Active {
		return
	}
	log.Printf("Room %s: forfeiting disconnected player %s.", r.ID, playerID)
	if err := r.submitLocked(p, engine.Action{Type: engine.ActionDeclareBankruptcy}); err != nil {
		log.Printf("Room %s: forfeit of %s failed: %v", r.ID, playerID, err)
	}
}

// ForceAdvance skips the current turn without an action. Used to
// recover a game whose current player cannot act.
func (r *Room) ForceAdvance() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.forceAdvanceLocked()
}

// forceAdvanceLocked hands the turn over and rebroadcasts. Assumes lock
// is held by caller.
func (r *Room) forceAdvanceLocked() {
	if r.Status != models.GameStatusActive || r.State.GameEnded {
		return
	}
	next := engine.ForceAdvanceTurn(r.State)
	if res := engine.CheckEnd(next, r.Board); res.Ended {
		next.RecordEnd(res)
	}
	if err := r.persistLocked(next); err != nil {
		log.Printf("Room %s: failed to persist forced advance: %v", r.ID, err)
		return
	}
	r.State = next
	r.logAction("", "turn_skipped", nil)
	r.fireEvent(GameEvent{Type: EventGameState, GameID: r.ID, State: r.State})
	if r.State.GameEnded {
		r.finishLocked()
		return
	}
	r.scheduleBotTurn()
}

// fireEvent broadcasts to the whole room. Assumes lock is held by caller.
func (r *Room) fireEvent(ev GameEvent) {
	if r.BroadcastFn == nil {
		return
	}
	r.BroadcastFn(ev)
}

// fireEventToPlayer sends to one user. Assumes lock is held by caller.
func (r *Room) fireEventToPlayer(userID string, ev GameEvent) {
	if r.BroadcastToPlayerFn == nil {
		return
	}
	r.BroadcastToPlayerFn(userID, ev)
}

// playerByUserID resolves a seat from an authenticated user id.
// Assumes lock is held by caller.
func (r *Room) playerByUserID(userID string) *models.Player {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// playerByID resolves a seat from a per-game player id. Assumes lock is
// held by caller.
func (r *Room) playerByID(playerID string) *models.Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// logAction appends to the game's ordered history via the historian.
// Assumes lock is held by caller; the Redis write itself is async.
func (r *Room) logAction(actorUserID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        r.ID,
		ActionIndex:   r.actionIndex,
		ActorUserID:   actorUserID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Error: Room %s: failed publishing action %d (%s): %v", r.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// actionPayload flattens the interesting action fields for the history.
func actionPayload(act engine.Action) map[string]interface{} {
	payload := make(map[string]interface{})
	if act.TileID != "" {
		payload["tileId"] = act.TileID
	}
	if act.Amount != 0 {
		payload["amount"] = act.Amount
	}
	if act.TradeID != "" {
		payload["tradeId"] = act.TradeID
	}
	if act.Trade != nil {
		payload["trade"] = act.Trade
	}
	return payload
}
