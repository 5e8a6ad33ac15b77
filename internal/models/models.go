// internal/models/models.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Bots are synthetic users whose ID string
// carries the "bot:" prefix and never authenticate over the wire.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	IsBot        bool      `json:"isBot"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BotUserPrefix marks synthetic bot identities in the userId namespace.
const BotUserPrefix = "bot:"

// IsBotUserID reports whether a userId string names a synthetic bot.
func IsBotUserID(userID string) bool {
	return strings.HasPrefix(userID, BotUserPrefix)
}

// Player is one seat in a room: the link between a user identity and an
// in-game player id, plus connection liveness.
type Player struct {
	ID        string    `json:"id"`     // per-game player id, matches the engine state
	UserID    string    `json:"userId"` // account id or "bot:" synthetic id
	Name      string    `json:"name"`
	IsBot     bool      `json:"isBot"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// GameStatus tracks a room through its lifecycle.
type GameStatus string

const (
	GameStatusLobby     GameStatus = "LOBBY"
	GameStatusActive    GameStatus = "ACTIVE"
	GameStatusCompleted GameStatus = "COMPLETED"
)
