// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil means the historian is disabled;
// gameplay never depends on it.
var Rdb *redis.Client

// InitRedis connects using REDIS_URL (or localhost defaults) and pings.
func InitRedis(ctx context.Context) error {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	Rdb = client
	logrus.Info("redis connection established")
	return nil
}

// GameActionRecord is one entry in a game's ordered action history.
// ActionIndex is assigned by the room under its lock, so the list order
// matches the order actions were applied.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   string                 `json:"actorUserId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	Timestamp     int64                  `json:"timestamp"` // unix millis
}

// actionListKey is the per-game history list.
func actionListKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game:%s:actions", gameID)
}

// actionListTTL keeps finished-game histories from accumulating forever.
const actionListTTL = 24 * time.Hour

// PublishGameAction appends the record to the game's history list and
// refreshes its TTL.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	key := actionListKey(rec.GameID)
	pipe := Rdb.Pipeline()
	pipe.RPush(ctx, key, raw)
	pipe.Expire(ctx, key, actionListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// FetchGameActions returns the full ordered history for a game.
func FetchGameActions(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	raws, err := Rdb.LRange(ctx, actionListKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch actions: %w", err)
	}
	records := make([]GameActionRecord, 0, len(raws))
	for _, raw := range raws {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal action record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
