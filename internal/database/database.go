// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/mlandis/boardwalk/engine"
	"github.com/mlandis/boardwalk/internal/models"
)

// DB is the shared connection pool. It is nil until ConnectDB succeeds;
// callers treat a nil pool as "persistence disabled" and keep playing.
var DB *pgxpool.Pool

// ConnectDB initializes the pool from DATABASE_URL and verifies the
// connection with a ping.
func ConnectDB(ctx context.Context) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	DB = pool
	logrus.Info("database connection established")
	return nil
}

// Migrate creates the tables the service needs. Idempotent.
func Migrate(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			is_bot BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS games (
			id UUID PRIMARY KEY,
			status TEXT NOT NULL,
			state JSONB NOT NULL,
			board JSONB NOT NULL,
			winner_id TEXT NOT NULL DEFAULT '',
			end_reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// InsertGame records a freshly created game with its initial state and
// the board it will be played on.
func InsertGame(ctx context.Context, gameID uuid.UUID, status string, state *engine.GameState, board *engine.Board) error {
	if DB == nil {
		return nil
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	boardJSON, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	_, err = DB.Exec(ctx,
		`INSERT INTO games (id, status, state, board) VALUES ($1, $2, $3, $4)`,
		gameID, status, stateJSON, boardJSON)
	return err
}

// UpdateGameState overwrites the persisted state after an accepted
// action. The row is the authoritative recovery point for the room.
func UpdateGameState(ctx context.Context, gameID uuid.UUID, status string, state *engine.GameState) error {
	if DB == nil {
		return nil
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = DB.Exec(ctx,
		`UPDATE games SET status = $2, state = $3, winner_id = $4, end_reason = $5, updated_at = now() WHERE id = $1`,
		gameID, status, stateJSON, state.WinnerID, state.EndReason)
	return err
}

// LoadGame restores a persisted game state and board, e.g. after a
// service restart.
func LoadGame(ctx context.Context, gameID uuid.UUID) (*engine.GameState, *engine.Board, string, error) {
	if DB == nil {
		return nil, nil, "", fmt.Errorf("database not connected")
	}
	var status string
	var stateJSON, boardJSON []byte
	err := DB.QueryRow(ctx,
		`SELECT status, state, board FROM games WHERE id = $1`, gameID).
		Scan(&status, &stateJSON, &boardJSON)
	if err != nil {
		return nil, nil, "", fmt.Errorf("load game %s: %w", gameID, err)
	}
	var state engine.GameState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, nil, "", fmt.Errorf("unmarshal state: %w", err)
	}
	var board engine.Board
	if err := json.Unmarshal(boardJSON, &board); err != nil {
		return nil, nil, "", fmt.Errorf("unmarshal board: %w", err)
	}
	return &state, &board, status, nil
}

// CreateUser inserts a new account row.
func CreateUser(ctx context.Context, u *models.User) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, is_bot) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.IsBot)
	return err
}

// GetUserByEmail fetches an account for login.
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not connected")
	}
	var u models.User
	err := DB.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, is_bot, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.IsBot, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}
