// internal/handlers/http.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlandis/boardwalk/engine"
	"github.com/mlandis/boardwalk/internal/auth"
	"github.com/mlandis/boardwalk/internal/cache"
	"github.com/mlandis/boardwalk/internal/database"
	"github.com/mlandis/boardwalk/internal/game"
	"github.com/mlandis/boardwalk/internal/models"
)

// Server bundles the registry and hub behind the HTTP surface.
type Server struct {
	Registry *game.Registry
	Hub      *Hub
}

// NewServer wires an empty registry and hub.
func NewServer() *Server {
	return &Server{
		Registry: game.NewRegistry(),
		Hub:      NewHub(),
	}
}

// Routes registers every endpoint on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/register", s.HandleRegister)
	mux.HandleFunc("/login", s.HandleLogin)
	mux.HandleFunc("/games", s.HandleCreateGame)
	mux.HandleFunc("/games/", s.HandleGameResource)
	mux.HandleFunc("/ws/", s.ServeGameWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// pgRecordStore adapts the database package to the room's store
// interface.
type pgRecordStore struct{}

func (pgRecordStore) InsertGame(ctx context.Context, gameID uuid.UUID, status string, state *engine.GameState, board *engine.Board) error {
	return database.InsertGame(ctx, gameID, status, state, board)
}

func (pgRecordStore) UpdateGameState(ctx context.Context, gameID uuid.UUID, status string, state *engine.GameState) error {
	return database.UpdateGameState(ctx, gameID, status, state)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HandleRegister creates an account and returns a session token.
func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash password")
		return
	}
	userID, _ := uuid.NewRandom()
	u := &models.User{ID: userID, Email: req.Email, PasswordHash: string(hash), DisplayName: req.DisplayName}
	if err := database.CreateUser(r.Context(), u); err != nil {
		logrus.WithError(err).Warn("register failed")
		writeError(w, http.StatusConflict, "could not create user")
		return
	}

	token, err := auth.CreateJWT(userID.String())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue token")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"userId": userID.String(), "token": token})
}

// HandleLogin verifies credentials and returns a session token.
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	u, err := database.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.CreateJWT(u.ID.String())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": u.ID.String(), "token": token})
}

// createGameRequest describes the seats for a new game. Humans are
// named by account id; bots just need a count.
type createGameRequest struct {
	UserIDs   []string `json:"userIds"`
	Bots      int      `json:"bots"`
	TurnLimit int      `json:"turnLimit"`
}

// HandleCreateGame builds a room, persists it, and starts play.
func (s *Server) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if _, err := authenticateRequest(r); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	total := len(req.UserIDs) + req.Bots
	if total < 2 || total > 8 {
		writeError(w, http.StatusBadRequest, "games need 2 to 8 players")
		return
	}

	players := make([]*models.Player, 0, total)
	for i, userID := range req.UserIDs {
		players = append(players, &models.Player{
			ID:       fmt.Sprintf("p%d", i+1),
			UserID:   userID,
			JoinedAt: time.Now(),
		})
	}
	for i := 0; i < req.Bots; i++ {
		botID, _ := uuid.NewRandom()
		players = append(players, &models.Player{
			ID:       fmt.Sprintf("p%d", len(req.UserIDs)+i+1),
			UserID:   models.BotUserPrefix + botID.String(),
			IsBot:    true,
			JoinedAt: time.Now(),
		})
	}

	cfg := engine.DefaultConfig()
	if req.TurnLimit > 0 {
		cfg.TurnLimit = req.TurnLimit
	}

	room := game.NewRoom(engine.DefaultBoard(), players, cfg)
	room.Store = pgRecordStore{}
	room.OnGameEnd = func(roomID uuid.UUID, winnerID, reason string) {
		logrus.WithFields(logrus.Fields{"game": roomID, "winner": winnerID, "reason": reason}).Info("game finished")
	}
	s.Hub.WireRoom(room)

	if err := room.Start(); err != nil {
		logrus.WithError(err).Error("start game")
		writeError(w, http.StatusInternalServerError, "could not start game")
		return
	}
	s.Registry.Add(room)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"gameId":  room.ID.String(),
		"players": players,
	})
}

// HandleGameResource serves GET /games/{id} and GET /games/{id}/history.
func (s *Server) HandleGameResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/games/")
	parts := strings.SplitN(rest, "/", 2)
	roomID, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	if len(parts) == 2 && parts[1] == "history" {
		records, err := cache.FetchGameActions(r.Context(), roomID)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "history unavailable")
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}

	room := s.Registry.Get(roomID)
	if room == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	room.Mu.Lock()
	resp := map[string]interface{}{
		"gameId": room.ID.String(),
		"status": room.Status,
		"state":  room.State,
		"board":  room.Board,
	}
	room.Mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}
