// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mlandis/boardwalk/engine"
	"github.com/mlandis/boardwalk/internal/auth"
	"github.com/mlandis/boardwalk/internal/game"
)

// client is one live websocket subscriber. Writes go through the send
// channel so the reader never blocks on a slow peer.
type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans room events out to the websocket connections subscribed to
// each room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*client]struct{})}
}

// register adds a client under a room id.
func (h *Hub) register(roomID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
}

// unregister removes a client and closes its send channel.
func (h *Hub) unregister(roomID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[roomID]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast queues an event for every subscriber of the room. Slow
// clients drop messages rather than stalling the room.
func (h *Hub) Broadcast(roomID uuid.UUID, ev game.GameEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("marshal game event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		select {
		case c.send <- raw:
		default:
			logrus.WithField("user", c.userID).Warn("dropping event for slow client")
		}
	}
}

// SendToUser queues an event for one user's connections in the room.
func (h *Hub) SendToUser(roomID uuid.UUID, userID string, ev game.GameEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("marshal game event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		if c.userID != userID {
			continue
		}
		select {
		case c.send <- raw:
		default:
		}
	}
}

// WireRoom points a room's callbacks at the hub.
func (h *Hub) WireRoom(r *game.Room) {
	roomID := r.ID
	r.BroadcastFn = func(ev game.GameEvent) { h.Broadcast(roomID, ev) }
	r.BroadcastToPlayerFn = func(userID string, ev game.GameEvent) { h.SendToUser(roomID, userID, ev) }
}

// actionEnvelope is the inbound client message: just the action itself.
// The actor is always the authenticated user; clients cannot speak for
// other seats.
type actionEnvelope struct {
	Action engine.Action `json:"action"`
}

// ServeGameWS upgrades /ws/{gameID}?token=... to a websocket and pumps
// actions into the room until the peer goes away.
func (s *Server) ServeGameWS(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/ws/")
	roomID, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	room := s.Registry.Get(roomID)
	if room == nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	userID, err := authenticateRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checks are handled by the fronting proxy
	})
	if err != nil {
		logrus.WithError(err).Warn("websocket accept failed")
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, 64)}
	s.Hub.register(roomID, c)
	room.HandleConnect(userID)
	logrus.WithFields(logrus.Fields{"game": roomID, "user": userID}).Info("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer: drains the send channel and keeps the connection alive.
	go func() {
		ping := time.NewTicker(15 * time.Second)
		defer func() {
			ping.Stop()
			_ = conn.Close(websocket.StatusNormalClosure, "bye")
		}()
		for {
			select {
			case msg, ok := <-c.send:
				if !ok {
					return
				}
				if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
					return
				}
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Reader: every inbound frame is one action submission.
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var env actionEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			logrus.WithError(err).Debug("discarding malformed frame")
			continue
		}
		if err := room.SubmitAction(userID, env.Action); err != nil && !engine.IsRejected(err) {
			// Rejections already went back to the initiator; anything
			// else is an infrastructure failure worth logging.
			logrus.WithError(err).WithFields(logrus.Fields{
				"game": roomID, "user": userID, "action": env.Action.Type,
			}).Error("action submission failed")
		}
	}

	s.Hub.unregister(roomID, c)
	room.HandleDisconnect(userID)
	logrus.WithFields(logrus.Fields{"game": roomID, "user": userID}).Info("websocket disconnected")
}

// authenticateRequest extracts and verifies the session token from the
// query string or the Authorization header.
func authenticateRequest(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	return auth.AuthenticateJWT(token)
}
