// internal/game/registry.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the in-memory index of live rooms. Persistence makes
// rooms recoverable; the registry only tracks what is resident now.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[uuid.UUID]*Room)}
}

// Add registers a room under its id.
func (reg *Registry) Add(r *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.rooms[r.ID] = r
}

// Get returns the room with the given id, or nil.
func (reg *Registry) Get(id uuid.UUID) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[id]
}

// Remove drops a room from the index.
func (reg *Registry) Remove(id uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
}

// Len reports how many rooms are resident.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
