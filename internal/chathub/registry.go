package chathub

import (
	"context"
	"log"
	"sync"

	"penpal/backend/internal/models"
)

// MemoryRegistry is a Registry for a single server instance.
type MemoryRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Member
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{rooms: make(map[string]map[string]Member)}
}

var _ Registry = (*MemoryRegistry)(nil)

func (r *MemoryRegistry) Join(roomID string, member Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]Member)
		r.rooms[roomID] = members
	}
	members[member.MemberID()] = member
}

func (r *MemoryRegistry) Leave(roomID string, member Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, member.MemberID())
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// Broadcast delivers to the members joined when it was called. A member
// with a full buffer loses the event; the broadcaster never waits on it.
func (r *MemoryRegistry) Broadcast(ctx context.Context, roomID string, event models.Event, excludeID string) error {
	for _, m := range r.snapshot(roomID) {
		if m.MemberID() == excludeID {
			continue
		}
		if !m.Deliver(event) {
			log.Printf("WARNING: Dropped %s event for member %s in room %s.", event.Type, m.MemberID(), roomID)
		}
	}
	return nil
}

// Len returns how many members are joined to the room.
func (r *MemoryRegistry) Len(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Rooms returns how many rooms have at least one member.
func (r *MemoryRegistry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *MemoryRegistry) snapshot(roomID string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = append(out, m)
	}
	return out
}
