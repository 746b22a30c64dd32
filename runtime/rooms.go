package runtime

import (
	"sync"

	"github.com/Lynxchester/lynxchat/domain"
)

type set map[string]struct{}

// Rooms tracks which connections are subscribed to each room's broadcast
// group. Membership is transient and driven purely by join/leave events;
// it is not the durable member list of a room.
type Rooms struct {
	mu      sync.RWMutex
	members map[domain.RoomID]set
}

func NewRooms() *Rooms {
	return &Rooms{members: make(map[domain.RoomID]set)}
}

// Join subscribes a connection to a room's group. If the room has no
// group yet it is initialized on the fly.
func (r *Rooms) Join(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[roomID]; !ok {
		r.members[roomID] = make(set)
	}
	r.members[roomID][connID] = struct{}{}
}

// Leave removes the subscription. Empty groups are dropped entirely so
// the map does not grow with dead rooms over time.
func (r *Rooms) Leave(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members, ok := r.members[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.members, roomID)
		}
	}
}

// Members returns a snapshot of the connection ids currently subscribed
// to a room. Returns nil for an unknown or empty room.
func (r *Rooms) Members(roomID domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.members[roomID]
	if !ok {
		return nil
	}
	connIDs := make([]string, 0, len(members))
	for connID := range members {
		connIDs = append(connIDs, connID)
	}
	return connIDs
}

func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
