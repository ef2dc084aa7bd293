package core

import "sync"

// Registry maps room ids to the set of currently connected clients. It is the
// transient fan-out list only: persisted membership lives in the store, and
// registry state is rebuilt from scratch on restart when clients rejoin.
//
// All operations are idempotent total functions over the in-memory state and
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[int64]map[*Client]struct{}
	clients map[*Client]map[int64]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[int64]map[*Client]struct{}),
		clients: make(map[*Client]map[int64]struct{}),
	}
}

// Join adds the client to the room's member set. Returns true if newly added.
func (r *Registry) Join(roomID int64, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[roomID] = members
	}
	if _, exists := members[c]; exists {
		return false
	}
	members[c] = struct{}{}

	joined, ok := r.clients[c]
	if !ok {
		joined = make(map[int64]struct{})
		r.clients[c] = joined
	}
	joined[roomID] = struct{}{}
	return true
}

// Leave removes the client from the room. Returns true if it was a member.
func (r *Registry) Leave(roomID int64, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(roomID, c)
}

func (r *Registry) leaveLocked(roomID int64, c *Client) bool {
	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	if _, exists := members[c]; !exists {
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}

	if joined, ok := r.clients[c]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.clients, c)
		}
	}
	return true
}

// RemoveClient removes the client from every room it belonged to and returns
// the ids of the rooms it left. Used on disconnect.
func (r *Registry) RemoveClient(c *Client) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined, ok := r.clients[c]
	if !ok {
		return nil
	}

	left := make([]int64, 0, len(joined))
	for roomID := range joined {
		if r.leaveLocked(roomID, c) {
			left = append(left, roomID)
		}
	}
	return left
}

// MembersOf returns a snapshot of the clients currently in the room. The
// snapshot may already be stale by delivery time; that is acceptable under
// at-most-once-per-snapshot semantics.
func (r *Registry) MembersOf(roomID int64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	snapshot := make([]*Client, 0, len(members))
	for c := range members {
		snapshot = append(snapshot, c)
	}
	return snapshot
}
