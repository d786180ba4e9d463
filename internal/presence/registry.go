// Package presence tracks which users are online and through which
// connections.
package presence

import (
	"sort"
	"sync"
)

// Registry maps user ids to their live connection ids and back. A user key
// exists only while its connection set is non-empty. All methods are safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byUser map[int64]map[string]struct{}
	owner  map[string]int64
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[int64]map[string]struct{}),
		owner:  make(map[string]int64),
	}
}

// Register adds connID to userID's set and reports whether it is the
// user's first connection. Registering the same pair twice is a no-op.
// A connID already owned by another user is moved to userID.
func (r *Registry) Register(userID int64, connID string) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owner[connID]; ok {
		if prev == userID {
			return false
		}
		r.remove(prev, connID)
	}

	conns, ok := r.byUser[userID]
	if !ok {
		conns = make(map[string]struct{})
		r.byUser[userID] = conns
	}
	conns[connID] = struct{}{}
	r.owner[connID] = userID
	return !ok
}

// Unregister removes connID. It returns the owning user, whether that user
// has no connections left, and whether connID was known at all.
func (r *Registry) Unregister(connID string) (userID int64, wentOffline, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, found = r.owner[connID]
	if !found {
		return 0, false, false
	}
	return userID, r.remove(userID, connID), true
}

// remove must be called with mu held.
func (r *Registry) remove(userID int64, connID string) (empty bool) {
	delete(r.owner, connID)
	conns := r.byUser[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byUser, userID)
		return true
	}
	return false
}

// ConnectionsOf returns a snapshot of userID's connection ids.
func (r *Registry) ConnectionsOf(userID int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[userID]
	out := make([]string, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// OwnerOf returns the user owning connID.
func (r *Registry) OwnerOf(connID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.owner[connID]
	return id, ok
}

// OnlineUsers returns the ids of all online users in ascending order.
func (r *Registry) OnlineUsers() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, len(r.byUser))
	for id := range r.byUser {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owner)
}
