package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"rideshare_go/internal/presence"
	"rideshare_go/internal/realtime"
)

// Hub owns the presence registry and the table of live clients. It is the
// only writer of the registry.
type Hub struct {
	mu       sync.RWMutex
	registry *presence.Registry
	clients  map[string]*Client
	log      logrus.FieldLogger
}

func NewHub(registry *presence.Registry, log logrus.FieldLogger) *Hub {
	return &Hub{
		registry: registry,
		clients:  make(map[string]*Client),
		log:      log,
	}
}

var _ realtime.Publisher = (*Hub)(nil)

// Attach registers an authenticated client and makes it active. The client
// receives the online roster before any other event. Other clients learn
// that the user came online when this is the user's first connection.
func (h *Hub) Attach(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !c.advance(StateAuthenticated, StateActive) {
		return false
	}

	first := h.registry.Register(c.userID, c.id)
	h.clients[c.id] = c
	c.enqueueEvent(realtime.OnlineListEvent(h.registry.OnlineUsers()))

	if first {
		h.broadcastLocked(realtime.OnlineEvent(c.userID), c.id)
	}

	h.log.WithFields(logrus.Fields{
		"user_id": c.userID,
		"conn_id": c.id,
		"first":   first,
	}).Info("client attached")
	return true
}

// Detach removes c and announces the user offline when c was the last
// connection. Detaching an unknown client is a no-op.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c.id)
	userID, offline, found := h.registry.Unregister(c.id)
	if !found {
		return
	}
	if offline {
		h.broadcastLocked(realtime.OfflineEvent(userID), "")
	}

	h.log.WithFields(logrus.Fields{
		"user_id": userID,
		"conn_id": c.id,
		"offline": offline,
	}).Info("client detached")
}

// EmitToUser queues ev on every connection of userID.
func (h *Hub) EmitToUser(userID int64, ev realtime.Event) int {
	data, ok := h.encode(ev)
	if !ok {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, id := range h.registry.ConnectionsOf(userID) {
		if c, ok := h.clients[id]; ok && c.enqueue(data) {
			n++
		}
	}
	return n
}

func (h *Hub) EmitToConnection(connID string, ev realtime.Event) bool {
	data, ok := h.encode(ev)
	if !ok {
		return false
	}

	h.mu.RLock()
	c, found := h.clients[connID]
	h.mu.RUnlock()
	return found && c.enqueue(data)
}

func (h *Hub) OnlineUsers() []int64 {
	return h.registry.OnlineUsers()
}

func (h *Hub) IsOnline(userID int64) bool {
	return h.registry.IsOnline(userID)
}

// Close closes every client. Their read loops then detach them.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}
}

// broadcastLocked sends ev to every client except skip. h.mu must be held.
func (h *Hub) broadcastLocked(ev realtime.Event, skip string) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}
	for id, c := range h.clients {
		if id != skip {
			c.enqueue(data)
		}
	}
}

func (h *Hub) encode(ev realtime.Event) ([]byte, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).WithField("event", ev.Name).Error("encode event")
		return nil, false
	}
	return data, true
}
