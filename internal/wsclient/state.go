package wsclient

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/realtime"
)

// State is the client-side view built from server events: unread badge,
// online roster, typing peers, per-peer message lists and read receipts.
type State struct {
	mu       sync.RWMutex
	self     int64
	unread   int64
	online   map[int64]struct{}
	typing   map[int64]bool
	messages map[int64][]domain.MessageView
	readAt   map[int64]time.Time
	lastAck  int64
	lastErr  string
}

func newState(self int64) *State {
	return &State{
		self:     self,
		online:   make(map[int64]struct{}),
		typing:   make(map[int64]bool),
		messages: make(map[int64][]domain.MessageView),
		readAt:   make(map[int64]time.Time),
	}
}

// apply folds one event into the state. Unknown events are ignored.
func (s *State) apply(ev Incoming) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Name {
	case realtime.EventOnlineList:
		var p realtime.OnlineList
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		s.online = make(map[int64]struct{}, len(p.Users))
		for _, id := range p.Users {
			s.online[id] = struct{}{}
		}

	case realtime.EventUserOnline, realtime.EventUserOffline:
		var p realtime.PresenceChange
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		if ev.Name == realtime.EventUserOnline {
			s.online[p.UserID] = struct{}{}
		} else {
			delete(s.online, p.UserID)
			delete(s.typing, p.UserID)
		}

	case realtime.EventUnreadCount:
		var p domain.UnreadCount
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		s.unread = p.Count

	case realtime.EventMessageReceive:
		var m domain.MessageView
		if err := json.Unmarshal(ev.Data, &m); err != nil {
			return err
		}
		peer := m.ToUserID
		if m.ToUserID == s.self {
			peer = m.FromUserID
			delete(s.typing, peer)
		}
		for _, existing := range s.messages[peer] {
			if existing.ID == m.ID {
				return nil
			}
		}
		s.messages[peer] = append(s.messages[peer], m)

	case realtime.EventMessageSent:
		var p realtime.MessageSent
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		s.lastAck = p.ID

	case realtime.EventMessageError:
		var p realtime.MessageError
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		s.lastErr = p.Error

	case realtime.EventReadReceipt:
		var p realtime.ReadReceipt
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		s.readAt[p.ToUserID] = p.Timestamp
		for i := range s.messages[p.ToUserID] {
			m := &s.messages[p.ToUserID][i]
			if m.FromUserID == s.self {
				m.IsRead = true
			}
		}

	case realtime.EventTypingNotify:
		var p realtime.TypingNotice
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return err
		}
		if p.IsTyping {
			s.typing[p.UserID] = true
		} else {
			delete(s.typing, p.UserID)
		}
	}
	return nil
}

func (s *State) UnreadCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// OnlineUsers returns the known online users in ascending order.
func (s *State) OnlineUsers() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.online))
	for id := range s.online {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *State) IsOnline(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.online[userID]
	return ok
}

func (s *State) IsTyping(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing[userID]
}

// Messages returns a copy of the live messages exchanged with peer.
func (s *State) Messages(peer int64) []domain.MessageView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MessageView(nil), s.messages[peer]...)
}

// ReadAt reports when peer last read our messages.
func (s *State) ReadAt(peer int64) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.readAt[peer]
	return t, ok
}

func (s *State) LastAck() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAck
}

func (s *State) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
