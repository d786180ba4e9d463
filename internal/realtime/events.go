// Package realtime implements message delivery and typing relay on top of a
// persistence gateway and a connection publisher.
package realtime

import (
	"time"

	"rideshare_go/internal/domain"
)

// Inbound event names.
const (
	EventSendMessage = "message:send"
	EventMarkRead    = "message:read"
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"
)

// Outbound event names. The read receipt reuses the mark-read name.
const (
	EventMessageReceive = "message:receive"
	EventMessageSent    = "message:sent"
	EventMessageError   = "message:error"
	EventReadReceipt    = "message:read"
	EventUnreadCount    = "chat:unread"
	EventTypingNotify   = "typing:notify"
	EventUserOnline     = "user:online"
	EventUserOffline    = "user:offline"
	EventOnlineList     = "user:online-list"
)

// Event is the wire envelope of every frame in both directions.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

type MessageSent struct {
	ID int64 `json:"id"`
}

type MessageError struct {
	Error string `json:"error"`
}

// ReadReceipt tells a sender that ToUserID has read their messages.
type ReadReceipt struct {
	ToUserID  int64     `json:"to_user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type TypingNotice struct {
	UserID   int64 `json:"user_id"`
	IsTyping bool  `json:"is_typing"`
}

type PresenceChange struct {
	UserID int64 `json:"user_id"`
}

type OnlineList struct {
	Users []int64 `json:"users"`
}

func messageReceive(v *domain.MessageView) Event {
	return Event{Name: EventMessageReceive, Data: v}
}

// ErrorEvent builds the command-scoped error reported to one connection.
func ErrorEvent(msg string) Event {
	return Event{Name: EventMessageError, Data: MessageError{Error: msg}}
}

// OnlineEvent and OfflineEvent announce presence transitions.
func OnlineEvent(userID int64) Event {
	return Event{Name: EventUserOnline, Data: PresenceChange{UserID: userID}}
}

func OfflineEvent(userID int64) Event {
	return Event{Name: EventUserOffline, Data: PresenceChange{UserID: userID}}
}

func OnlineListEvent(users []int64) Event {
	if users == nil {
		users = []int64{}
	}
	return Event{Name: EventOnlineList, Data: OnlineList{Users: users}}
}

// UnreadEvent carries a user's total unread count.
func UnreadEvent(n int64) Event {
	return Event{Name: EventUnreadCount, Data: domain.UnreadCount{Count: n}}
}
