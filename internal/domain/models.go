package domain

import "time"

// User represents a rider or driver account.
type User struct {
	ID             int64      `db:"id" json:"id"`
	Phone          string     `db:"phone" json:"phone"`
	RealName       *string    `db:"real_name" json:"real_name,omitempty"`
	AvatarURL      *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Rating         float64    `db:"rating" json:"rating"`
	RatingCount    int        `db:"rating_count" json:"rating_count"`
	Status         int        `db:"status" json:"status"`
	IDCardVerified bool       `db:"id_card_verified" json:"id_card_verified"`
	HashedPassword string     `db:"password_hash" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// User status values.
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// IsActive reports whether the account may log in and connect.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// UserBrief carries the display fields embedded in message payloads.
type UserBrief struct {
	RealName  *string `json:"real_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Brief returns the display fields of u.
func (u *User) Brief() UserBrief {
	return UserBrief{RealName: u.RealName, AvatarURL: u.AvatarURL}
}

// MessageType distinguishes text, image and voice messages.
type MessageType int

const (
	MessageTypeText  MessageType = 1
	MessageTypeImage MessageType = 2
	MessageTypeVoice MessageType = 3
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVoice:
		return true
	}
	return false
}

// Message is a single chat message between two users. Apart from the read
// flag it is immutable once persisted.
type Message struct {
	ID            int64       `db:"id" json:"id"`
	FromUserID    int64       `db:"from_user_id" json:"from_user_id"`
	ToUserID      int64       `db:"to_user_id" json:"to_user_id"`
	MessageType   MessageType `db:"message_type" json:"message_type"`
	Content       string      `db:"content" json:"content"` // encrypted at rest
	RideReference *int64      `db:"ride_reference" json:"ride_reference,omitempty"`
	IsRead        bool        `db:"is_read" json:"is_read"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// MessageView is a message with the display fields of both parties.
type MessageView struct {
	Message
	FromUser UserBrief `json:"from_user"`
	ToUser   UserBrief `json:"to_user"`
}

// MessagePage is one page of a conversation history, oldest first.
type MessagePage struct {
	List  []*MessageView `json:"list"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Contact summarises the conversation between a viewer and one peer. It is
// derived from the message set and never stored.
type Contact struct {
	UserID          int64     `json:"user_id"`
	RealName        *string   `json:"real_name,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	Rating          float64   `json:"rating"`
	LastMessageTime time.Time `json:"last_message_time"`
	LastMessage     string    `json:"last_message"`
	UnreadCount     int64     `json:"unread_count"`
}

// UnreadCount is the payload of unread badge updates.
type UnreadCount struct {
	Count int64 `json:"count"`
}
