package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	GetBriefs(ctx context.Context, ids []int64) (map[int64]UserBrief, error)
	UpdateProfile(ctx context.Context, u *User) error
	TouchLastLogin(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, hashed string) error
	// SetVerified stores the verified real name and the sealed ID card number.
	SetVerified(ctx context.Context, id int64, realName, idCard string) error
}

// MessageRepository defines persistence operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListBetween returns messages exchanged by a and b, newest first.
	ListBetween(ctx context.Context, a, b int64, offset, limit int) ([]*MessageView, error)
	CountBetween(ctx context.Context, a, b int64) (int64, error)
}

// ContactRepository defines the per-pair aggregates derived from messages.
type ContactRepository interface {
	ListForUser(ctx context.Context, userID int64) ([]*Contact, error)
	// MarkAsRead flips the read flag of every unread message from senderID to
	// readerID and returns the number of rows changed.
	MarkAsRead(ctx context.Context, readerID, senderID int64) (int64, error)
	GetUnreadCount(ctx context.Context, userID int64) (int64, error)
	GetUnreadCountFrom(ctx context.Context, userID, senderID int64) (int64, error)
}

// RideRepository defines persistence operations for ride postings.
type RideRepository interface {
	Create(ctx context.Context, r *Ride) error
	GetByID(ctx context.Context, id int64) (*RideView, error)
	Update(ctx context.Context, r *Ride) error
	// List returns the postings matching f, newest first, and the total count.
	List(ctx context.Context, f RideFilter) ([]*RideView, int64, error)
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// Create stores rv and refreshes the reviewed user's rating in one
	// transaction. The target posting must be completed and owned by
	// rv.ToUserID.
	Create(ctx context.Context, rv *Review) (*RatingSummary, error)
	ListForUser(ctx context.Context, userID int64, offset, limit int) ([]*ReviewView, int64, error)
}
