package service

import (
	"context"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/security"
)

// Limits bounds message size and history page sizes.
type Limits struct {
	MaxMessageLength int
	DefaultPageLimit int
	MaxPageLimit     int
}

// ChatService is the persistence gateway of the messaging core. Message
// content is encrypted before it reaches the repositories and decrypted on
// the way out.
type ChatService struct {
	users     domain.UserRepository
	messages  domain.MessageRepository
	contacts  domain.ContactRepository
	encryptor *security.Encryptor
	limits    Limits
}

func NewChatService(
	users domain.UserRepository,
	messages domain.MessageRepository,
	contacts domain.ContactRepository,
	encryptor *security.Encryptor,
	limits Limits,
) *ChatService {
	if limits.DefaultPageLimit <= 0 {
		limits.DefaultPageLimit = 50
	}
	if limits.MaxPageLimit <= 0 {
		limits.MaxPageLimit = 100
	}
	return &ChatService{
		users:     users,
		messages:  messages,
		contacts:  contacts,
		encryptor: encryptor,
		limits:    limits,
	}
}

// Limits returns the configured bounds.
func (s *ChatService) Limits() Limits {
	return s.limits
}

// SaveMessage persists m and fills in its id and creation time. m.Content is
// left in plain text.
func (s *ChatService) SaveMessage(ctx context.Context, m *domain.Message) error {
	plain := m.Content
	encrypted, err := s.encryptor.Encrypt(plain)
	if err != nil {
		return domain.PersistenceError("encrypt content", err)
	}

	m.Content = encrypted
	err = s.messages.Create(ctx, m)
	m.Content = plain
	if err != nil {
		return domain.PersistenceError("save message", err)
	}
	return nil
}

// UserBriefs returns display fields keyed by user id. Unknown ids are absent.
func (s *ChatService) UserBriefs(ctx context.Context, ids ...int64) (map[int64]domain.UserBrief, error) {
	briefs, err := s.users.GetBriefs(ctx, ids)
	if err != nil {
		return nil, domain.PersistenceError("user briefs", err)
	}
	return briefs, nil
}

// ListMessages returns one page of the history between viewer and peer,
// oldest first. It never changes read state.
func (s *ChatService) ListMessages(ctx context.Context, viewerID, peerID int64, page, limit int) (*domain.MessagePage, error) {
	if peerID <= 0 {
		return nil, domain.ValidationError("invalid user id")
	}
	page, limit = s.normalizePage(page, limit)

	total, err := s.messages.CountBetween(ctx, viewerID, peerID)
	if err != nil {
		return nil, domain.PersistenceError("count messages", err)
	}
	list, err := s.messages.ListBetween(ctx, viewerID, peerID, offset(page, limit), limit)
	if err != nil {
		return nil, domain.PersistenceError("list messages", err)
	}

	for _, m := range list {
		m.Content = s.encryptor.DecryptOrRaw(m.Content)
	}
	// Reverse to chronological order (DB returns DESC)
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	if list == nil {
		list = []*domain.MessageView{}
	}

	return &domain.MessagePage{List: list, Total: total, Page: page, Limit: limit}, nil
}

// GetContacts returns one row per peer the user has exchanged messages
// with, most recent activity first.
func (s *ChatService) GetContacts(ctx context.Context, userID int64) ([]*domain.Contact, error) {
	contacts, err := s.contacts.ListForUser(ctx, userID)
	if err != nil {
		return nil, domain.PersistenceError("list contacts", err)
	}
	for _, c := range contacts {
		c.LastMessage = s.encryptor.DecryptOrRaw(c.LastMessage)
	}
	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	return contacts, nil
}

func (s *ChatService) GetUnreadCount(ctx context.Context, userID int64) (int64, error) {
	n, err := s.contacts.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, domain.PersistenceError("unread count", err)
	}
	return n, nil
}

func (s *ChatService) GetUnreadCountFrom(ctx context.Context, userID, senderID int64) (int64, error) {
	n, err := s.contacts.GetUnreadCountFrom(ctx, userID, senderID)
	if err != nil {
		return 0, domain.PersistenceError("unread count from sender", err)
	}
	return n, nil
}

// MarkAsRead flags every unread message from senderID to readerID as read
// and reports how many changed.
func (s *ChatService) MarkAsRead(ctx context.Context, readerID, senderID int64) (int64, error) {
	n, err := s.contacts.MarkAsRead(ctx, readerID, senderID)
	if err != nil {
		return 0, domain.PersistenceError("mark read", err)
	}
	return n, nil
}

func (s *ChatService) normalizePage(page, limit int) (int, int) {
	return normalizePage(page, limit, s.limits.DefaultPageLimit, s.limits.MaxPageLimit)
}
