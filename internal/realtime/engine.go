package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"rideshare_go/internal/domain"
)

// Persistence is the storage side consumed by the engine.
type Persistence interface {
	SaveMessage(ctx context.Context, m *domain.Message) error
	UserBriefs(ctx context.Context, ids ...int64) (map[int64]domain.UserBrief, error)
	ListMessages(ctx context.Context, viewerID, peerID int64, page, limit int) (*domain.MessagePage, error)
	GetContacts(ctx context.Context, userID int64) ([]*domain.Contact, error)
	GetUnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, readerID, senderID int64) (int64, error)
}

// Publisher pushes events to live connections. EmitToUser returns the
// number of connections the event was queued on.
type Publisher interface {
	EmitToUser(userID int64, ev Event) int
	EmitToConnection(connID string, ev Event) bool
}

// Engine drives the lifecycle of chat messages and read state.
type Engine struct {
	store     Persistence
	pub       Publisher
	log       logrus.FieldLogger
	maxLength int
	now       func() time.Time
}

func NewEngine(store Persistence, pub Publisher, log logrus.FieldLogger, maxLength int) *Engine {
	return &Engine{
		store:     store,
		pub:       pub,
		log:       log,
		maxLength: maxLength,
		now:       time.Now,
	}
}

// SendMessage validates, persists and fans out one message. originConn is
// the connection that issued the command and receives the ack; it may be
// empty for callers without a connection.
//
// An error is returned only when nothing was persisted. Push failures after
// that point are logged.
func (e *Engine) SendMessage(ctx context.Context, senderID int64, originConn string, cmd SendMessage) (*domain.MessageView, error) {
	if cmd.MessageType == 0 {
		cmd.MessageType = domain.MessageTypeText
	}
	if err := cmd.Validate(senderID, e.maxLength); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		FromUserID:    senderID,
		ToUserID:      cmd.ToUserID,
		MessageType:   cmd.MessageType,
		Content:       cmd.Content,
		RideReference: cmd.RideReference,
	}
	if err := e.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	view := &domain.MessageView{Message: *msg}
	briefs, err := e.store.UserBriefs(ctx, senderID, cmd.ToUserID)
	if err != nil {
		e.deliveryFailed(err, msg, "resolve user briefs")
	} else {
		view.FromUser = briefs[senderID]
		view.ToUser = briefs[cmd.ToUserID]
	}

	ev := messageReceive(view)
	delivered := e.pub.EmitToUser(cmd.ToUserID, ev)
	delivered += e.pub.EmitToUser(senderID, ev)

	if originConn != "" && !e.pub.EmitToConnection(originConn, Event{Name: EventMessageSent, Data: MessageSent{ID: msg.ID}}) {
		e.deliveryFailed(errors.New("origin connection gone"), msg, "ack")
	}

	e.log.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"from":       senderID,
		"to":         cmd.ToUserID,
		"delivered":  delivered,
	}).Debug("message delivered")

	e.pushUnread(ctx, cmd.ToUserID)
	return view, nil
}

// MarkAsRead flags messages from peerID to readerID as read, sends a
// receipt to the peer when anything changed and pushes the reader's new
// unread count to all of the reader's connections.
func (e *Engine) MarkAsRead(ctx context.Context, readerID, peerID int64) error {
	if peerID <= 0 {
		return domain.ValidationError("from_user_id is required")
	}

	changed, err := e.store.MarkAsRead(ctx, readerID, peerID)
	if err != nil {
		return err
	}

	if changed > 0 {
		e.pub.EmitToUser(peerID, Event{
			Name: EventReadReceipt,
			Data: ReadReceipt{ToUserID: readerID, Timestamp: e.now().UTC()},
		})
	}
	e.pushUnread(ctx, readerID)
	return nil
}

// GetMessages returns a page of history and then marks the peer's messages
// to the viewer as read. The page reflects read state before marking.
func (e *Engine) GetMessages(ctx context.Context, viewerID, peerID int64, page, limit int) (*domain.MessagePage, error) {
	res, err := e.store.ListMessages(ctx, viewerID, peerID, page, limit)
	if err != nil {
		return nil, err
	}
	if err := e.MarkAsRead(ctx, viewerID, peerID); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"user_id": viewerID,
			"peer_id": peerID,
		}).Warn("mark read after fetch failed")
	}
	return res, nil
}

func (e *Engine) GetContacts(ctx context.Context, userID int64) ([]*domain.Contact, error) {
	return e.store.GetContacts(ctx, userID)
}

// PushUnreadTo sends userID's current unread count to the single connection
// connID. A new connection uses it so the user's other sockets are not sent
// a count that has not changed.
func (e *Engine) PushUnreadTo(ctx context.Context, userID int64, connID string) {
	if n, ok := e.recountUnread(ctx, userID); ok {
		e.pub.EmitToConnection(connID, UnreadEvent(n))
	}
}

func (e *Engine) pushUnread(ctx context.Context, userID int64) {
	if n, ok := e.recountUnread(ctx, userID); ok {
		e.pub.EmitToUser(userID, UnreadEvent(n))
	}
}

func (e *Engine) recountUnread(ctx context.Context, userID int64) (int64, bool) {
	n, err := e.store.GetUnreadCount(ctx, userID)
	if err != nil {
		e.log.WithError(errors.Join(domain.ErrDelivery, err)).
			WithField("user_id", userID).
			Error("recount unread")
		return 0, false
	}
	return n, true
}

func (e *Engine) deliveryFailed(err error, msg *domain.Message, step string) {
	e.log.WithError(errors.Join(domain.ErrDelivery, err)).WithFields(logrus.Fields{
		"message_id": msg.ID,
		"from":       msg.FromUserID,
		"to":         msg.ToUserID,
		"step":       step,
	}).Error("message delivery failed")
}
