package wsclient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/realtime"
)

func event(t *testing.T, name string, data any) Incoming {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Incoming{Name: name, Data: raw}
}

func view(id, from, to int64, content string) domain.MessageView {
	return domain.MessageView{Message: domain.Message{
		ID: id, FromUserID: from, ToUserID: to, Content: content, MessageType: domain.MessageTypeText,
	}}
}

func TestStatePresence(t *testing.T) {
	s := newState(1)

	require.NoError(t, s.apply(event(t, realtime.EventOnlineList, realtime.OnlineList{Users: []int64{3, 2}})))
	assert.Equal(t, []int64{2, 3}, s.OnlineUsers())

	require.NoError(t, s.apply(event(t, realtime.EventUserOnline, realtime.PresenceChange{UserID: 4})))
	require.NoError(t, s.apply(event(t, realtime.EventTypingNotify, realtime.TypingNotice{UserID: 2, IsTyping: true})))
	assert.True(t, s.IsTyping(2))

	require.NoError(t, s.apply(event(t, realtime.EventUserOffline, realtime.PresenceChange{UserID: 2})))
	assert.False(t, s.IsOnline(2))
	assert.False(t, s.IsTyping(2), "going offline clears typing")
	assert.Equal(t, []int64{3, 4}, s.OnlineUsers())
}

func TestStateMessagesAndReceipts(t *testing.T) {
	s := newState(1)

	// Sender echo and inbound message land under the same peer.
	require.NoError(t, s.apply(event(t, realtime.EventMessageReceive, view(10, 1, 2, "hi"))))
	require.NoError(t, s.apply(event(t, realtime.EventTypingNotify, realtime.TypingNotice{UserID: 2, IsTyping: true})))
	require.NoError(t, s.apply(event(t, realtime.EventMessageReceive, view(11, 2, 1, "hello"))))
	require.NoError(t, s.apply(event(t, realtime.EventMessageReceive, view(11, 2, 1, "hello"))))

	msgs := s.Messages(2)
	require.Len(t, msgs, 2, "duplicates are dropped")
	assert.False(t, s.IsTyping(2), "a message from the peer ends typing")

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.apply(event(t, realtime.EventReadReceipt, realtime.ReadReceipt{ToUserID: 2, Timestamp: at})))
	got, ok := s.ReadAt(2)
	require.True(t, ok)
	assert.True(t, at.Equal(got))

	msgs = s.Messages(2)
	assert.True(t, msgs[0].IsRead, "own message marked read")
	assert.False(t, msgs[1].IsRead, "peer message untouched")
}

func TestStateAckErrorAndUnread(t *testing.T) {
	s := newState(1)

	require.NoError(t, s.apply(event(t, realtime.EventMessageSent, realtime.MessageSent{ID: 42})))
	require.NoError(t, s.apply(event(t, realtime.EventMessageError, realtime.MessageError{Error: "content must not be empty"})))
	require.NoError(t, s.apply(event(t, realtime.EventUnreadCount, domain.UnreadCount{Count: 3})))
	require.NoError(t, s.apply(Incoming{Name: "unknown:event"}))

	assert.Equal(t, int64(42), s.LastAck())
	assert.Equal(t, "content must not be empty", s.LastError())
	assert.Equal(t, int64(3), s.UnreadCount())

	assert.Error(t, s.apply(Incoming{Name: realtime.EventUnreadCount, Data: json.RawMessage(`"x"`)}))
}
