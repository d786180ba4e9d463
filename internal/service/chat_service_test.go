package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/security"
	"rideshare_go/internal/service"
	"rideshare_go/internal/store"
)

type chatFixture struct {
	svc   *service.ChatService
	repos *store.Repositories
	a, b  int64
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	repos, err := store.Open("sqlite", filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	enc, err := security.NewEncryptor([]byte("chat-test-key"), nil)
	require.NoError(t, err)

	f := &chatFixture{
		svc:   service.NewChatService(repos.Users, repos.Messages, repos.Contacts, enc, service.Limits{MaxMessageLength: 1000}),
		repos: repos,
	}
	f.a = f.user(t, "13800000001", "Rider A")
	f.b = f.user(t, "13800000002", "Driver B")
	return f
}

func (f *chatFixture) user(t *testing.T, phone, name string) int64 {
	t.Helper()
	u := &domain.User{Phone: phone, HashedPassword: "h", RealName: &name, Rating: 5, Status: domain.UserStatusActive}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u.ID
}

func (f *chatFixture) send(t *testing.T, from, to int64, content string) *domain.Message {
	t.Helper()
	m := &domain.Message{FromUserID: from, ToUserID: to, MessageType: domain.MessageTypeText, Content: content}
	require.NoError(t, f.svc.SaveMessage(context.Background(), m))
	return m
}

func TestSaveMessageEncryptsAtRest(t *testing.T) {
	f := newChatFixture(t)
	m := f.send(t, f.a, f.b, "hi")

	assert.NotZero(t, m.ID)
	assert.Equal(t, "hi", m.Content)
	assert.False(t, m.CreatedAt.IsZero())

	var stored string
	require.NoError(t, f.repos.DB.QueryRow(`SELECT content FROM chat_messages WHERE id = ?`, m.ID).Scan(&stored))
	assert.NotEqual(t, "hi", stored)
}

func TestSaveMessageUnknownRecipient(t *testing.T) {
	f := newChatFixture(t)
	m := &domain.Message{FromUserID: f.a, ToUserID: 999, MessageType: domain.MessageTypeText, Content: "hello?"}
	assert.ErrorIs(t, f.svc.SaveMessage(context.Background(), m), domain.ErrPersistence)
}

func TestSendThenFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.send(t, f.a, f.b, "hi")

	page, err := f.svc.ListMessages(ctx, f.b, f.a, 1, 50)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	got := page.List[0]
	assert.Equal(t, "hi", got.Content)
	assert.Equal(t, f.a, got.FromUserID)
	assert.Equal(t, f.b, got.ToUserID)
	assert.False(t, got.IsRead)
	assert.Equal(t, "Rider A", *got.FromUser.RealName)
	assert.Equal(t, int64(1), page.Total)

	_, err = f.svc.MarkAsRead(ctx, f.b, f.a)
	require.NoError(t, err)

	page, err = f.svc.ListMessages(ctx, f.b, f.a, 1, 50)
	require.NoError(t, err)
	assert.True(t, page.List[0].IsRead)
}

func TestListMessagesOldestFirstAndPaged(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	for _, c := range []string{"one", "two", "three", "four", "five"} {
		f.send(t, f.a, f.b, c)
	}

	page, err := f.svc.ListMessages(ctx, f.a, f.b, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.List, 2)
	assert.Equal(t, "four", page.List[0].Content)
	assert.Equal(t, "five", page.List[1].Content)

	page, err = f.svc.ListMessages(ctx, f.a, f.b, 3, 2)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "one", page.List[0].Content)

	page, err = f.svc.ListMessages(ctx, f.a, f.b, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
}

func TestUnreadAccounting(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	for i := 0; i < 3; i++ {
		f.send(t, f.b, f.a, "ping")
	}

	n, err := f.svc.GetUnreadCount(ctx, f.a)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	changed, err := f.svc.MarkAsRead(ctx, f.a, f.b)
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	n, err = f.svc.GetUnreadCount(ctx, f.a)
	require.NoError(t, err)
	assert.Zero(t, n)

	changed, err = f.svc.MarkAsRead(ctx, f.a, f.b)
	require.NoError(t, err)
	assert.Zero(t, changed)

	n, err = f.svc.GetUnreadCount(ctx, f.b)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetContactsDecryptsLastMessage(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	c := f.user(t, "13800000003", "Driver C")

	f.send(t, f.b, f.a, "from b")
	f.send(t, f.a, c, "to c")
	f.send(t, c, f.a, "from c")

	contacts, err := f.svc.GetContacts(ctx, f.a)
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	assert.Equal(t, c, contacts[0].UserID)
	assert.Equal(t, "from c", contacts[0].LastMessage)
	assert.Equal(t, int64(1), contacts[0].UnreadCount)
	assert.Equal(t, f.b, contacts[1].UserID)
	assert.Equal(t, "from b", contacts[1].LastMessage)

	n, err := f.svc.GetUnreadCountFrom(ctx, f.a, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetContactsEmpty(t *testing.T) {
	f := newChatFixture(t)
	contacts, err := f.svc.GetContacts(context.Background(), f.a)
	require.NoError(t, err)
	assert.Empty(t, contacts)
	assert.NotNil(t, contacts)
}
