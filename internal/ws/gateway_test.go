package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/logging"
	"rideshare_go/internal/presence"
	"rideshare_go/internal/realtime"
	"rideshare_go/internal/security"
	"rideshare_go/internal/service"
	"rideshare_go/internal/store"
	"rideshare_go/internal/ws"
	"rideshare_go/internal/wsclient"
)

type env struct {
	url    string
	tokens *security.TokenService
	chat   *service.ChatService
	hub    *ws.Hub
	users  map[string]int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repos, err := store.Open("sqlite", filepath.Join(t.TempDir(), "ws.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	enc, err := security.NewEncryptor([]byte("ws-test-key"), nil)
	require.NoError(t, err)

	log := logging.Discard()
	chat := service.NewChatService(repos.Users, repos.Messages, repos.Contacts, enc, service.Limits{MaxMessageLength: 1000})
	hub := ws.NewHub(presence.NewRegistry(), log)
	engine := realtime.NewEngine(chat, hub, log, 1000)
	tokens := security.NewTokenService("ws-secret", time.Hour)
	gw := ws.NewGateway(hub, tokens, repos.Users, engine, realtime.NewTypingNotifier(hub), ws.Options{}, log)

	srv := httptest.NewServer(gw)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	e := &env{
		url:    "ws" + strings.TrimPrefix(srv.URL, "http"),
		tokens: tokens,
		chat:   chat,
		hub:    hub,
		users:  make(map[string]int64),
	}
	for i, name := range []string{"alice", "bob", "carol"} {
		n := name
		u := &domain.User{
			Phone:          "1380000000" + string(rune('1'+i)),
			HashedPassword: "h",
			RealName:       &n,
			Rating:         5,
			Status:         domain.UserStatusActive,
		}
		require.NoError(t, repos.Users.Create(context.Background(), u))
		e.users[name] = u.ID
	}

	dave := &domain.User{Phone: "13800000009", HashedPassword: "h", Status: domain.UserStatusDisabled}
	require.NoError(t, repos.Users.Create(context.Background(), dave))
	e.users["dave"] = dave.ID
	return e
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// connect dials as name and waits until the handshake events arrived.
func (e *env) connect(t *testing.T, name string) *wsclient.Client {
	t.Helper()
	id := e.users[name]
	token, err := e.tokens.CreateForUser(id, "")
	require.NoError(t, err)

	c, _, err := wsclient.Dial(testCtx(t), wsclient.Config{URL: e.url, Token: token, UserID: id})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx := testCtx(t)
	_, err = c.WaitFor(ctx, realtime.EventOnlineList)
	require.NoError(t, err)
	_, err = c.WaitFor(ctx, realtime.EventUnreadCount)
	require.NoError(t, err)
	return c
}

func TestGatewayRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)

	for name, token := range map[string]string{
		"missing": "",
		"garbage": "not-a-token",
	} {
		_, resp, err := wsclient.Dial(testCtx(t), wsclient.Config{URL: e.url, Token: token})
		require.Error(t, err, name)
		require.NotNil(t, resp, name)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)
	}
	assert.Empty(t, e.hub.OnlineUsers())
}

func TestGatewayRejectsUnknownUser(t *testing.T) {
	e := newEnv(t)
	token, err := e.tokens.CreateForUser(999999, "")
	require.NoError(t, err)

	_, resp, err := wsclient.Dial(testCtx(t), wsclient.Config{URL: e.url, Token: token, UserID: 999999})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, e.hub.OnlineUsers())
}

func TestGatewayRejectsDisabledUser(t *testing.T) {
	e := newEnv(t)
	token, err := e.tokens.CreateForUser(e.users["dave"], "")
	require.NoError(t, err)

	_, resp, err := wsclient.Dial(testCtx(t), wsclient.Config{URL: e.url, Token: token, UserID: e.users["dave"]})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, e.hub.IsOnline(e.users["dave"]))
}

func TestGatewayUnreadOnConnectGoesToNewTabOnly(t *testing.T) {
	e := newEnv(t)
	a1 := e.connect(t, "alice")
	e.connect(t, "alice")
	b := e.connect(t, "bob")

	require.NoError(t, b.SendMessage(realtime.SendMessage{ToUserID: e.users["alice"], Content: "at the gate"}))

	// The first badge update the old tab sees is the one caused by the
	// message, not a repeat of the count sent to the new tab.
	ev, err := a1.WaitFor(testCtx(t), realtime.EventUnreadCount)
	require.NoError(t, err)
	var n domain.UnreadCount
	require.NoError(t, ev.Decode(&n))
	assert.Equal(t, int64(1), n.Count)
}

func TestGatewaySubprotocolAuth(t *testing.T) {
	e := newEnv(t)
	token, err := e.tokens.CreateForUser(e.users["alice"], "")
	require.NoError(t, err)

	c, _, err := wsclient.Dial(testCtx(t), wsclient.Config{URL: e.url, Token: token, UserID: e.users["alice"], Subprotocol: true})
	require.NoError(t, err)
	defer c.Close()

	ev, err := c.WaitFor(testCtx(t), realtime.EventOnlineList)
	require.NoError(t, err)
	var roster realtime.OnlineList
	require.NoError(t, ev.Decode(&roster))
	assert.Equal(t, []int64{e.users["alice"]}, roster.Users)
}

func TestGatewaySendAndReadRoundTrip(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.users["alice"], e.users["bob"]

	a1 := e.connect(t, "alice")
	a2 := e.connect(t, "alice")
	b := e.connect(t, "bob")
	ctx := testCtx(t)

	require.NoError(t, a1.SendMessage(realtime.SendMessage{ToUserID: bob, Content: "hi"}))

	ev, err := a1.WaitFor(ctx, realtime.EventMessageReceive)
	require.NoError(t, err)
	var got domain.MessageView
	require.NoError(t, ev.Decode(&got))
	assert.Equal(t, "hi", got.Content)
	assert.Equal(t, alice, got.FromUserID)
	assert.Equal(t, "bob", *got.ToUser.RealName)

	ev, err = a1.WaitFor(ctx, realtime.EventMessageSent)
	require.NoError(t, err)
	var ack realtime.MessageSent
	require.NoError(t, ev.Decode(&ack))
	assert.Equal(t, got.ID, ack.ID)

	_, err = a2.WaitFor(ctx, realtime.EventMessageReceive)
	require.NoError(t, err)

	_, err = b.WaitFor(ctx, realtime.EventMessageReceive)
	require.NoError(t, err)
	ev, err = b.WaitFor(ctx, realtime.EventUnreadCount)
	require.NoError(t, err)
	var unread domain.UnreadCount
	require.NoError(t, ev.Decode(&unread))
	assert.Equal(t, int64(1), unread.Count)
	assert.Len(t, b.State().Messages(alice), 1)

	page, err := e.chat.ListMessages(ctx, bob, alice, 1, 50)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.False(t, page.List[0].IsRead)

	require.NoError(t, b.MarkRead(alice))

	ev, err = a1.WaitFor(ctx, realtime.EventReadReceipt)
	require.NoError(t, err)
	var receipt realtime.ReadReceipt
	require.NoError(t, ev.Decode(&receipt))
	assert.Equal(t, bob, receipt.ToUserID)
	assert.True(t, a1.State().Messages(bob)[0].IsRead)

	ev, err = b.WaitFor(ctx, realtime.EventUnreadCount)
	require.NoError(t, err)
	require.NoError(t, ev.Decode(&unread))
	assert.Zero(t, unread.Count)

	page, err = e.chat.ListMessages(ctx, bob, alice, 1, 50)
	require.NoError(t, err)
	assert.True(t, page.List[0].IsRead)
}

func TestGatewayCommandErrorsKeepConnectionOpen(t *testing.T) {
	e := newEnv(t)
	a := e.connect(t, "alice")
	ctx := testCtx(t)

	require.NoError(t, a.Emit("message:send", map[string]any{"to_user_id": e.users["bob"], "content": ""}))
	ev, err := a.WaitFor(ctx, realtime.EventMessageError)
	require.NoError(t, err)
	var msgErr realtime.MessageError
	require.NoError(t, ev.Decode(&msgErr))
	assert.Equal(t, "content must not be empty", msgErr.Error)

	// Unknown recipient fails in storage and is reported generically.
	require.NoError(t, a.SendMessage(realtime.SendMessage{ToUserID: 999, Content: "hello?"}))
	ev, err = a.WaitFor(ctx, realtime.EventMessageError)
	require.NoError(t, err)
	require.NoError(t, ev.Decode(&msgErr))
	assert.Equal(t, "failed to send message", msgErr.Error)

	require.NoError(t, a.SendMessage(realtime.SendMessage{ToUserID: e.users["bob"], Content: "still here"}))
	_, err = a.WaitFor(ctx, realtime.EventMessageSent)
	require.NoError(t, err)
}

func TestGatewayTypingRelay(t *testing.T) {
	e := newEnv(t)
	bob := e.users["bob"]
	a := e.connect(t, "alice")
	ctx := testCtx(t)

	// Bob is offline: dropped without an error frame. The validation error
	// that follows must be the first error seen.
	require.NoError(t, a.SetTyping(bob, true))
	require.NoError(t, a.SendMessage(realtime.SendMessage{ToUserID: bob, Content: " "}))
	ev, err := a.WaitFor(ctx, realtime.EventMessageError)
	require.NoError(t, err)
	var msgErr realtime.MessageError
	require.NoError(t, ev.Decode(&msgErr))
	assert.Equal(t, "content must not be empty", msgErr.Error)

	b := e.connect(t, "bob")
	require.NoError(t, a.SetTyping(bob, true))
	require.NoError(t, a.SetTyping(bob, false))

	ev, err = b.WaitFor(ctx, realtime.EventTypingNotify)
	require.NoError(t, err)
	var note realtime.TypingNotice
	require.NoError(t, ev.Decode(&note))
	assert.Equal(t, realtime.TypingNotice{UserID: e.users["alice"], IsTyping: true}, note)

	ev, err = b.WaitFor(ctx, realtime.EventTypingNotify)
	require.NoError(t, err)
	require.NoError(t, ev.Decode(&note))
	assert.False(t, note.IsTyping)
	assert.False(t, b.State().IsTyping(e.users["alice"]))
}

func TestGatewayPresenceOverSockets(t *testing.T) {
	e := newEnv(t)
	carol := e.users["carol"]
	observer := e.connect(t, "alice")
	ctx := testCtx(t)

	c1 := e.connect(t, "carol")
	ev, err := observer.WaitFor(ctx, realtime.EventUserOnline)
	require.NoError(t, err)
	var p realtime.PresenceChange
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, carol, p.UserID)
	assert.True(t, observer.State().IsOnline(carol))

	require.NoError(t, c1.Close())
	ev, err = observer.WaitFor(ctx, realtime.EventUserOffline)
	require.NoError(t, err)
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, carol, p.UserID)
	assert.False(t, observer.State().IsOnline(carol))
	assert.Equal(t, []int64{e.users["alice"]}, e.hub.OnlineUsers())
}
