package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideshare_go/internal/logging"
	"rideshare_go/internal/presence"
	"rideshare_go/internal/realtime"
)

type frame struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func newTestHub() *Hub {
	return NewHub(presence.NewRegistry(), logging.Discard())
}

func attach(t *testing.T, h *Hub, userID int64) *Client {
	t.Helper()
	c := newClient(nil, ClientOptions{SendBuffer: 16}, logging.Discard())
	require.True(t, c.authenticate(userID))
	require.True(t, h.Attach(c))
	assert.Equal(t, StateActive, c.State())
	return c
}

// drain returns the queued frames of c without blocking.
func drain(t *testing.T, c *Client) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case data := <-c.send:
			var f frame
			require.NoError(t, json.Unmarshal(data, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func names(frames []frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Name
	}
	return out
}

func TestHubPresenceTransitions(t *testing.T) {
	h := newTestHub()
	observer := attach(t, h, 99)
	drain(t, observer)

	c1 := attach(t, h, 1)
	assert.Equal(t, []string{realtime.EventUserOnline}, names(drain(t, observer)))

	c2 := attach(t, h, 1)
	assert.Empty(t, drain(t, observer), "second connection must not announce again")

	h.Detach(c1)
	assert.Empty(t, drain(t, observer), "user still has c2")
	assert.True(t, h.IsOnline(1))

	h.Detach(c2)
	frames := drain(t, observer)
	require.Equal(t, []string{realtime.EventUserOffline}, names(frames))
	var p realtime.PresenceChange
	require.NoError(t, json.Unmarshal(frames[0].Data, &p))
	assert.Equal(t, int64(1), p.UserID)
	assert.False(t, h.IsOnline(1))

	// Detaching twice is a no-op.
	h.Detach(c2)
	assert.Empty(t, drain(t, observer))
}

func TestHubRosterIsFirstFrame(t *testing.T) {
	h := newTestHub()
	attach(t, h, 5)
	c := attach(t, h, 7)

	frames := drain(t, c)
	require.NotEmpty(t, frames)
	assert.Equal(t, realtime.EventOnlineList, frames[0].Name)

	var roster realtime.OnlineList
	require.NoError(t, json.Unmarshal(frames[0].Data, &roster))
	assert.Equal(t, []int64{5, 7}, roster.Users)
}

func TestHubEmitToUserReachesEveryConnection(t *testing.T) {
	h := newTestHub()
	a1 := attach(t, h, 1)
	a2 := attach(t, h, 1)
	b := attach(t, h, 2)
	for _, c := range []*Client{a1, a2, b} {
		drain(t, c)
	}

	n := h.EmitToUser(1, realtime.UnreadEvent(3))
	assert.Equal(t, 2, n)
	assert.Len(t, drain(t, a1), 1)
	assert.Len(t, drain(t, a2), 1)
	assert.Empty(t, drain(t, b))

	assert.Zero(t, h.EmitToUser(42, realtime.UnreadEvent(1)))

	assert.True(t, h.EmitToConnection(b.ID(), realtime.ErrorEvent("nope")))
	assert.Equal(t, []string{realtime.EventMessageError}, names(drain(t, b)))
	assert.False(t, h.EmitToConnection("missing", realtime.ErrorEvent("nope")))
}

func TestSlowClientIsDropped(t *testing.T) {
	h := newTestHub()
	c := newClient(nil, ClientOptions{SendBuffer: 1}, logging.Discard())
	require.True(t, c.authenticate(3))
	require.True(t, h.Attach(c)) // roster fills the buffer

	assert.Zero(t, h.EmitToUser(3, realtime.UnreadEvent(1)))
	assert.Equal(t, StateClosed, c.State())
	select {
	case <-c.Done():
	default:
		t.Fatal("client not closed")
	}

	assert.False(t, c.enqueue([]byte(`{}`)))
}

func TestClientStateMachine(t *testing.T) {
	h := newTestHub()
	c := newClient(nil, ClientOptions{}, logging.Discard())
	assert.Equal(t, StateConnecting, c.State())

	assert.False(t, h.Attach(c), "unauthenticated client cannot become active")
	require.True(t, c.authenticate(1))
	assert.False(t, c.authenticate(2))
	assert.Equal(t, int64(1), c.UserID())

	c.Close()
	c.Close()
	assert.Equal(t, StateClosed, c.State())
	assert.False(t, h.Attach(c))
	assert.Equal(t, "closed", c.State().String())
}

func TestCheckOrigin(t *testing.T) {
	check := makeCheckOrigin([]string{"http://localhost:5173"})
	for origin, want := range map[string]bool{
		"":                           true,
		"http://localhost:5173":      true,
		"HTTP://LOCALHOST:5173":      true,
		"http://localhost:5173/path": true,
		"http://evil.example":        false,
	} {
		r := newRequest(t, origin)
		assert.Equal(t, want, check(r), origin)
	}

	assert.True(t, makeCheckOrigin([]string{"*"})(newRequest(t, "http://any.example")))
}
