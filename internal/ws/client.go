package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rideshare_go/internal/realtime"
)

// SessionState is the lifecycle stage of one connection.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateAuthenticated
	StateActive
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

// ClientOptions tunes buffering and keepalive of a connection.
type ClientOptions struct {
	SendBuffer      int
	WriteTimeout    time.Duration
	PongWait        time.Duration
	MaxMessageBytes int64
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = 64 << 10
	}
	return o
}

// Client is one live websocket connection of an authenticated user.
// Outbound frames go through a buffered queue drained by writePump; a
// client whose queue is full is closed.
type Client struct {
	id     string
	userID int64
	conn   *websocket.Conn
	opts   ClientOptions
	log    logrus.FieldLogger

	state     atomic.Int32
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, opts ClientOptions, log logrus.FieldLogger) *Client {
	opts = opts.withDefaults()
	id := uuid.NewString()
	c := &Client{
		id:   id,
		conn: conn,
		opts: opts,
		log:  log.WithField("conn_id", id),
		send: make(chan []byte, opts.SendBuffer),
		done: make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() int64 { return c.userID }

func (c *Client) State() SessionState {
	return SessionState(c.state.Load())
}

// advance moves the client one step forward. Closed is terminal.
func (c *Client) advance(from, to SessionState) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// authenticate binds the verified user to the connection.
func (c *Client) authenticate(userID int64) bool {
	if !c.advance(StateConnecting, StateAuthenticated) {
		return false
	}
	c.userID = userID
	c.log = c.log.WithField("user_id", userID)
	return true
}

// Close stops the client. It is safe to call more than once and from any
// goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) enqueueEvent(ev realtime.Event) bool {
	data, err := json.Marshal(ev)
	if err != nil {
		c.log.WithError(err).WithField("event", ev.Name).Error("encode event")
		return false
	}
	return c.enqueue(data)
}

// enqueue never blocks. The send channel is never closed, so a racing
// Close cannot cause a send on a closed channel.
func (c *Client) enqueue(data []byte) bool {
	if c.State() == StateClosed {
		return false
	}
	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		c.log.Warn("send buffer full, dropping slow client")
		c.Close()
		return false
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

// readLoop hands every inbound text frame to handle, one at a time, until
// the connection fails or is closed.
func (c *Client) readLoop(handle func(raw []byte)) {
	c.conn.SetReadLimit(c.opts.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		kind, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.WithError(err).Debug("read failed")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		// Any frame proves liveness.
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		handle(raw)
	}
}
