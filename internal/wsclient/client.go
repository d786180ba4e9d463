// Package wsclient is a Go client for the realtime gateway.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"rideshare_go/internal/realtime"
)

// ErrClosed is returned once the connection is gone.
var ErrClosed = errors.New("wsclient: connection closed")

// Incoming is one server event with its raw payload.
type Incoming struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the payload into v.
func (in Incoming) Decode(v any) error {
	return json.Unmarshal(in.Data, v)
}

// Config describes how to reach the gateway.
type Config struct {
	URL    string
	Token  string
	UserID int64
	// Subprotocol sends the token as "bearer, <token>" instead of an
	// Authorization header, as browsers must.
	Subprotocol bool
	Buffer      int
}

type Client struct {
	conn    *websocket.Conn
	state   *State
	events  chan Incoming
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// Dial opens a connection. On a rejected handshake the HTTP response is
// returned alongside the error.
func Dial(ctx context.Context, cfg Config) (*Client, *http.Response, error) {
	header := http.Header{}
	dialer := *websocket.DefaultDialer
	if cfg.Subprotocol {
		dialer.Subprotocols = []string{"bearer", cfg.Token}
	} else if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		return nil, resp, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}

	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	c := &Client{
		conn:   conn,
		state:  newState(cfg.UserID),
		events: make(chan Incoming, cfg.Buffer),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, resp, nil
}

// State returns the live view maintained from server events.
func (c *Client) State() *State { return c.state }

// Events delivers every server event after it has been applied to State.
// It is closed when the connection ends.
func (c *Client) Events() <-chan Incoming { return c.events }

// Next returns the next event or an error when ctx ends or the connection
// closes.
func (c *Client) Next(ctx context.Context) (Incoming, error) {
	select {
	case ev, ok := <-c.events:
		if !ok {
			return Incoming{}, c.Err()
		}
		return ev, nil
	case <-ctx.Done():
		return Incoming{}, ctx.Err()
	}
}

// WaitFor skips events until one named name arrives.
func (c *Client) WaitFor(ctx context.Context, name string) (Incoming, error) {
	for {
		ev, err := c.Next(ctx)
		if err != nil {
			return Incoming{}, err
		}
		if ev.Name == name {
			return ev, nil
		}
	}
}

func (c *Client) SendMessage(cmd realtime.SendMessage) error {
	return c.emit(realtime.EventSendMessage, cmd)
}

func (c *Client) MarkRead(fromUserID int64) error {
	return c.emit(realtime.EventMarkRead, realtime.MarkRead{FromUserID: fromUserID})
}

func (c *Client) SetTyping(toUserID int64, typing bool) error {
	name := realtime.EventTypingStop
	if typing {
		name = realtime.EventTypingStart
	}
	return c.emit(name, realtime.Typing{ToUserID: toUserID})
}

// Emit sends an arbitrary event.
func (c *Client) Emit(name string, data any) error {
	return c.emit(name, data)
}

func (c *Client) emit(name string, data any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(realtime.Event{Name: name, Data: data})
}

// Close sends a close frame and tears the connection down.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	c.shutdown(ErrClosed)
	return nil
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		return ErrClosed
	}
	return c.err
}

func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		var ev Incoming
		if err := c.conn.ReadJSON(&ev); err != nil {
			c.shutdown(err)
			return
		}
		c.state.apply(ev)

		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}
