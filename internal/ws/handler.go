package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/realtime"
)

// TokenVerifier resolves a bearer credential to a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserLookup loads the account behind a verified token.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Options configures the gateway.
type Options struct {
	AllowedOrigins []string
	Client         ClientOptions
}

// Gateway is the /ws endpoint. It authenticates the handshake, attaches the
// connection to the hub and dispatches inbound commands.
type Gateway struct {
	hub      *Hub
	tokens   TokenVerifier
	users    UserLookup
	engine   *realtime.Engine
	typing   *realtime.TypingNotifier
	opts     Options
	log      logrus.FieldLogger
	origin   func(r *http.Request) bool
	upgrader websocket.Upgrader
}

func NewGateway(
	hub *Hub,
	tokens TokenVerifier,
	users UserLookup,
	engine *realtime.Engine,
	typing *realtime.TypingNotifier,
	opts Options,
	log logrus.FieldLogger,
) *Gateway {
	checkOrigin := makeCheckOrigin(opts.AllowedOrigins)
	return &Gateway{
		hub:    hub,
		tokens: tokens,
		users:  users,
		engine: engine,
		typing: typing,
		opts:   opts,
		log:    log,
		origin: checkOrigin,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
			Subprotocols: []string{
				"bearer",
			},
		},
	}
}

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

// makeCheckOrigin accepts requests without an Origin header (native and
// server-side clients) and browser requests from an allowed origin.
func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	_, wildcard := allowed["*"]

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" || wildcard {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

// extractToken reads the credential from the Authorization header, the
// "bearer, <token>" subprotocol pair or the token query parameter.
func extractToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], nil
		}
	}

	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token, nil
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !g.origin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	tokenStr, err := extractToken(r)
	if err != nil {
		var authErr wsAuthError
		if errors.As(err, &authErr) {
			http.Error(w, authErr.msg, authErr.status)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := g.tokens.Verify(tokenStr)
	if err != nil {
		g.log.WithError(err).WithField("remote", r.RemoteAddr).Info("ws handshake rejected")
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	}
	user, err := g.users.GetByID(r.Context(), userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		g.log.WithField("user_id", userID).Info("ws handshake for unknown user")
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	case err != nil:
		g.log.WithError(err).WithField("user_id", userID).Error("ws user lookup failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	case !user.IsActive():
		http.Error(w, "account is disabled", http.StatusForbidden)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := newClient(conn, g.opts.Client, g.log)
	c.authenticate(userID)
	if !g.hub.Attach(c) {
		c.Close()
		return
	}
	defer func() {
		g.hub.Detach(c)
		c.Close()
	}()

	go c.writePump()

	// Commands run to completion even after the client goes away.
	ctx := context.WithoutCancel(r.Context())
	go g.engine.PushUnreadTo(ctx, userID, c.id)

	c.readLoop(func(raw []byte) {
		g.dispatch(ctx, c, raw)
	})
}

// dispatch handles one inbound frame. Errors stay scoped to the command.
func (g *Gateway) dispatch(ctx context.Context, c *Client, raw []byte) {
	name, cmd, err := realtime.DecodeCommand(raw)
	log := c.log.WithField("event", name)

	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Error("command panicked")
			c.enqueueEvent(realtime.ErrorEvent("internal error"))
		}
	}()

	if err != nil {
		log.WithError(err).Debug("rejected frame")
		c.enqueueEvent(realtime.ErrorEvent(err.Error()))
		return
	}

	switch cmd := cmd.(type) {
	case realtime.SendMessage:
		if _, err := g.engine.SendMessage(ctx, c.userID, c.id, cmd); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				c.enqueueEvent(realtime.ErrorEvent(err.Error()))
				return
			}
			log.WithError(err).Error("send message failed")
			c.enqueueEvent(realtime.ErrorEvent("failed to send message"))
		}

	case realtime.MarkRead:
		if err := g.engine.MarkAsRead(ctx, c.userID, cmd.FromUserID); err != nil {
			log.WithError(err).Warn("mark read failed")
		}

	case realtime.Typing:
		g.typing.Notify(c.userID, cmd.ToUserID, cmd.IsTyping)
	}
}
