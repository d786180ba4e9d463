package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthMiddleware validates the Bearer token and attaches the active user to
// the context.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeErrorMessage(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}

			userID, err := tokens.Verify(strings.TrimSpace(authHeader[len("Bearer "):]))
			if err != nil {
				writeErrorMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if errors.Is(err, domain.ErrNotFound) {
				writeErrorMessage(w, http.StatusUnauthorized, "user not found")
				return
			}
			if err != nil {
				writeError(w, r, log, err)
				return
			}
			if !user.IsActive() {
				log.WithField("user_id", userID).Info("rejected disabled account")
				writeErrorMessage(w, http.StatusForbidden, "account is disabled")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
