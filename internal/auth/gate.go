package auth

import (
	"context"
	"errors"
	"net/http"

	"growiq.org/internal/session"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session_token"

// SessionResolver is the slice of the session manager the gate depends on.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// Gate is the single reusable authorization checkpoint: it resolves the
// request's cookie to a live user and checks derived capabilities. Handlers
// downstream of the gate perform no authentication re-checks of their own.
type Gate struct {
	sessions SessionResolver
	users    UserStore
}

// NewGate constructs a Gate.
func NewGate(sessions SessionResolver, users UserStore) (*Gate, error) {
	if sessions == nil || users == nil {
		return nil, errors.New("auth: sessions and users are required")
	}
	return &Gate{sessions: sessions, users: users}, nil
}

// RequireUser turns the raw request into an authenticated user, or fails
// closed. There is no anonymous fallback. Absent or dead tokens yield
// ErrUnauthenticated; a token whose owner no longer exists yields
// ErrNotFound (surfaced identically at the boundary). A deactivated account
// fails even while its token is technically valid.
func (g *Gate) RequireUser(r *http.Request) (*User, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrUnauthenticated
	}
	userID, err := g.sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	user, err := g.users.Find(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireCapability resolves the user, classifies the role fresh, and checks
// the capability. ErrForbidden is never downgraded: a valid identity without
// the capability is a hard stop.
func (g *Gate) RequireCapability(r *http.Request, capability Capability) (*User, error) {
	user, err := g.RequireUser(r)
	if err != nil {
		return nil, err
	}
	if !Classify(user).Capabilities().Allows(capability) {
		return nil, ErrForbidden
	}
	return user, nil
}
