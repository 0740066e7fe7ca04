package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"growiq.org/internal/ids"
)

const (
	// Fixed lifetime from creation. There is no sliding renewal on use;
	// a shorter-lived UX is traded for a predictable revocation window.
	defaultTTL = 7 * 24 * time.Hour

	tokenBytes = 32

	// A collision needs two identical 256-bit tokens, so retries exist only
	// to satisfy the store contract, not because we expect to loop.
	createRetries = 3
)

// Manager owns the token lifecycle: minting, validity decisions, revocation.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// Option configures Manager behavior.
type Option func(*Manager)

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) {
		if fn != nil {
			m.now = fn
		}
	}
}

// NewManager constructs a Manager over the given store.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	m := &Manager{
		store: store,
		ttl:   defaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create mints a cryptographically random URL-safe token for the user,
// records it with a fixed expiry, and returns the token string. The raw
// token exists only in the return value and the client cookie.
func (m *Manager) Create(ctx context.Context, userID string) (string, *Session, error) {
	if userID == "" {
		return "", nil, errors.New("session: userID is required")
	}
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		token, err := generateToken()
		if err != nil {
			return "", nil, err
		}
		now := m.now().UTC()
		rec := &Session{
			ID:        ids.New(),
			UserID:    userID,
			TokenHash: HashToken(token),
			CreatedAt: now,
			ExpiresAt: now.Add(m.ttl),
			Active:    true,
		}
		err = m.store.Record(ctx, rec)
		if err == nil {
			return token, rec, nil
		}
		if !errors.Is(err, ErrConflict) {
			return "", nil, err
		}
		lastErr = err
	}
	return "", nil, fmt.Errorf("session: exhausted token creation retries: %w", lastErr)
}

// Resolve maps a raw token to its owning user id. Empty, unknown,
// deactivated, and expired tokens all yield ErrNoSession; the caller layered
// above is responsible for loading the user record.
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	rec, err := m.store.Find(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNoSession
		}
		return "", err
	}
	if !rec.Active {
		return "", ErrNoSession
	}
	if !m.now().UTC().Before(rec.ExpiresAt) {
		return "", ErrNoSession
	}
	return rec.UserID, nil
}

// Invalidate deactivates the session behind the token. Idempotent: revoking
// an already-revoked or unknown token is not an error. Other sessions of the
// same user are untouched.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := m.store.Deactivate(ctx, HashToken(token))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
