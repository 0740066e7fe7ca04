// Package session implements the durable token store and session lifecycle
// for cookie-based logins. Tokens are opaque random strings; only a SHA-256
// digest is kept at rest, and rows are never deleted — logout flips the
// active flag so the log stays usable for audit and replay prevention.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrNoSession is returned for any token that does not resolve to a
	// live session: absent, unknown, deactivated, or expired. Callers must
	// not be able to tell those cases apart.
	ErrNoSession = errors.New("session: no identity")

	// ErrNotFound indicates the store holds no row for the given hash.
	ErrNotFound = errors.New("session: not found")

	// ErrConflict indicates a token hash collision at creation.
	ErrConflict = errors.New("session: token conflict")
)

// Session is one persisted login. TokenHash is the hex SHA-256 of the opaque
// token; the token itself is never stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// Store describes persistence operations required by the session manager.
type Store interface {
	// Record persists a new session row. ErrConflict when the token hash
	// already exists.
	Record(ctx context.Context, s *Session) error
	// Find returns the session row for an exact token hash match, or
	// ErrNotFound.
	Find(ctx context.Context, tokenHash string) (*Session, error)
	// Deactivate clears the active flag and reports whether a matching
	// active row existed. Deactivating an already-inactive token succeeds.
	Deactivate(ctx context.Context, tokenHash string) (bool, error)
}

// HashToken derives the storage key for a raw token. Lookups go through the
// digest so a leaked sessions table cannot be replayed as cookies.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
