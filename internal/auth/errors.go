package auth

import "errors"

var (
	// ErrUnauthenticated covers every no-identity case: absent, invalid, or
	// expired token. The message is deliberately uniform so callers cannot
	// probe which case they hit.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrForbidden means the identity is valid but lacks the capability.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrNotFound means a referenced user row does not exist. At the HTTP
	// boundary it is surfaced exactly like ErrUnauthenticated.
	ErrNotFound = errors.New("auth: not found")

	// ErrConflict signals a uniqueness violation (duplicate email).
	ErrConflict = errors.New("auth: already exists")

	ErrInvalidInput = errors.New("auth: invalid input")
)
