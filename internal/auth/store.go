package auth

import "context"

// UserStore describes persistence operations required by the auth subsystem.
// The core queries user rows; schema migration is owned elsewhere.
type UserStore interface {
	// Create persists a new user. ErrConflict on duplicate email or username.
	Create(ctx context.Context, u *User) error
	// Find returns the user by id, or ErrNotFound.
	Find(ctx context.Context, id string) (*User, error)
	// FindByEmail returns the user by lower-cased email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Deactivate soft-disables the account. The row is kept.
	Deactivate(ctx context.Context, id string) error
	// UpdateProfile mutates editable profile attributes.
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error)
}

// ProfileUpdate carries optional profile mutations; nil fields are left
// untouched.
type ProfileUpdate struct {
	FullName     *string
	ProfileImage *string
	Verified     *bool
	DomainID     *string
	HRID         *string
}
