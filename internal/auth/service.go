package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"growiq.org/internal/ids"
)

// Service owns account registration and credential verification. Session
// issuance happens above this layer, after a successful verification.
type Service struct {
	users UserStore
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service over the given user store.
func NewService(users UserStore, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	s := &Service{users: users, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterParams carries signup input.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName string
	UserType string
}

// Register validates signup input, hashes the credential, and persists the
// account. Emails are lower-cased before the uniqueness check.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*User, error) {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	email := strings.TrimSpace(strings.ToLower(p.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	userType := strings.TrimSpace(strings.ToLower(p.UserType))
	if userType == "" {
		userType = UserTypeNormal
	}
	switch userType {
	case UserTypeNormal, UserTypeDomain, UserTypePremium:
	default:
		return nil, fmt.Errorf("%w: unsupported user_type %s", ErrInvalidInput, userType)
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(p.FullName),
		UserType:     userType,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile edit and returns the fresh record.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.users.UpdateProfile(ctx, id, upd)
}

// Authenticate verifies login credentials and returns the account. Unknown
// email, wrong password, and deactivated account all yield
// ErrUnauthenticated so the response cannot be used to enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrUnauthenticated
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
