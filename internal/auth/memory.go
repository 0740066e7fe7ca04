package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

var _ UserStore = (*MemStore)(nil)

// MemStore implements UserStore in process memory with concurrency safety.
// Used for tests and for running the API without a configured database.
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]*User
}

// NewMemStore creates an empty in-memory user store.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]*User)}
}

func (s *MemStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrConflict
		}
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *MemStore) Find(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) FindByEmail(_ context.Context, email string) (*User, error) {
	email = strings.ToLower(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = false
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStore) UpdateProfile(_ context.Context, id string, upd ProfileUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = strings.TrimSpace(*upd.ProfileImage)
	}
	if upd.Verified != nil {
		u.Verified = *upd.Verified
	}
	if upd.DomainID != nil {
		u.DomainID = optional(*upd.DomainID)
	}
	if upd.HRID != nil {
		u.HRID = optional(*upd.HRID)
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
