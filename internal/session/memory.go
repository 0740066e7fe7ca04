package session

import (
	"context"
	"sync"
)

var _ Store = (*MemStore)(nil)

// MemStore implements Store in process memory with concurrency safety.
// Used for tests and for running the API without a configured database;
// durable deployments use PGStore.
type MemStore struct {
	mu   sync.RWMutex
	rows map[string]*Session // token hash -> row
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[string]*Session)}
}

func (s *MemStore) Record(_ context.Context, rec *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.TokenHash]; ok {
		return ErrConflict
	}
	cp := *rec
	s.rows[rec.TokenHash] = &cp
	return nil
}

func (s *MemStore) Find(_ context.Context, tokenHash string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemStore) Deactivate(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[tokenHash]
	if !ok || !rec.Active {
		return false, nil
	}
	rec.Active = false
	return true, nil
}
