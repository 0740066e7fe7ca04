package workshop

import (
	"context"
	"sort"
	"sync"
)

var _ Store = (*MemStore)(nil)

// MemStore implements Store in process memory with concurrency safety.
// Used for tests and for running the API without a configured database.
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]*Workshop
}

// NewMemStore creates an empty in-memory workshop store.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]*Workshop)}
}

func (s *MemStore) Create(_ context.Context, w *Workshop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.byID[w.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Workshop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *MemStore) List(_ context.Context, status Status) ([]*Workshop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Workshop, 0, len(s.byID))
	for _, w := range s.byID {
		if status != "" && w.Status != status {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) Decide(_ context.Context, id string, d Decision) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.byID[id]
	if !ok || w.Status != StatusPending {
		return false, nil
	}
	actor := d.ActorID
	decided := d.DecidedAt
	w.Status = d.Status
	w.ApprovedBy = &actor
	w.DecidedAt = &decided
	w.RejectReason = d.Reason
	return true, nil
}
