// Package workshop implements the submission approval lifecycle:
// pending → approved | rejected. Terminal states are immutable; a declined
// workshop is re-submitted as a fresh pending record, never reopened.
package workshop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"growiq.org/internal/auth"
	"growiq.org/internal/ids"
)

// Status is the approval state of a workshop submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound       = errors.New("workshop: not found")
	ErrAlreadyDecided = errors.New("workshop: already decided")
	ErrReasonRequired = errors.New("workshop: rejection reason is required")
	ErrInvalidInput   = errors.New("workshop: invalid input")
)

// Workshop is one submission. ApprovedBy and DecidedAt are set on either
// terminal transition; RejectReason only on rejection.
type Workshop struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	SubmitterID  string     `json:"submitter_id"`
	Status       Status     `json:"status"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Decision carries the fields recorded on a terminal transition.
type Decision struct {
	Status    Status
	ActorID   string
	DecidedAt time.Time
	Reason    string
}

// Store describes persistence operations required by the approval service.
type Store interface {
	Create(ctx context.Context, w *Workshop) error
	// Get returns the workshop by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Workshop, error)
	// List returns workshops filtered by status; empty status means all.
	List(ctx context.Context, status Status) ([]*Workshop, error)
	// Decide applies a terminal transition and reports whether a pending
	// row was matched. The guard keeps terminal states immutable even under
	// concurrent decisions.
	Decide(ctx context.Context, id string, d Decision) (bool, error)
}

// Service owns the approval state machine on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("workshop: store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit records a new workshop. The initial state is pending unless the
// submitter already holds the approval capability, in which case the record
// is approved at creation with the submitter as approver.
func (s *Service) Submit(ctx context.Context, submitter *auth.User, title, description string) (*Workshop, error) {
	if submitter == nil {
		return nil, fmt.Errorf("%w: submitter is required", ErrInvalidInput)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	w := &Workshop{
		ID:          ids.New(),
		Title:       title,
		Description: strings.TrimSpace(description),
		SubmitterID: submitter.ID,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	if auth.Classify(submitter).Capabilities().ApproveWorkshops {
		w.Status = StatusApproved
		approver := submitter.ID
		decided := now
		w.ApprovedBy = &approver
		w.DecidedAt = &decided
	}
	if err := s.store.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Approve transitions pending → approved, recording the approver and the
// decision timestamp. Only holders of the approval capability may call it.
func (s *Service) Approve(ctx context.Context, actor *auth.User, id string) (*Workshop, error) {
	return s.decide(ctx, actor, id, StatusApproved, "")
}

// Reject transitions pending → rejected. The reason is mandatory.
func (s *Service) Reject(ctx context.Context, actor *auth.User, id, reason string) (*Workshop, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.decide(ctx, actor, id, StatusRejected, reason)
}

func (s *Service) decide(ctx context.Context, actor *auth.User, id string, to Status, reason string) (*Workshop, error) {
	if actor == nil || !auth.Classify(actor).Capabilities().ApproveWorkshops {
		return nil, auth.ErrForbidden
	}
	matched, err := s.store.Decide(ctx, id, Decision{
		Status:    to,
		ActorID:   actor.ID,
		DecidedAt: s.now().UTC(),
		Reason:    reason,
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		// Either the row does not exist or it already reached a terminal
		// state; look once to tell the two apart.
		if _, err := s.store.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDecided
	}
	return s.store.Get(ctx, id)
}

// Get returns one workshop.
func (s *Service) Get(ctx context.Context, id string) (*Workshop, error) {
	return s.store.Get(ctx, id)
}

// List returns workshops, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]*Workshop, error) {
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown status %s", ErrInvalidInput, status)
	}
	return s.store.List(ctx, status)
}
