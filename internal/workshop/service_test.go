package workshop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growiq.org/internal/auth"
)

var (
	admin = &auth.User{
		ID: "admin", Username: "root", Email: "root@growiq.example",
		UserType: auth.UserTypePremium, Verified: true, Active: true,
	}
	member = &auth.User{
		ID: "member", Username: "m", Email: "m@acme-corp.com",
		UserType: auth.UserTypeNormal, Active: true,
	}
)

func newTestService(t *testing.T, now time.Time) (*Service, *MemStore) {
	t.Helper()
	store := NewMemStore()
	svc, err := NewService(store, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return svc, store
}

func TestSubmitStartsPending(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	w, err := svc.Submit(context.Background(), member, "  Intro to Go  ", "basics")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, w.Status)
	assert.Equal(t, "Intro to Go", w.Title)
	assert.Equal(t, "member", w.SubmitterID)
	assert.Nil(t, w.ApprovedBy)
	assert.Nil(t, w.DecidedAt)
	assert.Equal(t, now, w.CreatedAt)
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())

	_, err := svc.Submit(context.Background(), member, "   ", "desc")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Submit(context.Background(), nil, "title", "desc")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitByApproverIsAutoApproved(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	w, err := svc.Submit(context.Background(), admin, "Hiring 101", "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, w.Status)
	require.NotNil(t, w.ApprovedBy)
	assert.Equal(t, "admin", *w.ApprovedBy)
	require.NotNil(t, w.DecidedAt)
	assert.Equal(t, now, *w.DecidedAt)
}

func TestApproveRecordsActorAndTime(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	w, err := svc.Submit(context.Background(), member, "Intro to Go", "")
	require.NoError(t, err)

	got, err := svc.Approve(context.Background(), admin, w.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, "admin", *got.ApprovedBy)
	require.NotNil(t, got.DecidedAt)
	assert.Equal(t, now, *got.DecidedAt)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())

	w, err := svc.Submit(context.Background(), member, "Intro to Go", "")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), admin, w.ID, "   ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	got, err := svc.Reject(context.Background(), admin, w.ID, "duplicate submission")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "duplicate submission", got.RejectReason)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, "admin", *got.ApprovedBy)
}

func TestDecisionsRequireCapability(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())

	w, err := svc.Submit(context.Background(), member, "Intro to Go", "")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), member, w.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.Reject(context.Background(), member, w.ID, "nope")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	// The record stays pending after denied attempts.
	got, err := svc.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())

	w, err := svc.Submit(context.Background(), member, "Intro to Go", "")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), admin, w.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), admin, w.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = svc.Reject(context.Background(), admin, w.ID, "too late")
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	got, err := svc.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
}

func TestDecideUnknownWorkshop(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())

	_, err := svc.Approve(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newTestService(t, time.Now().UTC())

	a, err := svc.Submit(context.Background(), member, "A", "")
	require.NoError(t, err)
	b, err := svc.Submit(context.Background(), member, "B", "")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), admin, a.ID)
	require.NoError(t, err)

	pending, err := svc.List(context.Background(), StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(context.Background(), Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
