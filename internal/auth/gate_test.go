package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"growiq.org/internal/session"
)

type fakeResolver struct {
	sessions map[string]string // token -> user id
	err      error
}

func (f *fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	userID, ok := f.sessions[token]
	if !ok {
		return "", session.ErrNoSession
	}
	return userID, nil
}

func seedUsers(t *testing.T, users ...*User) *MemStore {
	t.Helper()
	store := NewMemStore()
	for _, u := range users {
		if err := store.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user %s: %v", u.ID, err)
		}
	}
	return store
}

func requestWithCookie(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return r
}

func newTestGate(t *testing.T, resolver SessionResolver, users UserStore) *Gate {
	t.Helper()
	gate, err := NewGate(resolver, users)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return gate
}

func TestRequireUserResolvesIdentity(t *testing.T) {
	users := seedUsers(t, &User{ID: "u1", Username: "a", Email: "a@acme-corp.com", Active: true})
	gate := newTestGate(t, &fakeResolver{sessions: map[string]string{"tok": "u1"}}, users)

	user, err := gate.RequireUser(requestWithCookie("tok"))
	if err != nil {
		t.Fatalf("RequireUser: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestRequireUserFailsClosed(t *testing.T) {
	users := seedUsers(t,
		&User{ID: "u1", Username: "a", Email: "a@acme-corp.com", Active: true},
		&User{ID: "u2", Username: "b", Email: "b@acme-corp.com", Active: false},
	)
	resolver := &fakeResolver{sessions: map[string]string{
		"tok-live":     "u1",
		"tok-disabled": "u2",
		"tok-orphan":   "gone",
	}}
	gate := newTestGate(t, resolver, users)

	// No cookie at all.
	if _, err := gate.RequireUser(requestWithCookie("")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("missing cookie: expected ErrUnauthenticated, got %v", err)
	}
	// Token the session manager does not recognize.
	if _, err := gate.RequireUser(requestWithCookie("bogus")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("unknown token: expected ErrUnauthenticated, got %v", err)
	}
	// Valid session pointing at a deleted user.
	if _, err := gate.RequireUser(requestWithCookie("tok-orphan")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("orphan session: expected ErrNotFound, got %v", err)
	}
	// Valid session over a soft-deactivated account.
	if _, err := gate.RequireUser(requestWithCookie("tok-disabled")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("disabled account: expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireCapability(t *testing.T) {
	users := seedUsers(t,
		&User{ID: "admin", Username: "root", Email: "root@growiq.example", UserType: UserTypePremium, Verified: true, Active: true},
		&User{ID: "normal", Username: "n", Email: "n@gmail.com", UserType: UserTypeNormal, Active: true},
	)
	resolver := &fakeResolver{sessions: map[string]string{
		"tok-admin":  "admin",
		"tok-normal": "normal",
	}}
	gate := newTestGate(t, resolver, users)

	user, err := gate.RequireCapability(requestWithCookie("tok-admin"), CapApproveWorkshops)
	if err != nil {
		t.Fatalf("admin should approve workshops: %v", err)
	}
	if user.ID != "admin" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := gate.RequireCapability(requestWithCookie("tok-normal"), CapApproveWorkshops); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// Unauthenticated beats forbidden: identity first, capability second.
	if _, err := gate.RequireCapability(requestWithCookie(""), CapApproveWorkshops); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
