package httpapi

import (
	"errors"
	"net/http"
	"time"

	"growiq.org/internal/audit"
	"growiq.org/internal/auth"
	"growiq.org/internal/obs"
	"growiq.org/internal/session"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User         *auth.User        `json:"user"`
	Role         auth.Role         `json:"role"`
	Capabilities auth.Capabilities `json:"capabilities"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.authsvc.Register(r.Context(), auth.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		UserType: req.UserType,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrConflict):
			writeError(w, r, http.StatusConflict, "email or username already in use")
		default:
			writeError(w, r, http.StatusInternalServerError, "signup failed")
		}
		return
	}

	// New accounts are signed in immediately.
	if err := a.issueSession(w, r, user); err != nil {
		writeError(w, r, http.StatusInternalServerError, "session creation failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.signup", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	writeJSON(w, http.StatusCreated, meResponse{
		User:         user,
		Role:         auth.Classify(user),
		Capabilities: auth.Classify(user).Capabilities(),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.authsvc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeAuthFailure(w, r, "bad_credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	if err := a.issueSession(w, r, user); err != nil {
		writeError(w, r, http.StatusInternalServerError, "session creation failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": user.ID,
	})
	writeJSON(w, http.StatusOK, meResponse{
		User:         user,
		Role:         auth.Classify(user),
		Capabilities: auth.Classify(user).Capabilities(),
	})
}

// handleLogout revokes the presented session. It succeeds even without a
// valid session so a stale client can always clear its cookie.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if err := a.sessions.Invalidate(r.Context(), cookie.Value); err != nil {
			writeError(w, r, http.StatusInternalServerError, "logout failed")
			return
		}
		obs.SessionRevoked()
		_ = audit.LogEvent(r.Context(), "auth.logout", nil)
	}
	a.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"status": "signed_out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.me(w, r)
	case http.MethodPatch:
		a.updateProfile(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch)
	}
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	user, err := a.gate.RequireUser(r)
	if err != nil {
		a.handleGateError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		User:         user,
		Role:         auth.Classify(user),
		Capabilities: auth.Classify(user).Capabilities(),
	})
}

type updateProfileRequest struct {
	FullName     *string `json:"full_name"`
	ProfileImage *string `json:"profile_image"`
}

// updateProfile edits the caller's own display fields. Verification and
// domain/HR linkage are provisioned out of band and deliberately not
// reachable from here.
func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := a.gate.RequireUser(r)
	if err != nil {
		a.handleGateError(w, r, err)
		return
	}
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.FullName == nil && req.ProfileImage == nil {
		writeError(w, r, http.StatusBadRequest, "nothing to update")
		return
	}

	updated, err := a.authsvc.UpdateProfile(r.Context(), user.ID, auth.ProfileUpdate{
		FullName:     req.FullName,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeAuthFailure(w, r, "orphan_session")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "profile update failed")
		return
	}
	ctx := auth.ContextWithUser(r.Context(), updated)
	_ = audit.LogEvent(ctx, "user.profile.update", nil)
	writeJSON(w, http.StatusOK, meResponse{
		User:         updated,
		Role:         auth.Classify(updated),
		Capabilities: auth.Classify(updated).Capabilities(),
	})
}

// issueSession mints a session for the user and sets the cookie. The cookie
// lifetime mirrors the session expiry.
func (a *API) issueSession(w http.ResponseWriter, r *http.Request, user *auth.User) error {
	token, rec, err := a.sessions.Create(r.Context(), user.ID)
	if err != nil {
		return err
	}
	obs.SessionIssued()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  rec.ExpiresAt,
		MaxAge:   int(time.Until(rec.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleGateError maps identity and capability failures onto status codes.
// Every authentication failure, including a session pointing at a deleted
// account, produces the identical 401.
func (a *API) handleGateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, session.ErrNoSession):
		writeAuthFailure(w, r, "no_session")
	case errors.Is(err, auth.ErrNotFound):
		writeAuthFailure(w, r, "orphan_session")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
