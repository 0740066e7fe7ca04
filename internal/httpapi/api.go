// Package httpapi is the HTTP surface of the service: session cookie
// handling, the authorization gate, and the JSON handlers for accounts
// and workshop approvals.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"growiq.org/internal/auth"
	"growiq.org/internal/obs"
	"growiq.org/internal/session"
	"growiq.org/internal/workshop"
)

// ReadyProbe reports readiness, typically a database ping.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config collects the service dependencies of the HTTP layer.
type Config struct {
	Ready     ReadyProbe
	Version   string
	Auth      *auth.Service
	Sessions  *session.Manager
	Gate      *auth.Gate
	Workshops *workshop.Service

	// CookieSecure marks the session cookie Secure; enable behind TLS.
	CookieSecure bool

	// Rate limiting per client IP. Zero values fall back to defaults.
	RateBurst     int
	RatePerSecond int
}

const (
	defaultRateBurst     = 20
	defaultRatePerSecond = 10
	maxBodyBytes         = 1 << 20
)

// API is the HTTP layer.
type API struct {
	mux          *http.ServeMux
	readyProbe   ReadyProbe
	version      string
	authsvc      *auth.Service
	sessions     *session.Manager
	gate         *auth.Gate
	workshops    *workshop.Service
	cookieSecure bool
	rateBurst    int
	ratePerSec   int
}

func New(cfg Config) (*API, error) {
	if cfg.Auth == nil || cfg.Sessions == nil || cfg.Gate == nil || cfg.Workshops == nil {
		return nil, errors.New("httpapi: auth, sessions, gate, and workshops are required")
	}
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   cfg.Ready,
		version:      cfg.Version,
		authsvc:      cfg.Auth,
		sessions:     cfg.Sessions,
		gate:         cfg.Gate,
		workshops:    cfg.Workshops,
		cookieSecure: cfg.CookieSecure,
		rateBurst:    cfg.RateBurst,
		ratePerSec:   cfg.RatePerSecond,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = defaultRateBurst
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = defaultRatePerSecond
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// authentication
	a.mux.HandleFunc("/v1/auth/signup", a.handleSignup)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/me", a.handleMe)

	// workshops
	a.mux.HandleFunc("/v1/workshops", a.handleWorkshopsCollection)
	a.mux.HandleFunc("/v1/workshops/", a.handleWorkshopResource)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = obs.Instrument(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "growiq-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "growiq-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeAuthFailure emits the single 401 shape used for every authentication
// failure, so callers cannot distinguish a missing cookie from a revoked
// session or a deleted account.
func writeAuthFailure(w http.ResponseWriter, r *http.Request, reason string) {
	obs.AuthFailure(reason)
	writeError(w, r, http.StatusUnauthorized, "authentication required")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
