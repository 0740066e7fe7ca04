package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"growiq.org/internal/auth"
	"growiq.org/internal/httpapi"
	"growiq.org/internal/obs"
	"growiq.org/internal/session"
	"growiq.org/internal/workshop"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// With GROWIQ_PG_DSN unset the service runs entirely in memory, which is
	// enough for local development against a fresh state.
	var (
		db            *sql.DB
		userStore     auth.UserStore
		sessionStore  session.Store
		workshopStore workshop.Store
	)
	if dsn := os.Getenv("GROWIQ_PG_DSN"); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		userStore = auth.NewPGStore(db)
		sessionStore = session.NewPGStore(db)
		workshopStore = workshop.NewPGStore(db)
	} else {
		log.Println("GROWIQ_PG_DSN not set; using in-memory stores")
		userStore = auth.NewMemStore()
		sessionStore = session.NewMemStore()
		workshopStore = workshop.NewMemStore()
	}

	authsvc, err := auth.NewService(userStore)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	sessions, err := session.NewManager(sessionStore)
	if err != nil {
		log.Fatalf("session manager: %v", err)
	}
	gate, err := auth.NewGate(sessions, userStore)
	if err != nil {
		log.Fatalf("gate: %v", err)
	}
	workshops, err := workshop.NewService(workshopStore)
	if err != nil {
		log.Fatalf("workshop service: %v", err)
	}

	api, err := httpapi.New(httpapi.Config{
		Ready:        httpapi.ReadyProbe{DB: db},
		Version:      version,
		Auth:         authsvc,
		Sessions:     sessions,
		Gate:         gate,
		Workshops:    workshops,
		CookieSecure: os.Getenv("GROWIQ_COOKIE_SECURE") == "true",
	})
	if err != nil {
		log.Fatalf("httpapi: %v", err)
	}

	addr := os.Getenv("GROWIQ_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting growiq-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
