package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tidilihatim/avolship-sub011/internal/config"
	"github.com/tidilihatim/avolship-sub011/internal/httpapi"
	"github.com/tidilihatim/avolship-sub011/internal/identity"
	"github.com/tidilihatim/avolship-sub011/internal/ids"
	"github.com/tidilihatim/avolship-sub011/internal/obs"
	"github.com/tidilihatim/avolship-sub011/internal/ratelimit"
	"github.com/tidilihatim/avolship-sub011/internal/store/pg"
	"github.com/tidilihatim/avolship-sub011/internal/token"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("AVOLSHIP_COMMIT"))

	cfg := config.Load()
	if cfg.AuthSecret == "" {
		log.Println("warning: AVOLSHIP_AUTH_SECRET is not set; signing endpoints will fail")
	}

	tokens, err := token.NewService(cfg.AuthSecret, token.WithSessionTTL(cfg.SessionTTL))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	login, err := ratelimit.New(ratelimit.NewMemoryStore(), cfg.LoginRateLimit, cfg.LoginRateWindow)
	if err != nil {
		log.Fatalf("rate limiter: %v", err)
	}

	var (
		store identity.Store
		probe httpapi.ReadyProbe
	)
	if cfg.PostgresDSN != "" {
		pgStore, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		mem := identity.NewMemoryStore()
		if cfg.IsDevelopment() {
			seedDevAdmin(mem)
		}
		store = mem
	}

	api := httpapi.New(cfg, tokens, store, login, probe, version)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting avolship-access %s on %s (%s)", version, srv.Addr, cfg.Environment)

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
	log.Println("Stopped")
}

// seedDevAdmin provisions a throwaway admin account so a fresh development
// environment is usable without migrations.
func seedDevAdmin(store *identity.MemoryStore) {
	hash, err := identity.HashPassword("admin")
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	err = store.Create(context.Background(), &identity.User{
		ID:           ids.New(),
		Email:        "admin@avolship.local",
		Name:         "Dev Admin",
		PasswordHash: hash,
		Role:         identity.RoleAdmin,
		Status:       identity.StatusApproved,
	})
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Println("seeded development admin admin@avolship.local")
}
