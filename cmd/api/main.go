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

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/config"
	"buildsmart.in/internal/httpapi"
	"buildsmart.in/internal/obs"
	"buildsmart.in/internal/site"
	"buildsmart.in/internal/store/jsonfile"
	"buildsmart.in/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		db        *sql.DB
		users     auth.UserStore
		resources site.Store
	)
	switch cfg.Store.Mode {
	case config.StorePostgres:
		db, err = sql.Open("pgx", cfg.Store.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		store := pg.New(db)
		users, resources = store.Users(), store
	case config.StoreJSON:
		store, err := jsonfile.New(cfg.Store.DataDir)
		if err != nil {
			log.Fatalf("open json store: %v", err)
		}
		users, resources = store.Users(), store
	default:
		log.Fatalf("unknown store mode %q", cfg.Store.Mode)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.Secret, auth.WithTokenTTL(cfg.Auth.TokenTTL))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	svc, err := auth.NewService(users, tokens, auth.WithDemoLogin(cfg.Auth.DemoLogin))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(svc, users, resources, httpapi.ReadyProbe{DB: db}, version,
		httpapi.WithRateLimit(cfg.HTTP.RateLimitBurst, cfg.HTTP.RateLimitPerSec))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	log.Printf("Starting buildsmart-api %s on %s (store=%s)", version, srv.Addr, cfg.Store.Mode)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
