package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"guardpost.dev/internal/auth"
	"guardpost.dev/internal/config"
	"guardpost.dev/internal/httpapi"
	"guardpost.dev/internal/obs"
	"guardpost.dev/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (falls back to GUARDPOST_* env vars)")
	seed := flag.Bool("seed", false, "apply the schema and seed the role catalog and demo accounts, then continue")
	flag.Parse()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.DSN == "" {
		log.Fatal("config: database.dsn is required")
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if *seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pg.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		if err := pg.Seed(ctx, db); err != nil {
			log.Fatalf("seed: %v", err)
		}
		cancel()
		log.Println("Schema and seed data applied")
	}

	codec, err := auth.NewCodec(cfg.Auth.Secret, cfg.Auth.Issuer, auth.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	svc, err := auth.NewService(pg.New(db), codec)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(svc, codec, httpapi.ReadyProbe{DB: db}, httpapi.RateLimits{
		Burst:     cfg.RateLimit.Burst,
		PerSecond: cfg.RateLimit.PerSecond,
	}, version)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting guardpost-api %s on %s", version, srv.Addr)

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
	_ = db.Close()
	log.Println("Stopped")
}
