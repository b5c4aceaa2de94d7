// cmd/api/main.go
//
// Soda Server – HTTP entry point.
//
// Startup sequence
// ----------------
//
//  1. Load configuration (conf/.env → conf/global.yaml → SODA_ env
//     overrides, vault: references resolved).
//
//  2. Start the daily rotating logger (tees to console in a TTY).
//
//  3. Dial MySQL and hand the connection to the supervisor.  An initial
//     dial failure is not fatal; the supervisor keeps retrying while
//     handlers answer 503.
//
//  4. Open the optional GeoLite2 database for access-log enrichment.
//
//  5. Build the store, token manager, picture storage, and route table,
//     then serve until SIGINT/SIGTERM or an unrecoverable driver error.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saessac/soda-server/internal/api"
	"github.com/saessac/soda-server/internal/config"
	"github.com/saessac/soda-server/internal/database"
	"github.com/saessac/soda-server/internal/logger"
	"github.com/saessac/soda-server/internal/requestinfo"
	"github.com/saessac/soda-server/internal/server"
	"github.com/saessac/soda-server/internal/store"
	"github.com/saessac/soda-server/internal/token"
	"github.com/saessac/soda-server/internal/upload"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	//
	// ── 1.  Database supervisor ─────────────────────────────────────────
	//
	sup := database.NewSupervisor(database.SupervisorConfig{
		DSN:           cfg.Database.DSN,
		RetryDelay:    cfg.Database.RetryDelay,
		ProbeInterval: cfg.Database.ProbeInterval,
	}, zl)
	if err := sup.Connect(ctx); err != nil {
		zl.Warnw("initial db dial failed, supervisor will retry", "err", err)
	} else {
		zl.Infow("db online")
	}
	go sup.Run(ctx)

	//
	// ── 2.  GeoIP (optional) ────────────────────────────────────────────
	//
	if cfg.GeoIP.DBPath != "" {
		if err := requestinfo.OpenGeo(cfg.GeoIP.DBPath); err != nil {
			zl.Warnw("geoip disabled", "path", cfg.GeoIP.DBPath, "err", err)
		}
	}

	//
	// ── 3.  Handler set and route table ─────────────────────────────────
	//
	st := store.New(sup, zl)
	tokens := token.NewManager(cfg.Auth.Secret, cfg.Auth.TTL, cfg.Auth.Issuer)
	pictures := &upload.Storage{
		Root:    cfg.Paths.Root,
		Dir:     cfg.Uploads.Dir,
		Default: cfg.Uploads.DefaultPicture,
	}

	handler := api.Router(api.New(st, tokens, pictures, zl), tokens, sup, zl)
	srv := server.New(cfg.HTTP.ListenAddr, handler)

	//
	// ── 4.  Serve until shutdown or fatal driver error ──────────────────
	//
	errCh := make(chan error, 1)
	go func() {
		zl.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zl.Infow("shutdown signal received")
	case err := <-sup.Fatal():
		zl.Errorw("unrecoverable db error, shutting down", "err", err)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Errorw("http server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Errorw("shutdown", "err", err)
	}
}
