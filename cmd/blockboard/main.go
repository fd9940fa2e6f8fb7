package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/tsnet"

	"github.com/claude/blockboard/internal/config"
	"github.com/claude/blockboard/internal/logging"
	"github.com/claude/blockboard/internal/metrics"
	"github.com/claude/blockboard/internal/progression"
	"github.com/claude/blockboard/internal/server"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "blockboard:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging)
	defer log.Close()
	hostname, _ := os.Hostname()
	if err := log.EnableSentry(cfg.Sentry, hostname); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	log.Info("BlockBoard starting", "version", Version)

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	policy, err := progression.ParsePolicy(cfg.Progression.DeloadPolicy)
	if err != nil {
		return err
	}
	mat := sessions.Materializer{Engine: progression.Engine{Policy: policy}}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer db.Close()
	log.Info("database connected")

	// Metrics
	poolCollector := pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": cfg.Database.Name})
	reg := metrics.SetupPrometheus(poolCollector)
	m := metrics.NewManager("blockboard", "server", reg)

	opts := []server.Option{
		server.WithMetrics(m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		server.WithWhiteboardCache(cfg.Cache.WhiteboardMB, cfg.Cache.TTLSeconds),
	}

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("starting tsnet: %w", err)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		opts = append(opts, server.WithTailscale(lc))

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	srv := server.New(db, mat, cfg.Auth.APIKey, log.Logger, opts...)
	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		return fmt.Errorf("serving: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}
