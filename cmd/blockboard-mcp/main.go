package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/blockboard/internal/config"
	"github.com/claude/blockboard/internal/mcp"
	"github.com/claude/blockboard/internal/progression"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "BlockBoard server URL for remote mode")
	configPath := flag.String("config", "", "config file for local database mode")
	login := flag.String("user", "local", "login whose blocks are served in local mode")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*serverURL == "") == (*configPath == "") {
		fmt.Fprintf(os.Stderr, "Usage: blockboard-mcp -server <URL> | -config config.yaml [-user LOGIN]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()
	var ds mcp.DataSource
	var mat sessions.Materializer
	userID := 1

	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		policy, err := progression.ParsePolicy(cfg.Progression.DeloadPolicy)
		if err != nil {
			log.Error("invalid progression config", "error", err)
			os.Exit(1)
		}
		mat = sessions.Materializer{Engine: progression.Engine{Policy: policy}}

		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		userID, err = db.GetOrCreateUser(ctx, *login, "")
		if err != nil {
			log.Error("failed to resolve user", "login", *login, "error", err)
			db.Close()
			os.Exit(1)
		}
		ds = db
		log.Info("local mode", "database", cfg.Database.Name, "user", *login)
	}

	s := mcp.New(ds, mat, Version, log)
	err := server.ServeStdio(s,
		server.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return mcp.WithUserID(ctx, userID)
		}),
		server.WithErrorLogger(slog.NewLogLogger(log.Handler(), slog.LevelError)),
	)
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
