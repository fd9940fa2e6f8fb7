package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	"github.com/claude/blockboard/internal/config"
	"github.com/claude/blockboard/internal/importer"
	"github.com/claude/blockboard/internal/logging"
	"github.com/claude/blockboard/internal/progression"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dirPath := flag.String("path", "", "directory of .json/.txt block documents (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	if *dirPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: blockboard-import -config config.yaml -path /path/to/blocks [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging)
	os.Exit(run(cfg, log, *dirPath, *dryRun))
}

func run(cfg *config.Config, log *logging.Logger, dir string, dryRun bool) int {
	defer log.Close()

	// Verify the directory exists
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Error("path does not exist or is not a directory", "path", dir)
		return 1
	}

	policy, err := progression.ParsePolicy(cfg.Progression.DeloadPolicy)
	if err != nil {
		log.Error("invalid progression config", "error", err)
		return 1
	}
	mat := sessions.Materializer{Engine: progression.Engine{Policy: policy}}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store importer.Store
	if dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	} else {
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			return 1
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			return 1
		}
		defer db.Close()
		log.Info("database connected")
		store = db
	}

	// Run import
	imp := importer.New(store, mat, log.Logger, dryRun)
	stats, err := imp.Import(ctx, dir)
	printStats(log.Logger, stats)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			log.Error("import error", "error", e)
		}
		return 1
	}

	log.Info("import complete")
	return 0
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"blocks_created", stats.BlocksCreated,
		"sessions_created", stats.SessionsCreated,
	)
	for format, n := range stats.Formats {
		log.Info("format", "name", format, "files", n)
	}
}
