package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/blockboard/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "BlockBoard server URL (e.g. https://blockboard.tail1234.ts.net)")
	dirPath := flag.String("path", "", "directory of .json/.txt block documents")
	apiKey := flag.String("api-key", os.Getenv("BLOCKBOARD_AUTH_API_KEY"), "server API key (default $BLOCKBOARD_AUTH_API_KEY)")
	dryRun := flag.Bool("dry-run", false, "parse documents locally but don't send to server")
	concurrency := flag.Int("concurrency", upload.DefaultConcurrency, "uploads in flight")
	stateDir := flag.String("state-dir", "", "state directory (default ~/.blockboard-upload)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("blockboard-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dirPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: blockboard-upload -server <URL> -path <dir> [-api-key KEY] [-dry-run] [-concurrency N]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if (*serverURL == "" || *apiKey == "") && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*dirPath)
	if err != nil || !info.IsDir() {
		log.Error("directory not found", "path", *dirPath)
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".blockboard-upload")
	}

	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil in dry-run mode)
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	} else {
		log.Info("DRY RUN mode: files will be parsed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run upload
	uploader := upload.New(client, state, *dirPath, *dryRun, *concurrency, log)
	stats, err := uploader.Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("upload finished with errors", "error", err)
		state.Close()
		os.Exit(1)
	}

	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Printf("  Files replaced:   %d (changed since last upload)\n", stats.FilesReplaced)
	fmt.Printf("  Sessions created: %d\n", stats.SessionsCreated)
	fmt.Println()
}
