// Package upload sends a directory of authored blocks to a BlockBoard
// server, remembering what was already sent in a local SQLite database.
package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/claude/blockboard/internal/ingest"
	"github.com/claude/blockboard/internal/sessions"
)

// DefaultConcurrency is the number of uploads in flight when none is set.
const DefaultConcurrency = 4

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int
	// FilesReplaced counts uploads of files that changed since an earlier
	// upload. The server keeps the earlier block.
	FilesReplaced int

	SessionsCreated int
}

// Uploader walks a directory and POSTs every new or changed block document
// to the server.
type Uploader struct {
	client      *Client
	state       *StateDB
	dir         string
	dryRun      bool
	concurrency int
	log         *slog.Logger

	mu    sync.Mutex
	stats Stats
	errs  error
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, dir string, dryRun bool, concurrency int, log *slog.Logger) *Uploader {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Uploader{
		client:      client,
		state:       state,
		dir:         dir,
		dryRun:      dryRun,
		concurrency: concurrency,
		log:         log,
	}
}

// fileInfo tracks a file's metadata for state DB operations.
type fileInfo struct {
	path    string
	relPath string
	size    int64
	hash    string
}

// Run executes the upload pipeline. Per-file failures are collected and
// returned together; they do not stop other uploads.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	if !u.dryRun {
		if err := u.client.Health(ctx); err != nil {
			return &u.stats, err
		}
	}

	files, err := u.scan()
	if err != nil {
		return &u.stats, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u.process(gctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.errs = multierr.Append(u.errs, fmt.Errorf("upload interrupted: %w", err))
	}

	return &u.stats, u.errs
}

// scan lists the block documents under the directory, skipping hidden
// directories.
func (u *Uploader) scan() ([]fileInfo, error) {
	var files []fileInfo
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != u.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !ingest.IsBlockFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, _ := filepath.Rel(u.dir, path)
		files = append(files, fileInfo{path: path, relPath: relPath, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	u.stats.FilesTotal = len(files)
	return files, nil
}

func (u *Uploader) process(ctx context.Context, f fileInfo) {
	hash, err := HashFile(f.path)
	if err != nil {
		u.fail(fmt.Errorf("%s: hashing: %w", f.relPath, err))
		return
	}
	f.hash = hash

	uploaded, err := u.state.IsUploaded(ctx, f.relPath, f.size, f.hash)
	if err != nil {
		u.fail(err)
		return
	}
	if uploaded {
		u.count(func(s *Stats) { s.FilesSkipped++ })
		return
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		u.fail(fmt.Errorf("%s: %w", f.relPath, err))
		return
	}

	if u.dryRun {
		prep, err := ingest.NewProvider(nil, sessions.Materializer{}, u.log).Prepare(data)
		if err != nil {
			u.fail(fmt.Errorf("%s: %w", f.relPath, err))
			return
		}
		u.log.Info("dry-run: would upload", "file", f.relPath, "title", prep.Block.Name,
			"format", prep.Format, "sessions", len(prep.Sessions))
		u.count(func(s *Stats) {
			s.FilesUploaded++
			s.SessionsCreated += len(prep.Sessions)
		})
		return
	}

	previous, err := u.state.BlockID(ctx, f.relPath)
	if err != nil {
		u.fail(err)
		return
	}

	result, err := u.client.UploadBlock(ctx, f.relPath, data)
	if err != nil {
		u.fail(fmt.Errorf("%s: %w", f.relPath, err))
		return
	}
	if err := u.state.MarkUploaded(ctx, f.relPath, f.size, f.hash, result.BlockID); err != nil {
		u.fail(err)
		return
	}
	if previous != "" {
		u.log.Info("uploaded changed file", "file", f.relPath, "block_id", result.BlockID,
			"previous_block_id", previous, "sessions", result.SessionsCreated)
	} else {
		u.log.Info("uploaded", "file", f.relPath, "block_id", result.BlockID, "sessions", result.SessionsCreated)
	}
	u.count(func(s *Stats) {
		s.FilesUploaded++
		s.SessionsCreated += result.SessionsCreated
		if previous != "" {
			s.FilesReplaced++
		}
	})
}

func (u *Uploader) count(fn func(*Stats)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(&u.stats)
}

func (u *Uploader) fail(err error) {
	u.log.Warn("upload failed", "error", err)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stats.FilesErrored++
	u.errs = multierr.Append(u.errs, err)
}
