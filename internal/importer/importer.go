// Package importer bulk-loads a directory of authored training blocks.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/claude/blockboard/internal/ingest"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
)

// Source is recorded on the import log of a directory run.
const Source = "directory"

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	BlocksCreated   int
	SessionsCreated int
	Formats         map[string]int
}

// Store is what a non-dry run writes to.
type Store interface {
	ingest.BlockStore
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// Importer reads authored block files from a directory tree and stores each
// as a block with materialized sessions.
type Importer struct {
	store    Store
	provider *ingest.Provider
	log      *slog.Logger
	dryRun   bool
	userID   int
	stats    Stats
}

// New creates a new Importer. store may be nil when dryRun is set.
func New(store Store, mat sessions.Materializer, log *slog.Logger, dryRun bool) *Importer {
	var bs ingest.BlockStore
	if store != nil {
		bs = store
	}
	return &Importer{
		store:    store,
		provider: ingest.NewProvider(bs, mat, log),
		log:      log,
		dryRun:   dryRun,
		userID:   1,
		stats:    Stats{Formats: map[string]int{}},
	}
}

// Import processes every .json and .txt file under dir. A file that fails
// to parse or store does not stop the run; its error is collected and the
// combined error returned with the stats.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	start := time.Now()
	logID := imp.beginLog(ctx)

	var errs error
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !ingest.IsBlockFile(d.Name()) {
			imp.stats.FilesSkipped++
			return nil
		}
		if err := imp.importFile(ctx, path); err != nil {
			imp.stats.FilesErrored++
			imp.log.Warn("import failed", "file", path, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
		return nil
	})
	if walkErr != nil {
		errs = multierr.Append(errs, fmt.Errorf("walking %s: %w", dir, walkErr))
	}

	imp.finishLog(logID, dir, errs, time.Since(start))
	return &imp.stats, errs
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var result *ingest.Result
	if imp.dryRun {
		prep, err := imp.provider.Prepare(data)
		if err != nil {
			return err
		}
		result = prep.Result()
		result.BlocksCreated = 1
	} else {
		result, err = imp.provider.Ingest(ctx, data, imp.userID)
		if err != nil {
			return err
		}
	}

	imp.stats.FilesProcessed++
	imp.stats.BlocksCreated += result.BlocksCreated
	imp.stats.SessionsCreated += result.SessionsCreated
	imp.stats.Formats[result.Format]++
	imp.log.Debug("imported file", "file", filepath.Base(path), "title", result.Title,
		"format", result.Format, "sessions", result.SessionsCreated)
	return nil
}

// beginLog records a running import. It returns 0 when nothing was written.
func (imp *Importer) beginLog(ctx context.Context) int64 {
	if imp.dryRun || imp.store == nil {
		return 0
	}
	id, err := imp.store.InsertImportLog(ctx, storage.ImportLog{
		UserID: imp.userID,
		Source: Source,
		Status: storage.ImportRunning,
	})
	if err != nil {
		imp.log.Error("failed to log import", "error", err)
		return 0
	}
	return id
}

func (imp *Importer) finishLog(id int64, dir string, importErr error, elapsed time.Duration) {
	if id == 0 {
		return
	}
	durationMs := int(elapsed.Milliseconds())
	meta, _ := json.Marshal(map[string]any{
		"path":            dir,
		"files_processed": imp.stats.FilesProcessed,
		"files_errored":   imp.stats.FilesErrored,
		"formats":         imp.stats.Formats,
	})
	raw := json.RawMessage(meta)
	entry := storage.ImportLog{
		Status:          storage.ImportSuccess,
		BlocksCreated:   imp.stats.BlocksCreated,
		SessionsCreated: imp.stats.SessionsCreated,
		DurationMs:      &durationMs,
		Metadata:        &raw,
	}
	if importErr != nil {
		entry.Status = storage.ImportError
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}

	// The run's context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := imp.store.UpdateImportLog(ctx, id, entry); err != nil {
		imp.log.Error("failed to update import log", "id", id, "error", err)
	}
}
