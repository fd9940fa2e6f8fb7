package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DataStats holds aggregate statistics about a user's stored data.
type DataStats struct {
	TotalBlocks       int64      `json:"total_blocks"`
	ArchivedBlocks    int64      `json:"archived_blocks"`
	ActiveBlockID     *uuid.UUID `json:"active_block_id"`
	TotalSessions     int64      `json:"total_sessions"`
	CompletedSessions int64      `json:"completed_sessions"`
	TotalImports      int64      `json:"total_imports"`
	LastImport        *time.Time `json:"last_import"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_archived),
		 (SELECT id FROM blocks WHERE user_id = $1 AND is_active)
		 FROM blocks WHERE user_id = $1`, userID,
	).Scan(&stats.TotalBlocks, &stats.ArchivedBlocks, &stats.ActiveBlockID)
	if err != nil {
		return nil, fmt.Errorf("counting blocks: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
		 FROM workout_sessions WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.CompletedSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM import_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalImports, &stats.LastImport)
	if err != nil {
		return nil, fmt.Errorf("counting imports: %w", err)
	}

	return stats, nil
}
