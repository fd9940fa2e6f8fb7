package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/blockboard/internal/models"
)

// BlockSummary is the list view of a stored block.
type BlockSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	NumberOfWeeks int       `json:"number_of_weeks"`
	DaysPerWeek   int       `json:"days_per_week"`
	Source        string    `json:"source"`
	IsActive      bool      `json:"is_active"`
	IsArchived    bool      `json:"is_archived"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InsertBlock stores a block and its sessions in one transaction. An
// active block deactivates the user's other blocks first.
func (db *DB) InsertBlock(ctx context.Context, userID int, b *models.Block, ws []models.WorkoutSession) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding block: %w", err)
	}
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if b.IsActive {
			if _, err := tx.Exec(ctx,
				`UPDATE blocks SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active`,
				userID); err != nil {
				return fmt.Errorf("deactivating blocks: %w", err)
			}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO blocks (id, user_id, name, is_active, is_archived, source, created_at, updated_at, doc)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$7,$8)`,
			b.ID, userID, b.Name, b.IsActive, b.IsArchived, string(b.Source), b.CreatedAt, doc); err != nil {
			return fmt.Errorf("inserting block: %w", err)
		}
		return insertSessions(ctx, tx, userID, ws)
	})
}

func insertSessions(ctx context.Context, tx pgx.Tx, userID int, ws []models.WorkoutSession) error {
	if len(ws) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range ws {
		doc, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", s.ID, err)
		}
		batch.Queue(
			`INSERT INTO workout_sessions (id, block_id, user_id, week_index, day_template_id, status, doc)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, s.BlockID, userID, s.WeekIndex, s.DayTemplateID, string(s.Status), doc)
	}
	br := tx.SendBatch(ctx, batch)
	for range ws {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("inserting sessions: %w", err)
		}
	}
	return br.Close()
}

// GetBlock returns a block owned by the user.
func (db *DB) GetBlock(ctx context.Context, userID int, id uuid.UUID) (*models.Block, error) {
	return scanBlock(db.Pool.QueryRow(ctx,
		`SELECT doc, is_active, is_archived FROM blocks WHERE id = $1 AND user_id = $2`, id, userID))
}

// ActiveBlock returns the user's active block.
func (db *DB) ActiveBlock(ctx context.Context, userID int) (*models.Block, error) {
	return scanBlock(db.Pool.QueryRow(ctx,
		`SELECT doc, is_active, is_archived FROM blocks WHERE user_id = $1 AND is_active`, userID))
}

// scanBlock decodes a block document. The flag columns are authoritative
// over the copies inside the document.
func scanBlock(row pgx.Row) (*models.Block, error) {
	var doc []byte
	var b models.Block
	var active, archived bool
	if err := row.Scan(&doc, &active, &archived); err != nil {
		return nil, notFound(err, "block")
	}
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("decoding block: %w", err)
	}
	b.IsActive, b.IsArchived = active, archived
	return &b, nil
}

// ListBlocks returns the user's blocks, newest first. Archived blocks are
// included only when asked for.
func (db *DB) ListBlocks(ctx context.Context, userID int, includeArchived bool) ([]BlockSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, COALESCE((doc->>'numberOfWeeks')::int, 1),
		 CASE WHEN jsonb_typeof(doc->'days') = 'array' THEN jsonb_array_length(doc->'days') ELSE 0 END,
		 source, is_active, is_archived, created_at, updated_at
		 FROM blocks
		 WHERE user_id = $1 AND ($2 OR NOT is_archived)
		 ORDER BY created_at DESC`,
		userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	result := []BlockSummary{}
	for rows.Next() {
		var s BlockSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.NumberOfWeeks, &s.DaysPerWeek,
			&s.Source, &s.IsActive, &s.IsArchived, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeleteBlock removes a block; its sessions go with it.
func (db *DB) DeleteBlock(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM blocks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting block %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("block %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetActiveBlock makes one block the user's only active block.
func (db *DB) SetActiveBlock(ctx context.Context, userID int, id uuid.UUID) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE blocks SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active AND id <> $2`,
			userID, id); err != nil {
			return fmt.Errorf("deactivating blocks: %w", err)
		}
		tag, err := tx.Exec(ctx,
			`UPDATE blocks SET is_active = TRUE, is_archived = FALSE, updated_at = NOW()
			 WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("activating block %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("block %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ArchiveBlock archives a block and clears its active flag.
func (db *DB) ArchiveBlock(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE blocks SET is_archived = TRUE, is_active = FALSE, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("archiving block %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("block %s: %w", id, ErrNotFound)
	}
	return nil
}
