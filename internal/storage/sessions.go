package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/sessions"
)

// ErrSetNotFound is returned when a logged set addresses no expected set.
var ErrSetNotFound = errors.New("set not found")

// ListSessions returns a block's sessions in week then day order. A week of
// zero returns every week.
func (db *DB) ListSessions(ctx context.Context, userID int, blockID uuid.UUID, week int) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT doc FROM workout_sessions
		 WHERE block_id = $1 AND user_id = $2 AND ($3 = 0 OR week_index = $3)
		 ORDER BY week_index, seq`,
		blockID, userID, week)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]models.WorkoutSession, error) {
	defer rows.Close()
	result := []models.WorkoutSession{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		var ws models.WorkoutSession
		if err := json.Unmarshal(doc, &ws); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		result = append(result, ws)
	}
	return result, rows.Err()
}

// GetSession returns one session owned by the user.
func (db *DB) GetSession(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutSession, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT doc FROM workout_sessions WHERE id = $1 AND user_id = $2`, id, userID).Scan(&doc)
	if err != nil {
		return nil, notFound(err, "session")
	}
	var ws models.WorkoutSession
	if err := json.Unmarshal(doc, &ws); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &ws, nil
}

// LogSet records a set on a session under a row lock and stores the
// refreshed session.
func (db *DB) LogSet(ctx context.Context, userID int, sessionID, exerciseID uuid.UUID, index int, entry models.SetLog, now time.Time) (*models.WorkoutSession, error) {
	var ws models.WorkoutSession
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var doc []byte
		if err := tx.QueryRow(ctx,
			`SELECT doc FROM workout_sessions WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			sessionID, userID).Scan(&doc); err != nil {
			return notFound(err, "session")
		}
		if err := json.Unmarshal(doc, &ws); err != nil {
			return fmt.Errorf("decoding session: %w", err)
		}
		if !ws.LogSet(exerciseID, index, entry, now) {
			return fmt.Errorf("exercise %s set %d: %w", exerciseID, index, ErrSetNotFound)
		}
		return updateSession(ctx, tx, ws)
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func updateSession(ctx context.Context, tx pgx.Tx, ws models.WorkoutSession) error {
	doc, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", ws.ID, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE workout_sessions SET status = $2, doc = $3, updated_at = NOW() WHERE id = $1`,
		ws.ID, string(ws.Status), doc); err != nil {
		return fmt.Errorf("updating session %s: %w", ws.ID, err)
	}
	return nil
}

// AddExerciseResult is the outcome of a late exercise addition.
type AddExerciseResult struct {
	Block            *models.Block `json:"block"`
	SessionsExtended int           `json:"sessions_extended"`
}

// AddExercise appends an exercise to a day of a stored block and extends the
// block's later sessions, reading and writing under row locks in a single
// transaction. Index errors from the materializer are returned before
// anything is written.
func (db *DB) AddExercise(ctx context.Context, userID int, blockID uuid.UUID, mat sessions.Materializer,
	dayIndex int, name string, typ models.ExerciseType, fromWeek int) (*AddExerciseResult, error) {
	var result AddExerciseResult
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		block, err := scanBlock(tx.QueryRow(ctx,
			`SELECT doc, is_active, is_archived FROM blocks WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			blockID, userID))
		if err != nil {
			return err
		}
		rows, err := tx.Query(ctx,
			`SELECT doc FROM workout_sessions WHERE block_id = $1 ORDER BY week_index, seq FOR UPDATE`, blockID)
		if err != nil {
			return fmt.Errorf("querying sessions: %w", err)
		}
		existing, err := collectSessions(rows)
		if err != nil {
			return err
		}

		updated, extended, err := mat.AddExerciseToTemplate(*block, existing, dayIndex, name, typ, fromWeek)
		if err != nil {
			return err
		}

		doc, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("encoding block: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE blocks SET doc = $2, updated_at = NOW() WHERE id = $1`, blockID, doc); err != nil {
			return fmt.Errorf("updating block %s: %w", blockID, err)
		}
		for i := range extended {
			if len(extended[i].Exercises) == len(existing[i].Exercises) {
				continue
			}
			if err := updateSession(ctx, tx, extended[i]); err != nil {
				return err
			}
			result.SessionsExtended++
		}
		result.Block = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
