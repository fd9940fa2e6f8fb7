package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListBlocks(ctx context.Context, userID int, includeArchived bool) ([]storage.BlockSummary, error)
	GetBlock(ctx context.Context, userID int, id uuid.UUID) (*models.Block, error)
	ActiveBlock(ctx context.Context, userID int) (*models.Block, error)
	ListSessions(ctx context.Context, userID int, blockID uuid.UUID, week int) ([]models.WorkoutSession, error)
	AddExercise(ctx context.Context, userID int, blockID uuid.UUID, mat sessions.Materializer,
		dayIndex int, name string, typ models.ExerciseType, fromWeek int) (*storage.AddExerciseResult, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
