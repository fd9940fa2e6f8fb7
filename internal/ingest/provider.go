// Package ingest turns uploaded block payloads into stored blocks and
// materialized sessions.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/claude/blockboard/internal/ingest/chatgpt"
	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/normalize"
	"github.com/claude/blockboard/internal/sessions"
)

// ErrUnreadable marks a payload that is neither JSON nor a recognised
// chat-assistant layout.
var ErrUnreadable = errors.New("unreadable payload")

// Result holds the outcome of an ingest operation.
type Result struct {
	BlockID         string `json:"block_id,omitempty"`
	Title           string `json:"title"`
	Format          string `json:"format"`
	NumberOfWeeks   int    `json:"number_of_weeks"`
	DaysPerWeek     int    `json:"days_per_week"`
	BlocksCreated   int    `json:"blocks_created"`
	SessionsCreated int    `json:"sessions_created"`

	Message string `json:"message,omitempty"`
}

// IsBlockFile reports whether a file name looks like an authored block:
// JSON or a saved chat-assistant response.
func IsBlockFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".txt":
		return true
	}
	return false
}

// Decode turns a payload into the canonical model. JSON objects go straight
// to the normalizer; anything else is read as a chat-assistant response.
// The returned format names the detected layout.
func Decode(data []byte) (*models.UnifiedBlock, string, error) {
	trimmed := bytes.TrimSpace(data)
	format := normalize.Detect(trimmed).String()
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		converted, chatFormat, err := chatgpt.Convert(string(data))
		if err != nil {
			return nil, string(chatFormat), fmt.Errorf("%w: parsing chat response: %w", ErrUnreadable, err)
		}
		trimmed, format = converted, string(chatFormat)
	}
	u, err := normalize.Normalize(trimmed)
	if err != nil {
		return nil, format, err
	}
	return u, format, nil
}

// Prepared is a decoded payload ready to be stored.
type Prepared struct {
	Unified  *models.UnifiedBlock
	Block    *models.Block
	Sessions []models.WorkoutSession
	Format   string
}

// Result summarizes the prepared block without a stored ID.
func (p *Prepared) Result() *Result {
	return &Result{
		Title:           p.Block.Name,
		Format:          p.Format,
		NumberOfWeeks:   p.Block.NumberOfWeeks,
		DaysPerWeek:     len(p.Block.Days),
		SessionsCreated: len(p.Sessions),
	}
}

// BlockStore persists a block together with its sessions.
type BlockStore interface {
	InsertBlock(ctx context.Context, userID int, b *models.Block, ws []models.WorkoutSession) error
}

// Provider decodes payloads and stores the resulting blocks.
type Provider struct {
	store BlockStore
	mat   sessions.Materializer
	log   *slog.Logger
}

// NewProvider creates a new ingest provider.
func NewProvider(store BlockStore, mat sessions.Materializer, log *slog.Logger) *Provider {
	return &Provider{store: store, mat: mat, log: log}
}

// Prepare decodes a payload, converts it to a block and materializes its
// sessions without storing anything.
func (p *Provider) Prepare(data []byte) (*Prepared, error) {
	u, format, err := Decode(data)
	if err != nil {
		return nil, err
	}
	b := normalize.ToBlock(u)
	return &Prepared{
		Unified:  u,
		Block:    b,
		Sessions: p.mat.MakeSessions(b),
		Format:   format,
	}, nil
}

// Ingest decodes a payload and stores the block and its sessions.
func (p *Provider) Ingest(ctx context.Context, data []byte, userID int) (*Result, error) {
	prep, err := p.Prepare(data)
	if err != nil {
		return nil, err
	}
	if err := p.store.InsertBlock(ctx, userID, prep.Block, prep.Sessions); err != nil {
		return nil, fmt.Errorf("storing block: %w", err)
	}

	result := prep.Result()
	result.BlockID = prep.Block.ID.String()
	result.BlocksCreated = 1
	p.log.Info("block imported",
		"block_id", result.BlockID,
		"title", result.Title,
		"format", result.Format,
		"weeks", result.NumberOfWeeks,
		"sessions", result.SessionsCreated,
	)
	return result, nil
}
