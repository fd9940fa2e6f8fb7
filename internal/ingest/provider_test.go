package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/blockboard/internal/ingest/chatgpt"
	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/normalize"
	"github.com/claude/blockboard/internal/sessions"
)

type memStore struct {
	blocks   []*models.Block
	sessions int
	err      error
}

func (m *memStore) InsertBlock(_ context.Context, _ int, b *models.Block, ws []models.WorkoutSession) error {
	if m.err != nil {
		return m.err
	}
	m.blocks = append(m.blocks, b)
	m.sessions += len(ws)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const daysJSON = `{"Title":"Two Day","NumberOfWeeks":3,"Days":[
	{"name":"A","exercises":[{"name":"Squat","setsReps":"3x5"}]},
	{"name":"B","exercises":[{"name":"Bench","setsReps":"3x5"}]}]}`

// TestDecodeJSON verifies JSON payloads keep their detected shape name.
func TestDecodeJSON(t *testing.T) {
	u, format, err := Decode([]byte("  " + daysJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != normalize.ShapeDays.String() {
		t.Errorf("format = %s, want %s", format, normalize.ShapeDays)
	}
	if u.Title != "Two Day" || len(u.Days) != 2 {
		t.Errorf("unified = %+v", u)
	}
}

// TestDecodeChatText verifies non-JSON payloads go through the chat parser.
func TestDecodeChatText(t *testing.T) {
	u, format, err := Decode([]byte("Title: Chat Block\nExercises:\nSquat | 3x5 | 120 | Brace"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "chat_human_readable" {
		t.Errorf("format = %s", format)
	}
	if u.Source != models.SourceAI || u.Days[0].Exercises[0].Name != "Squat" {
		t.Errorf("unified = %+v", u)
	}
}

// TestDecodeParseError verifies normalizer errors surface unchanged.
func TestDecodeParseError(t *testing.T) {
	_, _, err := Decode([]byte(`{"Title":"x","Exercises":[{"name":"Squat","setsReps":"lots"}]}`))
	var pe *normalize.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

// TestIngest verifies the block and every session reach the store.
// TestDecodeUnreadable verifies chat text without a recognised layout is
// reported as unreadable and keeps the parser's cause.
func TestDecodeUnreadable(t *testing.T) {
	_, _, err := Decode([]byte("JSON: no object here"))
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("err = %v, want ErrUnreadable", err)
	}
	if !errors.Is(err, chatgpt.ErrNoJSONObject) {
		t.Errorf("err = %v, want ErrNoJSONObject", err)
	}
}

func TestIngest(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, sessions.Materializer{}, discardLogger())
	result, err := p.Ingest(context.Background(), []byte(daysJSON), 1)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.BlocksCreated != 1 || result.SessionsCreated != 6 || result.DaysPerWeek != 2 {
		t.Errorf("result = %+v", result)
	}
	if len(store.blocks) != 1 || store.sessions != 6 {
		t.Errorf("stored %d blocks, %d sessions", len(store.blocks), store.sessions)
	}
	if result.BlockID != store.blocks[0].ID.String() {
		t.Errorf("block id = %s, want %s", result.BlockID, store.blocks[0].ID)
	}
}

// TestIngestStoreError verifies storage failures are wrapped.
func TestIngestStoreError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProvider(&memStore{err: boom}, sessions.Materializer{}, discardLogger())
	if _, err := p.Ingest(context.Background(), []byte(daysJSON), 1); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

// TestIsBlockFile verifies only .json and .txt files are picked up.
func TestIsBlockFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"block.json", true},
		{"BLOCK.JSON", true},
		{"chat.txt", true},
		{"notes.md", false},
		{"archive.zip", false},
		{"json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlockFile(tt.name); got != tt.want {
				t.Errorf("IsBlockFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
