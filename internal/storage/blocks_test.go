package storage

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeRow replays fixed column values through Scan.
type fakeRow struct {
	doc              []byte
	active, archived bool
	err              error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.doc
	*dest[1].(*bool) = r.active
	*dest[2].(*bool) = r.archived
	return nil
}

// TestScanBlockFlags verifies the flag columns override the stored document.
func TestScanBlockFlags(t *testing.T) {
	row := fakeRow{
		doc:      []byte(`{"name":"Strength","numberOfWeeks":4,"isActive":false,"isArchived":true}`),
		active:   true,
		archived: false,
	}
	b, err := scanBlock(row)
	if err != nil {
		t.Fatalf("scanBlock: %v", err)
	}
	if !b.IsActive || b.IsArchived {
		t.Errorf("flags = active %v archived %v, want true false", b.IsActive, b.IsArchived)
	}
	if b.NumberOfWeeks != 4 {
		t.Errorf("NumberOfWeeks = %d, want 4", b.NumberOfWeeks)
	}
}

// TestScanBlockErrors verifies missing rows map to ErrNotFound and other
// failures do not.
func TestScanBlockErrors(t *testing.T) {
	tests := []struct {
		name         string
		row          fakeRow
		wantNotFound bool
	}{
		{name: "no rows", row: fakeRow{err: pgx.ErrNoRows}, wantNotFound: true},
		{name: "query failure", row: fakeRow{err: errors.New("connection reset")}},
		{name: "corrupt document", row: fakeRow{doc: []byte("{")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanBlock(tt.row)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v (err %v)", got, tt.wantNotFound, err)
			}
		})
	}
}
