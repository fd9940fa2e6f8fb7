package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func testSession() WorkoutSession {
	exID := uuid.New()
	return WorkoutSession{
		ID:     uuid.New(),
		Status: StatusNotStarted,
		Exercises: []SessionExercise{{
			ID:         exID,
			CustomName: "Squat",
			Type:       ExerciseStrength,
			ExpectedSets: []SessionSet{
				{ID: uuid.New(), Index: 0, ExpectedReps: intPtr(5)},
				{ID: uuid.New(), Index: 1, ExpectedReps: intPtr(5)},
			},
			LoggedSets: []SessionSet{},
		}},
	}
}

// TestSetCompleted_Timestamps verifies that completedAt is stamped on the
// transition to completed, kept on repeated completion and cleared on revert.
func TestSetCompleted_Timestamps(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	var s SessionSet
	s.SetCompleted(true, t1)
	if s.CompletedAt == nil || !s.CompletedAt.Equal(t1) {
		t.Fatalf("CompletedAt = %v, want %v", s.CompletedAt, t1)
	}
	s.SetCompleted(true, t2)
	if !s.CompletedAt.Equal(t1) {
		t.Errorf("CompletedAt after repeat = %v, want %v", s.CompletedAt, t1)
	}
	s.SetCompleted(false, t2)
	if s.CompletedAt != nil || s.IsCompleted {
		t.Errorf("after revert: completed=%v at=%v, want false/nil", s.IsCompleted, s.CompletedAt)
	}
}

// TestSessionSegment_SetCompleted verifies the same rule on segments.
func TestSessionSegment_SetCompleted(t *testing.T) {
	now := time.Now()
	var seg SessionSegment
	seg.SetCompleted(true, now)
	if seg.CompletedAt == nil {
		t.Fatal("CompletedAt is nil after completion")
	}
	seg.SetCompleted(false, now)
	if seg.CompletedAt != nil {
		t.Error("CompletedAt not cleared after revert")
	}
}

// TestLogSet verifies that logging copies the expected set, records values
// and updates the session status.
func TestLogSet(t *testing.T) {
	ws := testSession()
	exID := ws.Exercises[0].ID
	w := 102.5

	if !ws.LogSet(exID, 0, SetLog{Reps: intPtr(5), Weight: &w}, time.Now()) {
		t.Fatal("LogSet returned false")
	}
	ex := ws.Exercises[0]
	if len(ex.LoggedSets) != 1 {
		t.Fatalf("logged sets = %d, want 1", len(ex.LoggedSets))
	}
	got := ex.LoggedSets[0]
	if *got.LoggedWeight != 102.5 || *got.LoggedReps != 5 || *got.ExpectedReps != 5 {
		t.Errorf("logged set = %+v", got)
	}
	if ws.Status != StatusInProgress {
		t.Errorf("status = %s, want %s", ws.Status, StatusInProgress)
	}

	ws.LogSet(exID, 1, SetLog{}, time.Now())
	if ws.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", ws.Status, StatusCompleted)
	}

	done := false
	ws.LogSet(exID, 1, SetLog{Completed: &done}, time.Now())
	if len(ws.Exercises[0].LoggedSets) != 2 {
		t.Errorf("logged sets = %d, want 2", len(ws.Exercises[0].LoggedSets))
	}
	if ws.Status != StatusInProgress {
		t.Errorf("status after revert = %s, want %s", ws.Status, StatusInProgress)
	}
}

// TestLogSet_Unknown verifies that unknown exercises or set indexes are
// reported and leave the session untouched.
func TestLogSet_Unknown(t *testing.T) {
	ws := testSession()
	if ws.LogSet(uuid.New(), 0, SetLog{}, time.Now()) {
		t.Error("LogSet with unknown exercise returned true")
	}
	if ws.LogSet(ws.Exercises[0].ID, 9, SetLog{}, time.Now()) {
		t.Error("LogSet with unknown index returned true")
	}
	if len(ws.Exercises[0].LoggedSets) != 0 {
		t.Errorf("logged sets = %d, want 0", len(ws.Exercises[0].LoggedSets))
	}
}
