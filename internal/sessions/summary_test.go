package sessions

import (
	"testing"
	"time"

	"github.com/claude/blockboard/internal/models"
)

// TestWeekSummary verifies per-week set counts and completion.
func TestWeekSummary(t *testing.T) {
	b := testBlock(2, day("A", squat()), day("B", squat()))
	sessions := MakeSessions(&b)
	for i := range sessions {
		if sessions[i].WeekIndex != 1 {
			continue
		}
		ex := sessions[i].Exercises[0]
		sessions[i].LogSet(ex.ID, 0, models.SetLog{}, time.Now())
	}

	got := WeekSummary(sessions)
	if len(got) != 2 {
		t.Fatalf("weeks = %d, want 2", len(got))
	}
	if got[0].WeekIndex != 1 || !got[0].Complete || got[0].CompletedSessions != 2 || got[0].TotalSets != 2 {
		t.Errorf("week 1 = %+v", got[0])
	}
	if got[1].Complete || got[1].CompletedSets != 0 || got[1].Sessions != 2 {
		t.Errorf("week 2 = %+v", got[1])
	}
}
