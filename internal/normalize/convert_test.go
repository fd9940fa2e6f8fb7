package normalize

import (
	"encoding/json"
	"testing"

	"github.com/claude/blockboard/internal/models"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

// TestToBlock_FreshIDs verifies that every day and exercise gets its own id.
func TestToBlock_FreshIDs(t *testing.T) {
	u := &models.UnifiedBlock{
		Title:         "T",
		NumberOfWeeks: 2,
		Days: []models.UnifiedDay{
			{Name: "A", Exercises: []models.UnifiedExercise{{Name: "Squat", Type: models.ExerciseStrength}}},
			{Name: "B", Exercises: []models.UnifiedExercise{{Name: "Bench", Type: models.ExerciseStrength}}},
		},
	}
	b := ToBlock(u)
	if b.Days[0].ID == b.Days[1].ID {
		t.Error("day ids collide")
	}
	if b.Days[0].Exercises[0].ID == b.Days[1].Exercises[0].ID {
		t.Error("exercise ids collide")
	}
	if b.Days[0].Exercises[0].ProgressionRule.Type != models.ProgressionCustom {
		t.Errorf("rule = %s, want custom", b.Days[0].Exercises[0].ProgressionRule.Type)
	}
	if b.WeekTemplates != nil {
		t.Errorf("weekTemplates = %v, want nil", b.WeekTemplates)
	}
}

// TestToBlock_WeeksShareFirstWeekIDs verifies that the default days are the
// first week's days.
func TestToBlock_WeeksShareFirstWeekIDs(t *testing.T) {
	u := &models.UnifiedBlock{
		Title:         "T",
		NumberOfWeeks: 4,
		Weeks: [][]models.UnifiedDay{
			{{Name: "A", Exercises: []models.UnifiedExercise{}}},
			{{Name: "B", Exercises: []models.UnifiedExercise{}}},
		},
	}
	b := ToBlock(u)
	if len(b.WeekTemplates) != 2 {
		t.Fatalf("weekTemplates = %d, want 2", len(b.WeekTemplates))
	}
	if b.Days[0].ID != b.WeekTemplates[0][0].ID {
		t.Error("days[0] should share the id of weekTemplates[0][0]")
	}
	if b.DaysForWeek(3)[0].ID != b.Days[0].ID {
		t.Error("week 3 should reuse the first week's day ids")
	}
}

// TestRoundTrip_SegmentOnly verifies that a segment-only day survives
// Unified to Block and back.
func TestRoundTrip_SegmentOnly(t *testing.T) {
	mins := 15
	u := &models.UnifiedBlock{
		Title:         "BJJ",
		NumberOfWeeks: 1,
		Tags:          []string{},
		Disciplines:   []string{"bjj"},
		Source:        models.SourceUser,
		Days: []models.UnifiedDay{{
			Name:      "Class",
			Exercises: []models.UnifiedExercise{},
			Segments:  []models.Segment{{Name: "Warmup", SegmentType: "warmup", DurationMinutes: &mins}},
		}},
	}
	back := FromBlock(ToBlock(u))
	if string(mustJSON(t, back)) != string(mustJSON(t, u)) {
		t.Errorf("round trip changed block:\n got %s\nwant %s", mustJSON(t, back), mustJSON(t, u))
	}
}

// TestFromBlock_WeekTemplates verifies that per-week templates are carried
// into the canonical weeks.
func TestFromBlock_WeekTemplates(t *testing.T) {
	b := &models.Block{
		Name:          "W",
		NumberOfWeeks: 2,
		Days:          []models.DayTemplate{{Name: "A"}},
		WeekTemplates: [][]models.DayTemplate{{{Name: "A"}}, {{Name: "B"}}},
	}
	u := FromBlock(b)
	if len(u.Weeks) != 2 || u.Weeks[1][0].Name != "B" {
		t.Errorf("weeks = %+v", u.Weeks)
	}
	if u.Source != models.SourceUser {
		t.Errorf("source = %q, want user", u.Source)
	}
}
