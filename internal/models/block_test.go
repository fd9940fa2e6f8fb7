package models

import (
	"encoding/json"
	"testing"
)

func daysNamed(names ...string) []DayTemplate {
	out := make([]DayTemplate, len(names))
	for i, n := range names {
		out[i] = DayTemplate{Name: n}
	}
	return out
}

func dayNames(days []DayTemplate) []string {
	var out []string
	for _, d := range days {
		out = append(out, d.Name)
	}
	return out
}

// TestDaysForWeek_Cycles verifies that two week templates alternate across a
// four-week block.
func TestDaysForWeek_Cycles(t *testing.T) {
	b := Block{
		NumberOfWeeks: 4,
		WeekTemplates: [][]DayTemplate{daysNamed("A"), daysNamed("B")},
	}
	want := []string{"A", "B", "A", "B"}
	for w := 1; w <= 4; w++ {
		got := dayNames(b.DaysForWeek(w))
		if len(got) != 1 || got[0] != want[w-1] {
			t.Errorf("week %d days = %v, want [%s]", w, got, want[w-1])
		}
	}
}

// TestDaysForWeek_Truncates verifies that weeks beyond numberOfWeeks are
// never produced even when more templates exist.
func TestDaysForWeek_Truncates(t *testing.T) {
	b := Block{
		NumberOfWeeks: 2,
		WeekTemplates: [][]DayTemplate{daysNamed("A"), daysNamed("B"), daysNamed("C"), daysNamed("D")},
	}
	if got := b.DaysForWeek(3); got != nil {
		t.Errorf("week 3 days = %v, want nil", dayNames(got))
	}
	if got := b.DaysForWeek(0); got != nil {
		t.Errorf("week 0 days = %v, want nil", dayNames(got))
	}
	if got := dayNames(b.DaysForWeek(2)); len(got) != 1 || got[0] != "B" {
		t.Errorf("week 2 days = %v, want [B]", got)
	}
}

// TestDaysForWeek_FallsBackToDays verifies that an empty template list
// repeats the default days.
func TestDaysForWeek_FallsBackToDays(t *testing.T) {
	b := Block{
		NumberOfWeeks: 3,
		Days:          daysNamed("Upper", "Lower"),
		WeekTemplates: [][]DayTemplate{},
	}
	got := dayNames(b.DaysForWeek(3))
	if len(got) != 2 || got[0] != "Upper" || got[1] != "Lower" {
		t.Errorf("week 3 days = %v, want [Upper Lower]", got)
	}
}

// TestUnifiedDaysForWeek verifies that the canonical block uses the same
// resolution rule.
func TestUnifiedDaysForWeek(t *testing.T) {
	b := UnifiedBlock{
		NumberOfWeeks: 3,
		Weeks:         [][]UnifiedDay{{{Name: "A"}}, {{Name: "B"}}},
	}
	if got := b.DaysForWeek(3); len(got) != 1 || got[0].Name != "A" {
		t.Errorf("week 3 = %+v, want A", got)
	}
}

// TestClone_Independent verifies that appending to a cloned day does not
// affect the original block.
func TestClone_Independent(t *testing.T) {
	b := Block{Days: []DayTemplate{{Name: "A", Exercises: make([]ExerciseTemplate, 1, 4)}}}
	c := b.Clone()
	c.Days[0].Exercises = append(c.Days[0].Exercises, ExerciseTemplate{CustomName: "New"})
	c.Days[0].Name = "changed"
	if len(b.Days[0].Exercises) != 1 {
		t.Errorf("original exercises = %d, want 1", len(b.Days[0].Exercises))
	}
	if b.Days[0].Name != "A" {
		t.Errorf("original name = %q, want A", b.Days[0].Name)
	}
}

// TestProgressionRule_IsDeload verifies deload lookup by 1-based week.
func TestProgressionRule_IsDeload(t *testing.T) {
	r := ProgressionRule{Type: ProgressionWeight, DeloadWeekIndexes: []int{4}}
	if !r.IsDeload(4) {
		t.Error("week 4 should be a deload")
	}
	if r.IsDeload(3) {
		t.Error("week 3 should not be a deload")
	}
}

// TestDayTemplate_EmptyExercisesSurvive verifies that an empty exercise list
// stays distinct from an absent one after encoding.
func TestDayTemplate_EmptyExercisesSurvive(t *testing.T) {
	in := DayTemplate{Name: "Class", Exercises: []ExerciseTemplate{}, Segments: []Segment{{Name: "Warm", SegmentType: "warmup"}}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out DayTemplate
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Exercises == nil {
		t.Error("exercises decoded as nil, want empty list")
	}
	if len(out.Segments) != 1 || out.Segments[0].Name != "Warm" {
		t.Errorf("segments = %+v", out.Segments)
	}
}
