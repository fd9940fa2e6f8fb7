package models

import "testing"

// TestNormalizeSegmentType_Aliases verifies that common spellings of segment
// types map onto the canonical names used by the whiteboard grouping.
func TestNormalizeSegmentType_Aliases(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"warmup", "warmup"},
		{"Warm-Up", "warmup"},
		{"warm up", "warmup"},
		{"  WARMUP ", "warmup"},
		{"Positional Sparring", "positionalSpar"},
		{"positionalSpar", "positionalSpar"},
		{"Cool Down", "cooldown"},
		{"drilling", "drill"},
		{"Breathwork", "breathwork"},
	}
	for _, tc := range cases {
		got, known := NormalizeSegmentType(tc.input)
		if !known {
			t.Errorf("NormalizeSegmentType(%q): expected known=true", tc.input)
		}
		if got != tc.want {
			t.Errorf("NormalizeSegmentType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// TestNormalizeSegmentType_Unknown verifies that unknown types pass through
// trimmed with known=false so authored content is never lost.
func TestNormalizeSegmentType_Unknown(t *testing.T) {
	got, known := NormalizeSegmentType("  Open Mat  ")
	if known {
		t.Error("expected known=false for unknown segment type")
	}
	if got != "Open Mat" {
		t.Errorf("NormalizeSegmentType = %q, want %q", got, "Open Mat")
	}
}

// TestNormalizeCategory verifies category aliases and the main-lift set.
func TestNormalizeCategory(t *testing.T) {
	got, known := NormalizeCategory("Horizontal Press")
	if !known || got != CategoryPressHorizontal {
		t.Errorf("NormalizeCategory = %q (%v), want %q", got, known, CategoryPressHorizontal)
	}
	if !IsMainLiftCategory(CategorySquat) {
		t.Error("squat should be a main lift")
	}
	if IsMainLiftCategory(CategoryCore) {
		t.Error("core should not be a main lift")
	}
}
