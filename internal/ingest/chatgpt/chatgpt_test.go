package chatgpt

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/normalize"
)

const structuredSample = `Here is your block.

BLOCK: Spring Strength
DESCRIPTION: Four weeks of basics
WEEKS: 3
GOAL: strength

DAY 1: Lower
SHORT: L1
---
Exercise: Back Squat
Type: strength
Category: squat
Sets: 5 x Reps: 5
Weight: 225
RPE: 8
Rest: 180
Progression: +5 lbs
---
Exercise: Row Erg
Type: conditioning
ConditioningType: intervals
Duration: 10
Rounds: 5
Effort: hard
Rest: 60
Notes: Stay smooth

DAY 2: Upper
Exercise: Bench Press
Sets: 4 x Reps: 8
%Max: 75
Progression: +1 set per week
`

const humanSample = `Title: Quick Full Body
Goal: Build muscle
Target Athlete: Intermediate
Duration (minutes): 45
Difficulty (1-5): 9
Equipment: Dumbbells
Warm-Up: 5 min bike
Exercises:
- Perform in order
Goblet Squat | 3x10 | 90 sec | Slow eccentric
Push-up | 3 x AMRAP | 60 | Full range
Broken line without pipes
Finisher: Farmer carry
Notes: Keep rest honest
Estimated Total Time (minutes): 50 or so
Progression: Add 5 lbs weekly
`

// TestExtractJSON covers the marker, brace matching and the unbalanced
// fallback.
func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		err  error
	}{
		{"balanced", "Intro {ignored}\nJSON: here\n{\"a\":{\"b\":1}} trailing }", `{"a":{"b":1}}`, nil},
		{"indented marker", "  JSON:{\"a\":1}", `{"a":1}`, nil},
		{"unbalanced", "JSON:\n{\"a\":{\"b\":1}", `{"a":{"b":1}`, nil},
		{"no marker", "{\"a\":1}", "", ErrNoJSONSection},
		{"no brace", "JSON: none", "", ErrNoJSONObject},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.text)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if string(got) != tc.want {
				t.Errorf("json = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestConvertJSONSection verifies a chat JSON section normalizes as an AI
// block.
func TestConvertJSONSection(t *testing.T) {
	text := "Sure!\nJSON:\n{\"Title\":\"Pull Day\",\"Exercises\":[{\"name\":\"Chin-up\",\"setsReps\":\"4x6\"}]}\nEnjoy."
	data, format, err := Convert(text)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if format != FormatJSON {
		t.Errorf("format = %s, want %s", format, FormatJSON)
	}
	u, err := normalize.Normalize(data)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if u.Source != models.SourceAI {
		t.Errorf("source = %s, want ai", u.Source)
	}
	if len(u.Days) != 1 || len(u.Days[0].Exercises[0].StrengthSets) != 4 {
		t.Errorf("days = %+v", u.Days)
	}
}

// TestParseStructured verifies days, strength set expansion, conditioning
// fields and progression parsing.
func TestParseStructured(t *testing.T) {
	data, format, err := Convert(structuredSample)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if format != FormatStructured {
		t.Errorf("format = %s, want %s", format, FormatStructured)
	}
	u, err := normalize.Normalize(data)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if u.Title != "Spring Strength" || u.NumberOfWeeks != 3 || u.Source != models.SourceAI {
		t.Errorf("block = %q weeks %d source %s", u.Title, u.NumberOfWeeks, u.Source)
	}
	if len(u.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(u.Days))
	}
	lower := u.Days[0]
	if lower.ShortCode == nil || *lower.ShortCode != "L1" || len(lower.Exercises) != 2 {
		t.Fatalf("lower = %+v", lower)
	}

	squat := lower.Exercises[0]
	if len(squat.StrengthSets) != 5 {
		t.Fatalf("squat sets = %d, want 5", len(squat.StrengthSets))
	}
	set := squat.StrengthSets[4]
	if *set.Reps != 5 || *set.Weight != 225 || *set.RPE != 8 || *set.RestSeconds != 180 || set.Index != 4 {
		t.Errorf("squat set = %+v", set)
	}
	if squat.Progression == nil || squat.Progression.Type != models.ProgressionWeight || *squat.Progression.DeltaWeight != 5 {
		t.Errorf("squat progression = %+v", squat.Progression)
	}

	row := lower.Exercises[1]
	if row.Type != models.ExerciseConditioning || len(row.ConditioningSets) != 1 {
		t.Fatalf("row = %+v", row)
	}
	cs := row.ConditioningSets[0]
	if *cs.DurationSeconds != 600 || *cs.Rounds != 5 || *cs.EffortDescriptor != "hard" {
		t.Errorf("row set = %+v", cs)
	}

	bench := u.Days[1].Exercises[0]
	if len(bench.StrengthSets) != 4 || *bench.StrengthSets[0].PercentageOfMax != 0.75 {
		t.Errorf("bench sets = %+v", bench.StrengthSets)
	}
	if bench.Progression.Type != models.ProgressionVolume || *bench.Progression.DeltaSets != 1 {
		t.Errorf("bench progression = %+v", bench.Progression)
	}
}

// TestParseStructuredErrors verifies a missing name or missing days fail.
func TestParseStructuredErrors(t *testing.T) {
	if _, err := ParseStructured("BLOCK:\nDAY 1: A"); !errors.Is(err, ErrMissingTitle) {
		t.Errorf("err = %v, want ErrMissingTitle", err)
	}
	if _, err := ParseStructured("BLOCK: Empty\nWEEKS: 2"); !errors.Is(err, ErrNoDays) {
		t.Errorf("err = %v, want ErrNoDays", err)
	}
}

// TestParseStructuredDefaults verifies default weeks, set count and an
// unnamed day.
func TestParseStructuredDefaults(t *testing.T) {
	data, err := ParseStructured("BLOCK: B\nDAY:\nExercise: Press\nSets: 0 x Reps: 5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var b structuredBlock
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.NumberOfWeeks != 4 || b.Days[0].Name != "Day 1" || len(b.Days[0].Exercises[0].Sets) != 3 {
		t.Errorf("block = %+v", b)
	}
}

// TestParseStructuredSeparators verifies "---" only starts an exercise when
// lines follow it that are not a new "Exercise:" header.
func TestParseStructuredSeparators(t *testing.T) {
	data, err := ParseStructured("BLOCK: B\nDAY 1: A\n---\nExercise: Squat\n---\nExercise: Row\n---\nSets: 2 x Reps: 10\n---")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var b structuredBlock
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var names []string
	for _, e := range b.Days[0].Exercises {
		names = append(names, e.Name)
	}
	want := []string{"Squat", "Row", "Unnamed Exercise"}
	if len(names) != len(want) {
		t.Fatalf("exercises = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("exercise %d = %q, want %q", i, names[i], want[i])
		}
	}
}

// TestParseStructuredLimits verifies oversized set and week counts end in a
// parse error rather than a huge block.
func TestParseStructuredLimits(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"sets", "BLOCK: B\nDAY 1: A\nExercise: Squat\nSets: 2000000000 x Reps: 5"},
		{"sets overflow", "BLOCK: B\nDAY 1: A\nExercise: Squat\nSets: 99999999999999999999 x Reps: 5"},
		{"weeks", "BLOCK: B\nWEEKS: 100000000\nDAY 1: A\nExercise: Squat"},
		{"weeks overflow", "BLOCK: B\nWEEKS: 99999999999999999999\nDAY 1: A\nExercise: Squat"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := ParseStructured(tc.input)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, err = normalize.Normalize(data)
			var pe *normalize.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("normalize err = %v, want *ParseError", err)
			}
		})
	}
}

// TestParseHumanReadable verifies headers, exercise lines and clamping.
func TestParseHumanReadable(t *testing.T) {
	data, format, err := Convert(humanSample)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if format != FormatHumanReadable {
		t.Errorf("format = %s, want %s", format, FormatHumanReadable)
	}
	var b humanBlock
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Title != "Quick Full Body" || b.Difficulty != 5 || b.DurationMinutes != 45 || b.EstimatedTotalTimeMinutes != 50 {
		t.Errorf("block = %+v", b)
	}
	if len(b.Exercises) != 2 {
		t.Fatalf("exercises = %+v, want 2", b.Exercises)
	}
	if ex := b.Exercises[0]; ex.SetsReps != "3x10" || ex.RestSeconds != 90 || ex.IntensityCue != "Slow eccentric" {
		t.Errorf("goblet = %+v", ex)
	}
	if ex := b.Exercises[1]; ex.SetsReps != "" || ex.Notes != "3 x AMRAP; Full range" {
		t.Errorf("push-up = %+v", ex)
	}

	u, err := normalize.Normalize(data)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if u.Source != models.SourceAI || len(u.Days) != 1 || len(u.Days[0].Exercises) != 2 {
		t.Errorf("unified = %+v", u)
	}
}

// TestParseHumanReadableMissingTitle verifies the title is required.
func TestParseHumanReadableMissingTitle(t *testing.T) {
	if _, err := ParseHumanReadable("Goal: strength\nExercises:\nSquat | 3x5 | 120"); !errors.Is(err, ErrMissingTitle) {
		t.Errorf("err = %v, want ErrMissingTitle", err)
	}
}

// TestParseProgression covers volume, weight and custom text.
func TestParseProgression(t *testing.T) {
	if r := parseProgression("+2 sets"); r.Type != models.ProgressionVolume || *r.DeltaSets != 2 {
		t.Errorf("volume = %+v", r)
	}
	if r := parseProgression("+2.5 kg"); r.Type != models.ProgressionWeight || *r.DeltaWeight != 2.5 {
		t.Errorf("weight = %+v", r)
	}
	if r := parseProgression("add a pause"); r.Type != models.ProgressionCustom || r.CustomParams["description"] != "add a pause" {
		t.Errorf("custom = %+v", r)
	}
}
