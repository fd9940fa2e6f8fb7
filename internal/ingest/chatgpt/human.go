package chatgpt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/blockboard/internal/normalize"
)

type humanBlock struct {
	Title                     string          `json:"Title"`
	Goal                      string          `json:"Goal,omitempty"`
	TargetAthlete             string          `json:"TargetAthlete,omitempty"`
	DurationMinutes           int             `json:"DurationMinutes,omitempty"`
	Difficulty                int             `json:"Difficulty"`
	Equipment                 string          `json:"Equipment,omitempty"`
	WarmUp                    string          `json:"WarmUp,omitempty"`
	Exercises                 []humanExercise `json:"Exercises"`
	Finisher                  string          `json:"Finisher,omitempty"`
	Notes                     string          `json:"Notes,omitempty"`
	EstimatedTotalTimeMinutes int             `json:"EstimatedTotalTimeMinutes,omitempty"`
	Progression               string          `json:"Progression,omitempty"`
	Source                    string          `json:"Source"`
}

type humanExercise struct {
	Name         string `json:"name"`
	SetsReps     string `json:"setsReps,omitempty"`
	RestSeconds  int    `json:"restSeconds,omitempty"`
	IntensityCue string `json:"intensityCue,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// headers in the order they are tried; the longer form of a header comes
// before its short form.
var humanHeaders = []struct {
	prefix string
	apply  func(b *humanBlock, v string)
}{
	{"Title:", func(b *humanBlock, v string) { b.Title = v }},
	{"Goal:", func(b *humanBlock, v string) { b.Goal = v }},
	{"Target Athlete:", func(b *humanBlock, v string) { b.TargetAthlete = v }},
	{"Duration (minutes):", func(b *humanBlock, v string) { b.DurationMinutes = firstNumber(v) }},
	{"Duration:", func(b *humanBlock, v string) { b.DurationMinutes = firstNumber(v) }},
	{"Difficulty (1-5):", func(b *humanBlock, v string) { b.Difficulty = clampDifficulty(firstNumber(v)) }},
	{"Difficulty:", func(b *humanBlock, v string) { b.Difficulty = clampDifficulty(firstNumber(v)) }},
	{"Equipment:", func(b *humanBlock, v string) { b.Equipment = v }},
	{"Warm-Up:", func(b *humanBlock, v string) { b.WarmUp = v }},
	{"Finisher:", func(b *humanBlock, v string) { b.Finisher = v }},
	{"Notes:", func(b *humanBlock, v string) { b.Notes = v }},
	{"Estimated Total Time (minutes):", func(b *humanBlock, v string) { b.EstimatedTotalTimeMinutes = firstNumber(v) }},
	{"Estimated Total Time:", func(b *humanBlock, v string) { b.EstimatedTotalTimeMinutes = firstNumber(v) }},
	{"Progression:", func(b *humanBlock, v string) { b.Progression = v }},
}

// ParseHumanReadable parses the header-per-line layout. Exercise lines
// follow an "Exercises:" header as "Name | SetsxReps | Rest | Cue". Title is
// required; difficulty defaults to 3 and is clamped to 1..5.
func ParseHumanReadable(text string) ([]byte, error) {
	b := humanBlock{Difficulty: 3, Exercises: []humanExercise{}, Source: "ai"}
	inExercises := false

	for _, line := range lines(text) {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Exercises:") {
			inExercises = true
			continue
		}
		matched := false
		for _, h := range humanHeaders {
			if strings.HasPrefix(line, h.prefix) {
				h.apply(&b, value(line, h.prefix))
				matched = true
				break
			}
		}
		if matched {
			inExercises = false
			continue
		}
		if inExercises && !strings.HasPrefix(line, "-") && strings.Contains(line, "|") {
			if ex, ok := parseExerciseLine(line); ok {
				b.Exercises = append(b.Exercises, ex)
			}
		}
	}

	if b.Title == "" {
		return nil, ErrMissingTitle
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encoding authoring block: %w", err)
	}
	return data, nil
}

// parseExerciseLine reads "Name | SetsxReps | Rest | Cue". A sets/reps
// column the normalizer cannot read is kept as a note instead.
func parseExerciseLine(line string) (humanExercise, bool) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 || parts[0] == "" {
		return humanExercise{}, false
	}
	ex := humanExercise{Name: parts[0], RestSeconds: firstNumber(parts[2])}
	if len(parts) >= 4 {
		ex.IntensityCue = parts[3]
	}
	if _, err := normalize.ParseSetsReps(parts[1]); err == nil {
		ex.SetsReps = parts[1]
	} else if parts[1] != "" {
		ex.Notes = parts[1]
		if ex.IntensityCue != "" {
			ex.Notes += "; " + ex.IntensityCue
		}
	}
	return ex, true
}

func clampDifficulty(n int) int {
	return min(max(n, 1), 5)
}
