package chatgpt

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/blockboard/internal/models"
)

const (
	defaultWeeks    = 4
	defaultSetCount = 3
)

var (
	setsRe = regexp.MustCompile(`Sets:\s*(\d+)`)
	repsRe = regexp.MustCompile(`Reps:\s*(\d+)`)
	numRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

type structuredBlock struct {
	Title         string          `json:"Title"`
	Description   *string         `json:"Description,omitempty"`
	NumberOfWeeks int             `json:"NumberOfWeeks"`
	Goal          *string         `json:"Goal,omitempty"`
	Source        string          `json:"Source"`
	Days          []structuredDay `json:"Days"`
}

type structuredDay struct {
	Name      string                `json:"name"`
	ShortCode *string               `json:"shortCode,omitempty"`
	Goal      *string               `json:"goal,omitempty"`
	Exercises []*structuredExercise `json:"exercises"`
}

type structuredExercise struct {
	Name             string                  `json:"name"`
	Type             string                  `json:"type"`
	Category         *string                 `json:"category,omitempty"`
	ConditioningType *string                 `json:"conditioningType,omitempty"`
	Sets             []structuredSet         `json:"sets,omitempty"`
	DurationSeconds  *int                    `json:"durationSeconds,omitempty"`
	DistanceMeters   *float64                `json:"distanceMeters,omitempty"`
	Calories         *float64                `json:"calories,omitempty"`
	Rounds           *int                    `json:"rounds,omitempty"`
	TargetPace       *string                 `json:"targetPace,omitempty"`
	EffortDescriptor *string                 `json:"effortDescriptor,omitempty"`
	RestSeconds      *int                    `json:"restSeconds,omitempty"`
	Notes            *string                 `json:"notes,omitempty"`
	Progression      *models.ProgressionRule `json:"progression,omitempty"`

	setCount        *int
	reps            *int
	weight          *float64
	percentageOfMax *float64
	rpe             *float64
	rir             *float64
	tempo           *string
	progressionText string
	touched         bool
}

type structuredSet struct {
	Reps            *int     `json:"reps,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	PercentageOfMax *float64 `json:"percentageOfMax,omitempty"`
	RPE             *float64 `json:"rpe,omitempty"`
	RIR             *float64 `json:"rir,omitempty"`
	Tempo           *string  `json:"tempo,omitempty"`
	RestSeconds     *int     `json:"restSeconds,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// ParseStructured parses the BLOCK/DAY/Exercise layout. Exercises are
// separated by "---" or a new "Exercise:" line. The block needs a name and
// at least one day; weeks default to 4 and strength set counts to 3.
func ParseStructured(text string) ([]byte, error) {
	b := structuredBlock{NumberOfWeeks: defaultWeeks, Source: string(models.SourceAI), Days: []structuredDay{}}
	var day *structuredDay
	var ex *structuredExercise

	// An exercise opened by "---" is dropped unless a line filled it in.
	flushExercise := func() {
		if ex != nil && day != nil && (ex.Name != "" || ex.touched) {
			day.Exercises = append(day.Exercises, ex)
		}
		ex = nil
	}
	flushDay := func() {
		flushExercise()
		if day != nil {
			b.Days = append(b.Days, *day)
		}
		day = nil
	}

	for _, line := range lines(text) {
		switch {
		case line == "":
		case strings.HasPrefix(line, "BLOCK:"):
			b.Title = value(line, "BLOCK:")
		case strings.HasPrefix(line, "DESCRIPTION:"):
			b.Description = optional(value(line, "DESCRIPTION:"))
		case strings.HasPrefix(line, "WEEKS:"):
			if n, ok := parseCount(value(line, "WEEKS:"), models.MaxWeeks); ok {
				b.NumberOfWeeks = n
			}
		case strings.HasPrefix(line, "GOAL:"):
			goal := optional(strings.ToLower(value(line, "GOAL:")))
			if day != nil {
				day.Goal = goal
			} else {
				b.Goal = goal
			}
		case strings.HasPrefix(line, "DAY") && strings.Contains(line, ":"):
			flushDay()
			_, name, _ := strings.Cut(line, ":")
			name = strings.TrimSpace(name)
			if name == "" {
				name = fmt.Sprintf("Day %d", len(b.Days)+1)
			}
			day = &structuredDay{Name: name, Exercises: []*structuredExercise{}}
		case strings.HasPrefix(line, "SHORT:"):
			if day != nil {
				day.ShortCode = optional(value(line, "SHORT:"))
			}
		case line == "---":
			flushExercise()
			ex = &structuredExercise{Type: string(models.ExerciseStrength)}
		case strings.HasPrefix(line, "Exercise:"):
			flushExercise()
			ex = &structuredExercise{Type: string(models.ExerciseStrength), Name: value(line, "Exercise:")}
		case ex != nil:
			ex.apply(line)
		}
	}
	flushDay()

	if b.Title == "" {
		return nil, ErrMissingTitle
	}
	if len(b.Days) == 0 {
		return nil, ErrNoDays
	}
	for i := range b.Days {
		for _, e := range b.Days[i].Exercises {
			e.finish()
		}
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encoding authoring block: %w", err)
	}
	return data, nil
}

func (e *structuredExercise) apply(line string) {
	e.touched = true
	switch {
	case strings.HasPrefix(line, "Type:"):
		switch strings.ToLower(value(line, "Type:")) {
		case string(models.ExerciseConditioning):
			e.Type = string(models.ExerciseConditioning)
		case string(models.ExerciseOther):
			e.Type = string(models.ExerciseOther)
		default:
			e.Type = string(models.ExerciseStrength)
		}
	case strings.HasPrefix(line, "Category:"):
		e.Category = optional(value(line, "Category:"))
	case strings.HasPrefix(line, "ConditioningType:"):
		e.ConditioningType = optional(value(line, "ConditioningType:"))
	case strings.Contains(line, "Sets:") && strings.Contains(line, "Reps:"):
		if m := setsRe.FindStringSubmatch(line); m != nil {
			if n, ok := parseCount(m[1], models.MaxSetsPerExercise); ok {
				e.setCount = &n
			}
		}
		if m := repsRe.FindStringSubmatch(line); m != nil {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				e.reps = &n
			}
		}
	case strings.HasPrefix(line, "Weight:"):
		e.weight = parseFloat(value(line, "Weight:"))
	case strings.HasPrefix(line, "%Max:"):
		if pct := parseFloat(value(line, "%Max:")); pct != nil {
			frac := *pct / 100
			e.percentageOfMax = &frac
		}
	case strings.HasPrefix(line, "RPE:"):
		e.rpe = parseFloat(value(line, "RPE:"))
	case strings.HasPrefix(line, "RIR:"):
		e.rir = parseFloat(value(line, "RIR:"))
	case strings.HasPrefix(line, "Tempo:"):
		e.tempo = optional(value(line, "Tempo:"))
	case strings.HasPrefix(line, "Rest:"):
		e.RestSeconds = parseInt(value(line, "Rest:"))
	case strings.HasPrefix(line, "Duration:"):
		if m := parseInt(value(line, "Duration:")); m != nil {
			secs := *m * 60
			e.DurationSeconds = &secs
		}
	case strings.HasPrefix(line, "Distance:"):
		e.DistanceMeters = parseFloat(value(line, "Distance:"))
	case strings.HasPrefix(line, "Calories:"):
		e.Calories = parseFloat(value(line, "Calories:"))
	case strings.HasPrefix(line, "Rounds:"):
		e.Rounds = parseInt(value(line, "Rounds:"))
	case strings.HasPrefix(line, "Pace:"):
		e.TargetPace = optional(value(line, "Pace:"))
	case strings.HasPrefix(line, "Effort:"):
		e.EffortDescriptor = optional(value(line, "Effort:"))
	case strings.HasPrefix(line, "Progression:"):
		e.progressionText = value(line, "Progression:")
	case strings.HasPrefix(line, "Notes:"):
		e.Notes = optional(value(line, "Notes:"))
	}
}

// parseCount parses a positive count. Values past limit, including ones too
// large for an int, come back as limit+1 so the normalizer rejects them
// without anything being allocated here.
func parseCount(s string, limit int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	switch {
	case errors.Is(err, strconv.ErrRange) || (err == nil && n > limit):
		return limit + 1, true
	case err != nil || n < 1:
		return 0, false
	}
	return n, true
}

// finish expands strength fields into explicit sets and resolves the
// progression text.
func (e *structuredExercise) finish() {
	if e.Name == "" {
		e.Name = "Unnamed Exercise"
	}
	if e.Type == string(models.ExerciseStrength) {
		count := defaultSetCount
		if e.setCount != nil {
			count = *e.setCount
		}
		e.Sets = make([]structuredSet, count)
		for i := range e.Sets {
			e.Sets[i] = structuredSet{
				Reps:            e.reps,
				Weight:          e.weight,
				PercentageOfMax: e.percentageOfMax,
				RPE:             e.rpe,
				RIR:             e.rir,
				Tempo:           e.tempo,
				RestSeconds:     e.RestSeconds,
				Notes:           e.Notes,
			}
		}
		e.RestSeconds = nil
	}
	if e.progressionText != "" {
		rule := parseProgression(e.progressionText)
		e.Progression = &rule
	}
}

// parseProgression reads "+1 set" as a volume rule and "+5 lbs" or "+2.5"
// as a weight rule. Anything else is kept as a custom description.
func parseProgression(text string) models.ProgressionRule {
	num := numRe.FindString(text)
	if strings.Contains(strings.ToLower(text), "set") {
		if n, err := strconv.Atoi(num); err == nil {
			return models.ProgressionRule{Type: models.ProgressionVolume, DeltaSets: &n}
		}
	}
	if f, err := strconv.ParseFloat(num, 64); err == nil && f > 0 {
		return models.ProgressionRule{Type: models.ProgressionWeight, DeltaWeight: &f}
	}
	return models.ProgressionRule{
		Type:         models.ProgressionCustom,
		CustomParams: map[string]string{"description": text},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(numRe.FindString(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	n, err := strconv.Atoi(firstNumberRe.FindString(s))
	if err != nil {
		return nil
	}
	return &n
}
