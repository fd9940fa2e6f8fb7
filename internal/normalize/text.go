package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/blockboard/internal/models"
)

var (
	setsRepsRe = regexp.MustCompile(`^\s*(\d+)\s*[xX×]\s*(\d+)\s*(?:-\s*(\d+)\s*)?$`)
	repsRe     = regexp.MustCompile(`^\s*(\d+)\s*(?:-\s*(\d+)\s*)?$`)

	weightDeltaRe = regexp.MustCompile(`(?i)([+-]?\d+(?:\.\d+)?)\s*(?:lbs?|pounds?|kgs?|kilos?|kilograms?)\b`)
	setsDeltaRe   = regexp.MustCompile(`(?i)([+-]?\d+)\s*sets?\b`)
)

// ParseSetsReps parses a "sets x reps" prescription such as "5x5", "3X8"
// or "3x8-10". A rep range yields the lower bound in Reps and the upper
// bound in RepsMax.
func ParseSetsReps(s string) ([]models.StrengthSet, error) {
	m := setsRepsRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%q is not in NxM form", s)
	}
	count, err := strconv.Atoi(m[1])
	switch {
	case err != nil || count > models.MaxSetsPerExercise:
		return nil, fmt.Errorf("%q has more than %d sets", s, models.MaxSetsPerExercise)
	case count < 1:
		return nil, fmt.Errorf("%q has no sets", s)
	}
	reps, repsMax, err := repRange(m[2], m[3])
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, err)
	}
	sets := make([]models.StrengthSet, count)
	for i := range sets {
		sets[i] = models.StrengthSet{Index: i, Reps: intPtr(reps), RepsMax: repsMax}
	}
	return sets, nil
}

func repRange(lo, hi string) (int, *int, error) {
	reps, err := strconv.Atoi(lo)
	if err != nil {
		return 0, nil, fmt.Errorf("reps %s out of range", lo)
	}
	if hi == "" {
		return reps, nil, nil
	}
	upper, err := strconv.Atoi(hi)
	if err != nil {
		return 0, nil, fmt.Errorf("reps %s out of range", hi)
	}
	if upper < reps {
		return 0, nil, fmt.Errorf("rep range %s-%s is inverted", lo, hi)
	}
	return reps, intPtr(upper), nil
}

// parseReps accepts a rep count as a number or a range string like "8-10".
func parseReps(raw json.RawMessage) (int, *int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, nil, fmt.Errorf("reps must be a number or a range string")
	}
	m := repsRe.FindStringSubmatch(s)
	if m == nil {
		return 0, nil, fmt.Errorf("%q is not a rep count", s)
	}
	return repRange(m[1], m[2])
}

// ParseProgressionText turns a free-text progression note into a rule.
// "+5 lbs per week" becomes a weight rule, "+1 set per week" a volume rule;
// anything else is kept verbatim as a custom rule.
func ParseProgressionText(text string) models.ProgressionRule {
	text = strings.TrimSpace(text)
	if m := weightDeltaRe.FindStringSubmatch(text); m != nil {
		if delta, err := strconv.ParseFloat(m[1], 64); err == nil {
			return models.ProgressionRule{Type: models.ProgressionWeight, DeltaWeight: &delta}
		}
	}
	if m := setsDeltaRe.FindStringSubmatch(text); m != nil {
		if delta, err := strconv.Atoi(m[1]); err == nil {
			return models.ProgressionRule{Type: models.ProgressionVolume, DeltaSets: &delta}
		}
	}
	rule := models.ProgressionRule{Type: models.ProgressionCustom}
	if text != "" {
		rule.CustomParams = map[string]string{"description": text}
	}
	return rule
}

// ParseGoal maps a free-text goal onto one of the known training goals.
func ParseGoal(s string) (string, bool) {
	lower := strings.ToLower(s)
	switch {
	case lower == "":
		return "", false
	case strings.Contains(lower, "hypertrophy") || strings.Contains(lower, "muscle"):
		return models.GoalHypertrophy, true
	case strings.Contains(lower, "strength"):
		return models.GoalStrength, true
	case strings.Contains(lower, "power"):
		return models.GoalPower, true
	case strings.Contains(lower, "conditioning") || strings.Contains(lower, "cardio"):
		return models.GoalConditioning, true
	case strings.Contains(lower, "peak"):
		return models.GoalPeaking, true
	case strings.Contains(lower, "deload"):
		return models.GoalDeload, true
	case strings.Contains(lower, "rehab"):
		return models.GoalRehab, true
	case strings.Contains(lower, "mixed"):
		return models.GoalMixed, true
	}
	return "", false
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
