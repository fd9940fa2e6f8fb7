package whiteboard

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/claude/blockboard/internal/models"
)

func formatStrength(ex models.UnifiedExercise) Item {
	item := Item{Primary: ex.Name, Bullets: []string{}}
	sets := ex.StrengthSets
	if len(sets) == 0 {
		return item
	}

	var tokens []string
	for _, s := range sets {
		if s.Reps == nil {
			continue
		}
		tok := strconv.Itoa(*s.Reps)
		if s.RepsMax != nil && *s.RepsMax != *s.Reps {
			tok += "-" + strconv.Itoa(*s.RepsMax)
		}
		tokens = append(tokens, tok)
	}

	var line string
	switch {
	case len(tokens) == len(sets) && allEqual(tokens):
		line = fmt.Sprintf("%d × %s", len(sets), tokens[0])
	case len(tokens) > 0:
		line = fmt.Sprintf("%d sets: %s", len(sets), strings.Join(tokens, "/"))
	default:
		line = fmt.Sprintf("%d sets", len(sets))
	}

	var weights []string
	for _, s := range sets {
		if s.Weight != nil {
			weights = append(weights, formatNumber(*s.Weight))
		}
	}
	switch {
	case len(weights) > 0 && allEqual(weights):
		line += " @ " + weights[0] + " lbs"
	case len(weights) == len(sets):
		line += " @ " + strings.Join(weights, "/") + " lbs"
	}

	if ex.Notes != nil && *ex.Notes != "" {
		line += " " + *ex.Notes
	}
	item.Secondary = &line
	item.Tertiary = formatRest(sets[0].RestSeconds, "Rest: ")
	return item
}

func formatConditioning(ex models.UnifiedExercise) Item {
	item := Item{Primary: ex.Name, Bullets: []string{}}
	if len(ex.ConditioningSets) == 0 {
		item.Bullets = noteBullets(ex, nil)
		return item
	}
	first := ex.ConditioningSets[0]

	kind := ""
	if ex.ConditioningType != nil {
		kind = strings.ToLower(*ex.ConditioningType)
	}

	var secondary string
	switch kind {
	case "amrap":
		secondary = "AMRAP"
		if first.DurationSeconds != nil {
			secondary = fmt.Sprintf("%d min AMRAP", *first.DurationSeconds/60)
		}
	case "emom":
		secondary = "EMOM"
		if first.DurationSeconds != nil {
			secondary = fmt.Sprintf("EMOM %d min", *first.DurationSeconds/60)
		}
	case "intervals":
		secondary = "Intervals"
		switch {
		case first.Rounds != nil:
			secondary = fmt.Sprintf("%d rounds", *first.Rounds)
		case len(ex.ConditioningSets) > 1:
			secondary = fmt.Sprintf("%d rounds", len(ex.ConditioningSets))
		}
		var bullets []string
		for _, s := range ex.ConditioningSets {
			if s.DurationSeconds != nil {
				effort := ""
				if s.EffortDescriptor != nil {
					effort = *s.EffortDescriptor
				}
				bullets = append(bullets, strings.TrimSpace(formatClock(*s.DurationSeconds)+" "+effort))
			}
			if s.RestSeconds != nil && *s.RestSeconds > 0 {
				bullets = append(bullets, formatClock(*s.RestSeconds)+" rest")
			}
		}
		item.Secondary = &secondary
		item.Bullets = noteBullets(ex, bullets)
		return item
	case "roundsfortime":
		secondary = "For Time"
		if first.Rounds != nil {
			secondary = fmt.Sprintf("%d Rounds For Time", *first.Rounds)
		}
	case "fortime":
		var parts []string
		if first.DistanceMeters != nil {
			parts = append(parts, formatNumber(*first.DistanceMeters)+"m")
		}
		if first.DurationSeconds != nil {
			parts = append(parts, formatSeconds(*first.DurationSeconds))
		}
		secondary = "For Time"
		if len(parts) > 0 {
			secondary += " — " + strings.Join(parts, " • ")
		}
	case "fordistance":
		secondary = "For Distance"
		if first.DistanceMeters != nil {
			secondary += " — " + formatNumber(*first.DistanceMeters) + "m"
		}
	case "forcalories":
		secondary = "For Calories"
		if first.Calories != nil {
			secondary += " — " + formatNumber(*first.Calories) + " cal"
		}
	default:
		var parts []string
		if first.DurationSeconds != nil {
			parts = append(parts, formatSeconds(*first.DurationSeconds))
		}
		if first.DistanceMeters != nil {
			parts = append(parts, formatNumber(*first.DistanceMeters)+"m")
		}
		if first.Calories != nil {
			parts = append(parts, formatNumber(*first.Calories)+" cal")
		}
		if first.Rounds != nil {
			parts = append(parts, fmt.Sprintf("%d rounds", *first.Rounds))
		}
		secondary = strings.Join(parts, " • ")
	}

	if secondary != "" {
		item.Secondary = &secondary
	}
	item.Tertiary = formatRest(first.RestSeconds, "Rest: ")
	item.Bullets = noteBullets(ex, nil)
	return item
}

// noteBullets appends the exercise notes, split into clauses, and then each
// set's notes in set order, skipping repeats.
func noteBullets(ex models.UnifiedExercise, bullets []string) []string {
	if bullets == nil {
		bullets = []string{}
	}
	var notes []string
	if ex.Notes != nil {
		notes = append(notes, splitNotes(*ex.Notes)...)
	}
	for _, s := range ex.ConditioningSets {
		if s.Notes != nil {
			notes = append(notes, splitNotes(*s.Notes)...)
		}
	}
	for _, n := range notes {
		if !slices.Contains(bullets, n) {
			bullets = append(bullets, n)
		}
	}
	return bullets
}

func formatRest(rest *int, prefix string) *string {
	if rest == nil || *rest <= 0 {
		return nil
	}
	return ptr(prefix + formatSeconds(*rest))
}

func allEqual(s []string) bool {
	for _, v := range s[1:] {
		if v != s[0] {
			return false
		}
	}
	return true
}
