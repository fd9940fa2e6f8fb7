// Package progression computes the expected sets of an exercise for a given
// week of a block.
package progression

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/models"
)

// DeloadPolicy decides how weeks after a deload accumulate progression.
type DeloadPolicy string

const (
	// PolicyCalendar counts every week since week 1, so a deload is a
	// single-week dip and the following week resumes the calendar line.
	PolicyCalendar DeloadPolicy = "calendar"
	// PolicySkipDeloads does not count earlier deload weeks toward the
	// accumulated delta.
	PolicySkipDeloads DeloadPolicy = "skip_deloads"
)

// ParsePolicy validates a policy name. An empty name selects PolicyCalendar.
func ParsePolicy(s string) (DeloadPolicy, error) {
	switch DeloadPolicy(s) {
	case "", PolicyCalendar:
		return PolicyCalendar, nil
	case PolicySkipDeloads:
		return PolicySkipDeloads, nil
	}
	return "", fmt.Errorf("unknown deload policy %q", s)
}

// Engine applies progression rules under a deload policy. The zero value
// uses PolicyCalendar.
type Engine struct {
	Policy DeloadPolicy
}

// ComputeExpectedSets computes expected sets with the calendar policy.
func ComputeExpectedSets(t models.ExerciseTemplate, week int) []models.SessionSet {
	return Engine{}.ComputeExpectedSets(t, week)
}

// Offset returns the number of accumulated progression steps for a 1-based
// week. Deload weeks and week 1 have no steps; weeks below 1 count as week 1.
func (e Engine) Offset(rule models.ProgressionRule, week int) int {
	week = max(week, 1)
	if rule.IsDeload(week) {
		return 0
	}
	offset := week - 1
	if e.Policy == PolicySkipDeloads {
		for _, d := range rule.DeloadWeekIndexes {
			if d >= 1 && d < week {
				offset--
			}
		}
	}
	return max(offset, 0)
}

// ComputeExpectedSets returns the sets an athlete is expected to perform for
// the template in the given week. Week 1 always reproduces the authored
// sets.
func (e Engine) ComputeExpectedSets(t models.ExerciseTemplate, week int) []models.SessionSet {
	rule := t.ProgressionRule
	offset := e.Offset(rule, week)

	strength := slices.Clone(t.StrengthSets)
	conditioning := slices.Clone(t.ConditioningSets)

	switch rule.Type {
	case models.ProgressionWeight:
		if rule.DeltaWeight != nil && offset > 0 {
			delta := *rule.DeltaWeight * float64(offset)
			for i := range strength {
				if strength[i].Weight != nil {
					w := *strength[i].Weight + delta
					strength[i].Weight = &w
				}
			}
		}
	case models.ProgressionVolume:
		if rule.DeltaSets != nil {
			step := *rule.DeltaSets * offset
			strength = resize(strength, step,
				func(s models.StrengthSet) int { return s.Index },
				func(s *models.StrengthSet, i int) { s.Index = i })
			conditioning = resize(conditioning, step,
				func(s models.ConditioningSet) int { return s.Index },
				func(s *models.ConditioningSet, i int) { s.Index = i })
		}
	}

	out := make([]models.SessionSet, 0, len(strength)+len(conditioning))
	for _, s := range strength {
		out = append(out, fromStrength(s))
	}
	indexBase := 0
	if len(strength) > 0 {
		indexBase = strength[len(strength)-1].Index + 1
	}
	for _, c := range conditioning {
		set := fromConditioning(c)
		if len(strength) > 0 {
			set.Index += indexBase
		}
		out = append(out, set)
	}
	return out
}

// resize grows a set list by copying its last set, or shrinks it, keeping
// at least one set. Added sets continue the index sequence.
func resize[T any](sets []T, step int, index func(T) int, setIndex func(*T, int)) []T {
	if len(sets) == 0 || step == 0 {
		return sets
	}
	n := min(max(len(sets)+step, 1), models.MaxSetsPerExercise)
	if n <= len(sets) {
		return sets[:n]
	}
	last := sets[len(sets)-1]
	next := index(last)
	for len(sets) < n {
		next++
		extra := last
		setIndex(&extra, next)
		sets = append(sets, extra)
	}
	return sets
}

// SkillDeltas exposes the authored skill deltas for a week together with
// the accumulated week offset. It returns nil for non-skill rules.
func (e Engine) SkillDeltas(rule models.ProgressionRule, week int) *models.SkillProgress {
	if rule.Type != models.ProgressionSkill {
		return nil
	}
	return &models.SkillProgress{
		WeekOffset:       e.Offset(rule, week),
		DeltaResistance:  rule.DeltaResistance,
		DeltaRounds:      rule.DeltaRounds,
		DeltaConstraints: slices.Clone(rule.DeltaConstraints),
	}
}

// SkillDeltas uses the calendar policy.
func SkillDeltas(rule models.ProgressionRule, week int) *models.SkillProgress {
	return Engine{}.SkillDeltas(rule, week)
}

func fromStrength(s models.StrengthSet) models.SessionSet {
	return models.SessionSet{
		ID:              uuid.New(),
		Index:           s.Index,
		ExpectedReps:    s.Reps,
		ExpectedRepsMax: s.RepsMax,
		ExpectedWeight:  s.Weight,
		RPE:             s.RPE,
		RIR:             s.RIR,
		Tempo:           s.Tempo,
		RestSeconds:     s.RestSeconds,
		Notes:           s.Notes,
	}
}

func fromConditioning(c models.ConditioningSet) models.SessionSet {
	return models.SessionSet{
		ID:               uuid.New(),
		Index:            c.Index,
		ExpectedTime:     c.DurationSeconds,
		ExpectedDistance: c.DistanceMeters,
		ExpectedCalories: c.Calories,
		ExpectedRounds:   c.Rounds,
		RestSeconds:      c.RestSeconds,
		Notes:            c.Notes,
	}
}
