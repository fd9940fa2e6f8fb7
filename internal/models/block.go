package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ExerciseType is the broad kind of an exercise.
type ExerciseType string

const (
	ExerciseStrength     ExerciseType = "strength"
	ExerciseConditioning ExerciseType = "conditioning"
	ExerciseOther        ExerciseType = "other"
)

// ProgressionType selects how an exercise changes from week to week.
type ProgressionType string

const (
	ProgressionWeight ProgressionType = "weight"
	ProgressionVolume ProgressionType = "volume"
	ProgressionSkill  ProgressionType = "skill"
	ProgressionCustom ProgressionType = "custom"
)

// BlockSource records who authored a block.
type BlockSource string

const (
	SourceUser BlockSource = "user"
	SourceAI   BlockSource = "ai"
)

// Training goals accepted on blocks and days.
const (
	GoalStrength     = "strength"
	GoalHypertrophy  = "hypertrophy"
	GoalPower        = "power"
	GoalConditioning = "conditioning"
	GoalMixed        = "mixed"
	GoalPeaking      = "peaking"
	GoalDeload       = "deload"
	GoalRehab        = "rehab"
)

// Upper bounds on authored sizes. Sessions are materialized eagerly, so
// these bound the work a single document can cause.
const (
	MaxWeeks           = 104
	MaxSetsPerExercise = 100
)

// AIMetadata describes how an AI-authored block was produced.
type AIMetadata struct {
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Block is a multi-week program template. Days repeat every week unless
// WeekTemplates supplies per-week day lists.
type Block struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	NumberOfWeeks int             `json:"numberOfWeeks"`
	Goal          *string         `json:"goal,omitempty"`
	Tags          []string        `json:"tags"`
	Disciplines   []string        `json:"disciplines"`
	Source        BlockSource     `json:"source"`
	AIMetadata    *AIMetadata     `json:"aiMetadata,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Days          []DayTemplate   `json:"days"`
	WeekTemplates [][]DayTemplate `json:"weekTemplates"`
	IsArchived    bool            `json:"isArchived"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// DaysForWeek returns the day templates used in the given 1-based week.
func (b *Block) DaysForWeek(week int) []DayTemplate {
	return resolveWeek(b.Days, b.WeekTemplates, b.NumberOfWeeks, week)
}

// Clone returns a copy of the block whose day and exercise slices can be
// modified without touching the original.
func (b *Block) Clone() Block {
	c := *b
	c.Days = cloneDays(b.Days)
	if b.WeekTemplates != nil {
		c.WeekTemplates = make([][]DayTemplate, len(b.WeekTemplates))
		for i, week := range b.WeekTemplates {
			c.WeekTemplates[i] = cloneDays(week)
		}
	}
	return c
}

func cloneDays(days []DayTemplate) []DayTemplate {
	if days == nil {
		return nil
	}
	out := make([]DayTemplate, len(days))
	for i, d := range days {
		d.Exercises = slices.Clone(d.Exercises)
		out[i] = d
	}
	return out
}

// DayTemplate is one training day's planned content. A day may carry
// exercises, segments, both or neither.
type DayTemplate struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	ShortCode *string            `json:"shortCode,omitempty"`
	Goal      *string            `json:"goal,omitempty"`
	Notes     *string            `json:"notes,omitempty"`
	Exercises []ExerciseTemplate `json:"exercises"`
	Segments  []Segment          `json:"segments"`
}

// ExerciseTemplate is the planned prescription for one exercise.
// SetGroupID is shared by exercises performed as a superset; it carries no
// ordering or ownership semantics.
type ExerciseTemplate struct {
	ID               uuid.UUID         `json:"id"`
	CustomName       string            `json:"customName"`
	Type             ExerciseType      `json:"type"`
	Category         *string           `json:"category,omitempty"`
	ConditioningType *string           `json:"conditioningType,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	SetGroupID       *string           `json:"setGroupId,omitempty"`
	SetGroupKind     *string           `json:"setGroupKind,omitempty"`
	StrengthSets     []StrengthSet     `json:"strengthSets"`
	ConditioningSets []ConditioningSet `json:"conditioningSets"`
	ProgressionRule  ProgressionRule   `json:"progressionRule"`
	VideoURLs        []string          `json:"videoUrls"`
}

// StrengthSet is one planned strength set. RepsMax is the upper bound of a
// rep range such as "8-10".
type StrengthSet struct {
	Index           int      `json:"index"`
	Reps            *int     `json:"reps,omitempty"`
	RepsMax         *int     `json:"repsMax,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	PercentageOfMax *float64 `json:"percentageOfMax,omitempty"`
	RPE             *float64 `json:"rpe,omitempty"`
	RIR             *float64 `json:"rir,omitempty"`
	Tempo           *string  `json:"tempo,omitempty"`
	RestSeconds     *int     `json:"restSeconds,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// ConditioningSet is one planned conditioning effort.
type ConditioningSet struct {
	Index            int      `json:"index"`
	DurationSeconds  *int     `json:"durationSeconds,omitempty"`
	DistanceMeters   *float64 `json:"distanceMeters,omitempty"`
	Calories         *float64 `json:"calories,omitempty"`
	Rounds           *int     `json:"rounds,omitempty"`
	TargetPace       *string  `json:"targetPace,omitempty"`
	EffortDescriptor *string  `json:"effortDescriptor,omitempty"`
	RestSeconds      *int     `json:"restSeconds,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// ProgressionRule describes the week-over-week change for an exercise.
// Payload fields only apply to the matching Type and are ignored otherwise.
type ProgressionRule struct {
	Type              ProgressionType   `json:"type"`
	DeltaWeight       *float64          `json:"deltaWeight,omitempty"`
	DeltaSets         *int              `json:"deltaSets,omitempty"`
	DeltaResistance   *int              `json:"deltaResistance,omitempty"`
	DeltaRounds       *int              `json:"deltaRounds,omitempty"`
	DeltaConstraints  []string          `json:"deltaConstraints"`
	DeloadWeekIndexes []int             `json:"deloadWeekIndexes"`
	CustomParams      map[string]string `json:"customParams,omitempty"`
}

// IsDeload reports whether the 1-based week is a deload week for this rule.
func (r ProgressionRule) IsDeload(week int) bool {
	return slices.Contains(r.DeloadWeekIndexes, week)
}

// resolveWeek applies the week-template rule: week w uses
// weeks[(w-1) mod len(weeks)], weeks outside 1..numberOfWeeks yield nothing,
// and an empty weeks list falls back to the default days.
func resolveWeek[T any](days []T, weeks [][]T, numberOfWeeks, week int) []T {
	if week < 1 || week > numberOfWeeks {
		return nil
	}
	if len(weeks) == 0 {
		return days
	}
	return weeks[(week-1)%len(weeks)]
}
