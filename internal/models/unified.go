package models

// UnifiedBlock is the canonical block produced by normalization. It carries
// no identifiers; ids are assigned when it is converted to a Block.
type UnifiedBlock struct {
	Title         string         `json:"title"`
	Description   *string        `json:"description,omitempty"`
	NumberOfWeeks int            `json:"numberOfWeeks"`
	Goal          *string        `json:"goal,omitempty"`
	Tags          []string       `json:"tags"`
	Disciplines   []string       `json:"disciplines"`
	Source        BlockSource    `json:"source"`
	Notes         *string        `json:"notes,omitempty"`
	Days          []UnifiedDay   `json:"days"`
	Weeks         [][]UnifiedDay `json:"weeks"`
}

// DaysForWeek returns the days used in the given 1-based week.
func (b *UnifiedBlock) DaysForWeek(week int) []UnifiedDay {
	return resolveWeek(b.Days, b.Weeks, b.NumberOfWeeks, week)
}

// UnifiedDay is one canonical training day.
type UnifiedDay struct {
	Name      string            `json:"name"`
	ShortCode *string           `json:"shortCode,omitempty"`
	Goal      *string           `json:"goal,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
	Exercises []UnifiedExercise `json:"exercises"`
	Segments  []Segment         `json:"segments"`
}

// UnifiedExercise is one canonical exercise prescription.
type UnifiedExercise struct {
	Name             string            `json:"name"`
	Type             ExerciseType      `json:"type"`
	Category         *string           `json:"category,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	ConditioningType *string           `json:"conditioningType,omitempty"`
	StrengthSets     []StrengthSet     `json:"strengthSets"`
	ConditioningSets []ConditioningSet `json:"conditioningSets"`
	SetGroupID       *string           `json:"setGroupId,omitempty"`
	SetGroupKind     *string           `json:"setGroupKind,omitempty"`
	Progression      *ProgressionRule  `json:"progression,omitempty"`
	VideoURLs        []string          `json:"videoUrls"`
}
