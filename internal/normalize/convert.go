package normalize

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/models"
)

// FromBlock converts a stored Block into the canonical model. Identifiers
// are dropped.
func FromBlock(b *models.Block) *models.UnifiedBlock {
	source := b.Source
	if source == "" {
		source = models.SourceUser
	}
	out := &models.UnifiedBlock{
		Title:         b.Name,
		Description:   b.Description,
		NumberOfWeeks: max(b.NumberOfWeeks, 1),
		Goal:          b.Goal,
		Tags:          orEmpty(slices.Clone(b.Tags)),
		Disciplines:   orEmpty(slices.Clone(b.Disciplines)),
		Source:        source,
		Notes:         b.Notes,
		Days:          fromDays(b.Days),
	}
	if len(b.WeekTemplates) > 0 {
		out.Weeks = make([][]models.UnifiedDay, len(b.WeekTemplates))
		for i, week := range b.WeekTemplates {
			out.Weeks[i] = fromDays(week)
		}
	}
	return out
}

func fromDays(days []models.DayTemplate) []models.UnifiedDay {
	out := make([]models.UnifiedDay, 0, len(days))
	for _, d := range days {
		day := models.UnifiedDay{
			Name:      d.Name,
			ShortCode: d.ShortCode,
			Goal:      d.Goal,
			Notes:     d.Notes,
			Exercises: make([]models.UnifiedExercise, 0, len(d.Exercises)),
			Segments:  slices.Clone(d.Segments),
		}
		for _, e := range d.Exercises {
			rule := e.ProgressionRule
			if rule.Type == "" {
				rule.Type = models.ProgressionCustom
			}
			day.Exercises = append(day.Exercises, models.UnifiedExercise{
				Name:             e.CustomName,
				Type:             e.Type,
				Category:         e.Category,
				Notes:            e.Notes,
				ConditioningType: e.ConditioningType,
				StrengthSets:     orEmptySlice(e.StrengthSets),
				ConditioningSets: orEmptySlice(e.ConditioningSets),
				SetGroupID:       e.SetGroupID,
				SetGroupKind:     e.SetGroupKind,
				Progression:      &rule,
				VideoURLs:        slices.Clone(e.VideoURLs),
			})
		}
		out = append(out, day)
	}
	return out
}

// ToBlock converts the canonical model into a Block with fresh identifiers.
// When per-week days are present the default days are the first week's days
// and share their identifiers.
func ToBlock(u *models.UnifiedBlock) *models.Block {
	source := u.Source
	if source == "" {
		source = models.SourceUser
	}
	b := &models.Block{
		ID:            uuid.New(),
		Name:          u.Title,
		Description:   u.Description,
		NumberOfWeeks: max(u.NumberOfWeeks, 1),
		Goal:          u.Goal,
		Tags:          orEmpty(slices.Clone(u.Tags)),
		Disciplines:   orEmpty(slices.Clone(u.Disciplines)),
		Source:        source,
		Notes:         u.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if source == models.SourceAI {
		b.AIMetadata = &models.AIMetadata{Prompt: "Imported block", CreatedAt: b.CreatedAt}
	}

	if len(u.Weeks) == 0 {
		b.Days = toDays(u.Days)
		return b
	}
	b.WeekTemplates = make([][]models.DayTemplate, len(u.Weeks))
	for i, week := range u.Weeks {
		b.WeekTemplates[i] = toDays(week)
	}
	b.Days = slices.Clone(b.WeekTemplates[0])
	return b
}

func toDays(days []models.UnifiedDay) []models.DayTemplate {
	out := make([]models.DayTemplate, 0, len(days))
	for _, d := range days {
		day := models.DayTemplate{
			ID:        uuid.New(),
			Name:      d.Name,
			ShortCode: d.ShortCode,
			Goal:      d.Goal,
			Notes:     d.Notes,
			Exercises: make([]models.ExerciseTemplate, 0, len(d.Exercises)),
			Segments:  slices.Clone(d.Segments),
		}
		for _, e := range d.Exercises {
			day.Exercises = append(day.Exercises, toExercise(e))
		}
		out = append(out, day)
	}
	return out
}

func toExercise(e models.UnifiedExercise) models.ExerciseTemplate {
	rule := models.ProgressionRule{Type: models.ProgressionCustom}
	if e.Progression != nil {
		rule = *e.Progression
		if rule.Type == "" {
			rule.Type = models.ProgressionCustom
		}
	}
	return models.ExerciseTemplate{
		ID:               uuid.New(),
		CustomName:       e.Name,
		Type:             e.Type,
		Category:         e.Category,
		ConditioningType: e.ConditioningType,
		Notes:            e.Notes,
		SetGroupID:       e.SetGroupID,
		SetGroupKind:     e.SetGroupKind,
		StrengthSets:     orEmptySlice(e.StrengthSets),
		ConditioningSets: orEmptySlice(e.ConditioningSets),
		ProgressionRule:  rule,
		VideoURLs:        slices.Clone(e.VideoURLs),
	}
}

func orEmptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
