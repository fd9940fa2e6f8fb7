// Package whiteboard projects a canonical training day into the ordered
// sections shown on a gym whiteboard.
package whiteboard

import (
	"github.com/claude/blockboard/internal/models"
)

// Section is a titled group of whiteboard items.
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Item is one line of work on the board with optional detail lines.
type Item struct {
	Primary   string   `json:"primary"`
	Secondary *string  `json:"secondary,omitempty"`
	Tertiary  *string  `json:"tertiary,omitempty"`
	Bullets   []string `json:"bullets"`
}

// DayBoard is the formatted board for one day of a week.
type DayBoard struct {
	WeekIndex int       `json:"week_index"`
	DayIndex  int       `json:"day_index"`
	Name      string    `json:"name"`
	ShortCode *string   `json:"short_code,omitempty"`
	Goal      *string   `json:"goal,omitempty"`
	Sections  []Section `json:"sections"`
}

// Section titles.
const (
	TitleWarmUp       = "Warm-Up"
	TitleStrength     = "Strength"
	TitleAccessory    = "Accessory"
	TitleConditioning = "Conditioning"
	TitleTechnique    = "Technique Development"
	TitleDrilling     = "Drilling"
	TitleLive         = "Live Training"
	TitleMobility     = "Mobility"
	TitleCoolDown     = "Cool Down"
	TitleAdditional   = "Additional Work"
)

// FormatDay returns the whiteboard sections for a day. Warmup segments come
// first, then strength, accessory and conditioning exercises, then the
// remaining segments grouped by kind in order of first appearance. Empty
// sections are omitted.
func FormatDay(day models.UnifiedDay) []Section {
	var warmups, rest []models.Segment
	for _, seg := range day.Segments {
		if seg.IsWarmup() || segmentTitle(seg) == TitleWarmUp {
			warmups = append(warmups, seg)
		} else {
			rest = append(rest, seg)
		}
	}

	var main, accessory, conditioning []models.UnifiedExercise
	for _, ex := range day.Exercises {
		switch {
		case isConditioning(ex):
			conditioning = append(conditioning, ex)
		case isMainLift(ex):
			main = append(main, ex)
		default:
			accessory = append(accessory, ex)
		}
	}

	sections := []Section{}
	add := func(title string, items []Item) {
		if len(items) > 0 {
			sections = append(sections, Section{Title: title, Items: items})
		}
	}
	add(TitleWarmUp, mapItems(warmups, formatSegment))
	add(TitleStrength, mapItems(main, formatStrength))
	add(TitleAccessory, mapItems(accessory, formatStrength))
	add(TitleConditioning, mapItems(conditioning, formatConditioning))

	var order []string
	grouped := make(map[string][]Item)
	for _, seg := range rest {
		title := segmentTitle(seg)
		if _, seen := grouped[title]; !seen {
			order = append(order, title)
		}
		grouped[title] = append(grouped[title], formatSegment(seg))
	}
	for _, title := range order {
		add(title, grouped[title])
	}
	return sections
}

// FormatWeek formats every day the block schedules in the given 1-based
// week. Weeks outside the block yield no boards.
func FormatWeek(block *models.UnifiedBlock, week int) []DayBoard {
	days := block.DaysForWeek(week)
	out := make([]DayBoard, 0, len(days))
	for i, day := range days {
		out = append(out, DayBoard{
			WeekIndex: week,
			DayIndex:  i,
			Name:      day.Name,
			ShortCode: day.ShortCode,
			Goal:      day.Goal,
			Sections:  FormatDay(day),
		})
	}
	return out
}

func segmentTitle(seg models.Segment) string {
	kind, _ := models.NormalizeSegmentType(seg.SegmentType)
	switch kind {
	case models.SegmentWarmup:
		return TitleWarmUp
	case models.SegmentTechnique:
		return TitleTechnique
	case models.SegmentDrill:
		return TitleDrilling
	case models.SegmentPositionalSpar, models.SegmentRolling:
		return TitleLive
	case models.SegmentMobility:
		return TitleMobility
	case models.SegmentCooldown, models.SegmentBreathwork:
		return TitleCoolDown
	}
	return TitleAdditional
}

func isConditioning(ex models.UnifiedExercise) bool {
	return ex.Type == models.ExerciseConditioning || len(ex.ConditioningSets) > 0
}

func isMainLift(ex models.UnifiedExercise) bool {
	if ex.Category != nil {
		category, _ := models.NormalizeCategory(*ex.Category)
		if models.IsMainLiftCategory(category) {
			return true
		}
	}
	return len(ex.StrengthSets) >= 5
}

func mapItems[T any](in []T, f func(T) Item) []Item {
	out := make([]Item, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
