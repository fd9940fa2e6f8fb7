package models

import "strings"

// Canonical segment types.
const (
	SegmentWarmup         = "warmup"
	SegmentMobility       = "mobility"
	SegmentTechnique      = "technique"
	SegmentDrill          = "drill"
	SegmentPositionalSpar = "positionalSpar"
	SegmentRolling        = "rolling"
	SegmentCooldown       = "cooldown"
	SegmentBreathwork     = "breathwork"
	SegmentPractice       = "practice"
	SegmentPresentation   = "presentation"
	SegmentReview         = "review"
	SegmentDemonstration  = "demonstration"
	SegmentDiscussion     = "discussion"
	SegmentAssessment     = "assessment"
	SegmentLecture        = "lecture"
)

// segmentTypeMap maps lowercased authored segment types, including common
// spellings, to their canonical names.
var segmentTypeMap = map[string]string{
	"warmup":    SegmentWarmup,
	"warm-up":   SegmentWarmup,
	"warm up":   SegmentWarmup,
	"warm_up":   SegmentWarmup,
	"mobility":  SegmentMobility,
	"technique": SegmentTechnique,
	"drill":     SegmentDrill,
	"drilling":  SegmentDrill,

	"positionalspar":      SegmentPositionalSpar,
	"positional_spar":     SegmentPositionalSpar,
	"positional spar":     SegmentPositionalSpar,
	"positional sparring": SegmentPositionalSpar,
	"rolling":             SegmentRolling,
	"live rolling":        SegmentRolling,
	"sparring":            SegmentRolling,

	"cooldown":   SegmentCooldown,
	"cool-down":  SegmentCooldown,
	"cool down":  SegmentCooldown,
	"cool_down":  SegmentCooldown,
	"breathwork": SegmentBreathwork,

	"practice":      SegmentPractice,
	"presentation":  SegmentPresentation,
	"review":        SegmentReview,
	"demonstration": SegmentDemonstration,
	"discussion":    SegmentDiscussion,
	"assessment":    SegmentAssessment,
	"lecture":       SegmentLecture,
}

// NormalizeSegmentType maps an authored segment type to its canonical name.
// Returns the canonical name and true if recognized, or the trimmed input and
// false if unknown.
func NormalizeSegmentType(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := segmentTypeMap[strings.ToLower(trimmed)]; ok {
		return canonical, true
	}
	return trimmed, false
}

// Canonical exercise categories.
const (
	CategorySquat           = "squat"
	CategoryHinge           = "hinge"
	CategoryPressHorizontal = "pressHorizontal"
	CategoryPressVertical   = "pressVertical"
	CategoryPullHorizontal  = "pullHorizontal"
	CategoryPullVertical    = "pullVertical"
	CategoryCarry           = "carry"
	CategoryCore            = "core"
	CategoryOlympic         = "olympic"
	CategoryConditioning    = "conditioning"
	CategoryMobility        = "mobility"
	CategoryMixed           = "mixed"
	CategoryOther           = "other"
)

var categoryMap = map[string]string{
	"squat":            CategorySquat,
	"hinge":            CategoryHinge,
	"presshorizontal":  CategoryPressHorizontal,
	"press_horizontal": CategoryPressHorizontal,
	"horizontal press": CategoryPressHorizontal,
	"pressvertical":    CategoryPressVertical,
	"press_vertical":   CategoryPressVertical,
	"vertical press":   CategoryPressVertical,
	"pullhorizontal":   CategoryPullHorizontal,
	"pull_horizontal":  CategoryPullHorizontal,
	"horizontal pull":  CategoryPullHorizontal,
	"pullvertical":     CategoryPullVertical,
	"pull_vertical":    CategoryPullVertical,
	"vertical pull":    CategoryPullVertical,
	"carry":            CategoryCarry,
	"core":             CategoryCore,
	"olympic":          CategoryOlympic,
	"olympic lift":     CategoryOlympic,
	"conditioning":     CategoryConditioning,
	"mobility":         CategoryMobility,
	"mixed":            CategoryMixed,
	"other":            CategoryOther,
}

// NormalizeCategory maps an authored exercise category to its canonical name.
func NormalizeCategory(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := categoryMap[strings.ToLower(trimmed)]; ok {
		return canonical, true
	}
	return trimmed, false
}

// IsMainLiftCategory reports whether a canonical category denotes a primary
// barbell or compound movement.
func IsMainLiftCategory(category string) bool {
	switch category {
	case CategorySquat, CategoryHinge, CategoryPressHorizontal, CategoryPressVertical, CategoryOlympic:
		return true
	}
	return false
}
