// Package normalize converts authored training blocks into the canonical
// models.UnifiedBlock.
//
// Three authoring layouts are accepted: a list of Weeks (each a list of
// days), a list of Days repeated every week, or a bare list of Exercises
// forming a single day. The legacy typed Block JSON and the canonical
// Unified JSON are accepted as well and pass through unchanged in meaning.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/claude/blockboard/internal/models"
)

const defaultTitle = "Untitled Block"

// Normalize converts an authored document into the canonical block. It
// returns either a complete block or a *ParseError.
func Normalize(data []byte) (*models.UnifiedBlock, error) {
	obj, err := probe(data)
	if err != nil {
		return nil, parseErr("", "invalid JSON document", err)
	}

	switch shape := detect(obj); shape {
	case ShapeBlock:
		return normalizeLegacy(data)
	case ShapeUnified:
		return normalizeUnified(obj, data)
	default:
		return normalizeAuthoring(obj, shape)
	}
}

func normalizeAuthoring(obj map[string]json.RawMessage, shape Shape) (*models.UnifiedBlock, error) {
	var meta authoringBlock
	if err := decodeFields("", obj, meta.bindings()...); err != nil {
		return nil, err
	}

	out := &models.UnifiedBlock{
		Title:       defaultTitle,
		Description: meta.description(),
		Tags:        orEmpty(meta.Tags),
		Disciplines: orEmpty(meta.Disciplines),
		Source:      models.SourceUser,
		Notes:       meta.notes(),
	}
	if meta.Title != nil {
		out.Title = *meta.Title
	}
	if meta.Goal != nil {
		if goal, ok := ParseGoal(*meta.Goal); ok {
			out.Goal = &goal
		}
	}
	if meta.Source != nil && models.BlockSource(*meta.Source) == models.SourceAI {
		out.Source = models.SourceAI
	}

	var blockRule *models.ProgressionRule
	if meta.Progression != nil && strings.TrimSpace(*meta.Progression) != "" {
		rule := ParseProgressionText(*meta.Progression)
		blockRule = &rule
	}

	switch shape {
	case ShapeWeeks:
		weeks, err := decodeWeeks(obj["Weeks"], blockRule)
		if err != nil {
			return nil, err
		}
		out.Weeks = weeks
		out.Days = []models.UnifiedDay{}
		if len(weeks) > 0 {
			out.Days = slices.Clone(weeks[0])
		}
	case ShapeDays:
		days, err := decodeDays("Days", obj["Days"], blockRule)
		if err != nil {
			return nil, err
		}
		out.Days = days
	case ShapeExercises:
		exercises, err := decodeExercises("Exercises", obj["Exercises"], blockRule)
		if err != nil {
			return nil, err
		}
		day := implicitDay()
		day.Goal = meta.Goal
		day.Exercises = exercises
		out.Days = []models.UnifiedDay{day}
	default:
		out.Days = []models.UnifiedDay{implicitDay()}
	}

	switch {
	case meta.NumberOfWeeks != nil && *meta.NumberOfWeeks < 1:
		return nil, parseErr("NumberOfWeeks", fmt.Sprintf("must be positive, got %d", *meta.NumberOfWeeks), nil)
	case meta.NumberOfWeeks != nil:
		out.NumberOfWeeks = *meta.NumberOfWeeks
	case len(out.Weeks) > 0:
		out.NumberOfWeeks = len(out.Weeks)
	default:
		out.NumberOfWeeks = 1
	}
	if out.NumberOfWeeks > models.MaxWeeks {
		return nil, parseErr("NumberOfWeeks", weeksTooMany(out.NumberOfWeeks), nil)
	}
	return out, nil
}

func implicitDay() models.UnifiedDay {
	return models.UnifiedDay{
		Name:      "Day 1",
		ShortCode: strPtr("D1"),
		Exercises: []models.UnifiedExercise{},
	}
}

// description summarizes the athlete-facing metadata that has no field of
// its own in the canonical model.
func (a *authoringBlock) description() *string {
	if a.Description != nil {
		return a.Description
	}
	var lines []string
	if a.TargetAthlete != nil && *a.TargetAthlete != "" {
		lines = append(lines, "Target: "+*a.TargetAthlete)
	}
	if a.DurationMinutes != nil && *a.DurationMinutes > 0 {
		lines = append(lines, fmt.Sprintf("Duration: %d min", *a.DurationMinutes))
	}
	if a.Difficulty != nil && *a.Difficulty > 0 {
		lines = append(lines, fmt.Sprintf("Difficulty: %d/5", min(*a.Difficulty, 5)))
	}
	if a.Equipment != nil && *a.Equipment != "" {
		lines = append(lines, "Equipment: "+*a.Equipment)
	}
	if a.EstimatedTotalTimeMinutes != nil && *a.EstimatedTotalTimeMinutes > 0 {
		lines = append(lines, fmt.Sprintf("Estimated Total Time: %d min", *a.EstimatedTotalTimeMinutes))
	}
	if len(lines) == 0 {
		return nil
	}
	return strPtr(strings.Join(lines, "\n"))
}

func (a *authoringBlock) notes() *string {
	var parts []string
	add := func(label string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			parts = append(parts, label+": "+strings.TrimSpace(*v))
		}
	}
	add("Warm-Up", a.WarmUp)
	add("Finisher", a.Finisher)
	add("Notes", a.Notes)
	add("Progression", a.Progression)
	if len(parts) == 0 {
		return nil
	}
	return strPtr(strings.Join(parts, "\n\n"))
}

func decodeWeeks(raw json.RawMessage, rule *models.ProgressionRule) ([][]models.UnifiedDay, error) {
	items, err := decodeList("Weeks", raw)
	if err != nil {
		return nil, err
	}
	weeks := make([][]models.UnifiedDay, 0, len(items))
	for i, item := range items {
		days, err := decodeDays(index("Weeks", i), item, rule)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, days)
	}
	return weeks, nil
}

func decodeDays(path string, raw json.RawMessage, rule *models.ProgressionRule) ([]models.UnifiedDay, error) {
	items, err := decodeList(path, raw)
	if err != nil {
		return nil, err
	}
	days := make([]models.UnifiedDay, 0, len(items))
	for i, item := range items {
		day, err := decodeDay(index(path, i), item, i, rule)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func decodeDay(path string, raw json.RawMessage, pos int, rule *models.ProgressionRule) (models.UnifiedDay, error) {
	var a authoringDay
	if _, err := decodeObject(path, raw, a.bindings()...); err != nil {
		return models.UnifiedDay{}, err
	}

	day := models.UnifiedDay{
		Name:      fmt.Sprintf("Day %d", pos+1),
		ShortCode: a.ShortCode,
		Goal:      a.Goal,
		Notes:     a.Notes,
		Exercises: []models.UnifiedExercise{},
	}
	if a.Name != nil && strings.TrimSpace(*a.Name) != "" {
		day.Name = strings.TrimSpace(*a.Name)
	}
	if a.Exercises != nil {
		exercises, err := decodeExercises(field(path, "exercises"), a.Exercises, rule)
		if err != nil {
			return models.UnifiedDay{}, err
		}
		day.Exercises = exercises
	}
	if a.Segments != nil {
		segments, err := decodeSegments(field(path, "segments"), a.Segments)
		if err != nil {
			return models.UnifiedDay{}, err
		}
		day.Segments = segments
	}
	return day, nil
}

func decodeSegments(path string, raw json.RawMessage) ([]models.Segment, error) {
	items, err := decodeList(path, raw)
	if err != nil {
		return nil, err
	}
	segments := make([]models.Segment, 0, len(items))
	for i, item := range items {
		var seg models.Segment
		if err := json.Unmarshal(item, &seg); err != nil {
			return nil, parseErr(index(path, i), "invalid segment", err)
		}
		seg.SegmentType, _ = models.NormalizeSegmentType(seg.SegmentType)
		segments = append(segments, seg)
	}
	return segments, nil
}

func decodeExercises(path string, raw json.RawMessage, rule *models.ProgressionRule) ([]models.UnifiedExercise, error) {
	items, err := decodeList(path, raw)
	if err != nil {
		return nil, err
	}
	exercises := make([]models.UnifiedExercise, 0, len(items))
	for i, item := range items {
		ex, err := decodeExercise(index(path, i), item, rule)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

func decodeExercise(path string, raw json.RawMessage, blockRule *models.ProgressionRule) (models.UnifiedExercise, error) {
	var a authoringExercise
	if _, err := decodeObject(path, raw, a.bindings()...); err != nil {
		return models.UnifiedExercise{}, err
	}
	if a.Name == nil || strings.TrimSpace(*a.Name) == "" {
		return models.UnifiedExercise{}, parseErr(field(path, "name"), "exercise name is required", nil)
	}

	ex := models.UnifiedExercise{
		Name:             strings.TrimSpace(*a.Name),
		Type:             a.exerciseType(),
		Notes:            a.Notes,
		ConditioningType: a.ConditioningType,
		StrengthSets:     []models.StrengthSet{},
		ConditioningSets: []models.ConditioningSet{},
		SetGroupID:       a.SetGroupID,
		SetGroupKind:     a.SetGroupKind,
		VideoURLs:        models.MergeVideoURLs(a.VideoURL, a.VideoURLs),
	}
	if a.Category != nil {
		category, _ := models.NormalizeCategory(*a.Category)
		ex.Category = &category
	}
	if ex.Notes == nil && a.IntensityCue != nil {
		ex.Notes = a.IntensityCue
	}

	if err := a.buildSets(path, &ex); err != nil {
		return models.UnifiedExercise{}, err
	}
	ex.Progression = a.progression(ex.Type, blockRule)
	return ex, nil
}

func (a *authoringExercise) exerciseType() models.ExerciseType {
	if a.Type != nil {
		switch t := models.ExerciseType(strings.ToLower(strings.TrimSpace(*a.Type))); t {
		case models.ExerciseStrength, models.ExerciseConditioning:
			return t
		case "":
		default:
			return models.ExerciseOther
		}
	}
	if a.ConditioningType != nil || (a.SetsReps == nil && (a.DurationSeconds != nil || a.DistanceMeters != nil || a.Calories != nil)) {
		return models.ExerciseConditioning
	}
	return models.ExerciseStrength
}

// buildSets fills the exercise's sets from, in order of preference, an
// explicit set list, a set count with reps, a setsReps string, or the
// exercise-level conditioning fields.
func (a *authoringExercise) buildSets(path string, ex *models.UnifiedExercise) error {
	conditioning := ex.Type == models.ExerciseConditioning

	if a.Sets != nil {
		trimmed := strings.TrimSpace(string(a.Sets))
		if strings.HasPrefix(trimmed, "[") {
			return a.explicitSets(field(path, "sets"), ex)
		}
		var count int
		if err := json.Unmarshal(a.Sets, &count); err != nil || count < 1 {
			return parseErr(field(path, "sets"), "expected a set list or a positive count", err)
		}
		if count > models.MaxSetsPerExercise {
			return parseErr(field(path, "sets"), fmt.Sprintf("at most %d sets, got %d", models.MaxSetsPerExercise, count), nil)
		}
		if conditioning {
			for i := range count {
				ex.ConditioningSets = append(ex.ConditioningSets, a.conditioningSet(i))
			}
			return nil
		}
		reps, repsMax := 0, (*int)(nil)
		if a.Reps != nil {
			var err error
			if reps, repsMax, err = parseReps(a.Reps); err != nil {
				return parseErr(field(path, "reps"), "invalid reps", err)
			}
		}
		for i := range count {
			s := models.StrengthSet{Index: i, RepsMax: repsMax}
			if a.Reps != nil {
				s.Reps = intPtr(reps)
			}
			ex.StrengthSets = append(ex.StrengthSets, a.applyStrength(s))
		}
		return nil
	}

	if a.SetsReps != nil && !conditioning {
		sets, err := ParseSetsReps(*a.SetsReps)
		if err != nil {
			return parseErr(field(path, "setsReps"), "invalid sets x reps", err)
		}
		for _, s := range sets {
			ex.StrengthSets = append(ex.StrengthSets, a.applyStrength(s))
		}
		return nil
	}

	if conditioning {
		ex.ConditioningSets = append(ex.ConditioningSets, a.conditioningSet(0))
	}
	return nil
}

func (a *authoringExercise) explicitSets(path string, ex *models.UnifiedExercise) error {
	items, err := decodeList(path, a.Sets)
	if err != nil {
		return err
	}
	if len(items) > models.MaxSetsPerExercise {
		return parseErr(path, fmt.Sprintf("at most %d sets, got %d", models.MaxSetsPerExercise, len(items)), nil)
	}
	for i, item := range items {
		var s authoringSet
		if err := json.Unmarshal(item, &s); err != nil {
			return parseErr(index(path, i), "invalid set", err)
		}
		if ex.Type == models.ExerciseConditioning {
			ex.ConditioningSets = append(ex.ConditioningSets, s.conditioning(i))
		} else {
			ex.StrengthSets = append(ex.StrengthSets, s.strength(i))
		}
	}
	return nil
}

// applyStrength copies exercise-level load and effort fields onto a set.
func (a *authoringExercise) applyStrength(s models.StrengthSet) models.StrengthSet {
	s.Weight = a.Weight
	s.RPE = a.RPE
	s.RIR = a.RIR
	s.Tempo = a.Tempo
	s.RestSeconds = a.RestSeconds
	s.Notes = a.IntensityCue
	return s
}

func (a *authoringExercise) conditioningSet(i int) models.ConditioningSet {
	return models.ConditioningSet{
		Index:            i,
		DurationSeconds:  a.DurationSeconds,
		DistanceMeters:   a.DistanceMeters,
		Calories:         a.Calories,
		Rounds:           a.Rounds,
		TargetPace:       a.TargetPace,
		EffortDescriptor: a.EffortDescriptor,
		RestSeconds:      a.RestSeconds,
	}
}

// progression resolves the exercise's rule: an explicit rule wins, then the
// block-level progression text, then a custom pass-through rule. A
// block-level weight rule only applies to strength work.
func (a *authoringExercise) progression(t models.ExerciseType, blockRule *models.ProgressionRule) *models.ProgressionRule {
	if a.Progression != nil {
		rule := *a.Progression
		if rule.Type == "" {
			rule.Type = models.ProgressionCustom
		}
		return &rule
	}
	if blockRule != nil && (blockRule.Type != models.ProgressionWeight || t == models.ExerciseStrength) {
		rule := *blockRule
		return &rule
	}
	return &models.ProgressionRule{Type: models.ProgressionCustom}
}

func normalizeLegacy(data []byte) (*models.UnifiedBlock, error) {
	var b models.Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, decodeError(err)
	}
	if err := checkWeeks("numberOfWeeks", b.NumberOfWeeks); err != nil {
		return nil, err
	}
	return FromBlock(&b), nil
}

func checkWeeks(path string, n int) error {
	switch {
	case n < 1:
		return parseErr(path, fmt.Sprintf("must be positive, got %d", n), nil)
	case n > models.MaxWeeks:
		return parseErr(path, weeksTooMany(n), nil)
	}
	return nil
}

func weeksTooMany(n int) string {
	return fmt.Sprintf("at most %d weeks, got %d", models.MaxWeeks, n)
}

func normalizeUnified(obj map[string]json.RawMessage, data []byte) (*models.UnifiedBlock, error) {
	var u models.UnifiedBlock
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, decodeError(err)
	}
	if !present(obj, "numberOfWeeks") {
		u.NumberOfWeeks = max(len(u.Weeks), 1)
	}
	if err := checkWeeks("numberOfWeeks", u.NumberOfWeeks); err != nil {
		return nil, err
	}
	if u.Source == "" {
		u.Source = models.SourceUser
	}
	u.Tags = orEmpty(u.Tags)
	u.Disciplines = orEmpty(u.Disciplines)
	canonicalDays(u.Days)
	for _, week := range u.Weeks {
		canonicalDays(week)
	}
	if u.Days == nil {
		u.Days = []models.UnifiedDay{}
		if len(u.Weeks) > 0 {
			u.Days = slices.Clone(u.Weeks[0])
		}
	}
	return &u, nil
}

func canonicalDays(days []models.UnifiedDay) {
	for i := range days {
		if days[i].Exercises == nil {
			days[i].Exercises = []models.UnifiedExercise{}
		}
		for j := range days[i].Segments {
			seg := &days[i].Segments[j]
			seg.SegmentType, _ = models.NormalizeSegmentType(seg.SegmentType)
		}
	}
}

// decodeError converts a whole-document decode failure into a ParseError,
// keeping the field path reported by encoding/json when there is one.
func decodeError(err error) *ParseError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return parseErr(typeErr.Field, "invalid value", err)
	}
	return parseErr("", "invalid document", err)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
