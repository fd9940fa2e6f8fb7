// Package sessions materializes concrete workout sessions from a block and
// extends them when exercises are added to a running block.
package sessions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/progression"
)

var (
	// ErrDayIndexOutOfRange is returned when a day index does not address a
	// day of the block.
	ErrDayIndexOutOfRange = errors.New("day index out of range")
	// ErrWeekOutOfRange is returned when a week lies outside the block.
	ErrWeekOutOfRange = errors.New("week out of range")
)

// Materializer builds sessions using a progression engine.
type Materializer struct {
	Engine progression.Engine
}

// MakeSessions materializes a block with the default engine.
func MakeSessions(b *models.Block) []models.WorkoutSession {
	return Materializer{}.MakeSessions(b)
}

// MakeSessions creates one session per (week, day) pair of the block, in
// week then day order. Expected sets come from the progression engine at the
// session's week; nothing is logged yet.
func (m Materializer) MakeSessions(b *models.Block) []models.WorkoutSession {
	var out []models.WorkoutSession
	for week := 1; week <= b.NumberOfWeeks; week++ {
		for _, day := range b.DaysForWeek(week) {
			out = append(out, m.makeSession(b.ID, day, week))
		}
	}
	return out
}

func (m Materializer) makeSession(blockID uuid.UUID, day models.DayTemplate, week int) models.WorkoutSession {
	ws := models.WorkoutSession{
		ID:            uuid.New(),
		BlockID:       blockID,
		WeekIndex:     week,
		DayTemplateID: day.ID,
		DayName:       day.Name,
		Status:        models.StatusNotStarted,
		Exercises:     make([]models.SessionExercise, 0, len(day.Exercises)),
	}
	for _, t := range day.Exercises {
		ws.Exercises = append(ws.Exercises, m.sessionExercise(t, week))
	}
	if len(day.Segments) > 0 {
		ws.Segments = make([]models.SessionSegment, 0, len(day.Segments))
		for _, seg := range day.Segments {
			ws.Segments = append(ws.Segments, models.SessionSegment{
				ID:                    uuid.New(),
				SegmentName:           seg.Name,
				SegmentType:           seg.SegmentType,
				ActualDurationMinutes: seg.DurationMinutes,
			})
		}
	}
	return ws
}

func (m Materializer) sessionExercise(t models.ExerciseTemplate, week int) models.SessionExercise {
	templateID := t.ID
	return models.SessionExercise{
		ID:                 uuid.New(),
		ExerciseTemplateID: &templateID,
		CustomName:         t.CustomName,
		Type:               t.Type,
		SetGroupID:         t.SetGroupID,
		ExpectedSets:       m.Engine.ComputeExpectedSets(t, week),
		LoggedSets:         []models.SessionSet{},
		Skill:              m.Engine.SkillDeltas(t.ProgressionRule, week),
	}
}

// AddExerciseToTemplate appends a new exercise to days[dayIndex] of a copy
// of the block, and to any per-week day sharing its id, then extends the
// sessions after fromWeek that use that day. Arguments are validated before
// anything is changed.
func AddExerciseToTemplate(b models.Block, existing []models.WorkoutSession, dayIndex int, name string, typ models.ExerciseType, fromWeek int) (models.Block, []models.WorkoutSession, error) {
	return Materializer{}.AddExerciseToTemplate(b, existing, dayIndex, name, typ, fromWeek)
}

// AddExerciseToTemplate is the engine-aware form of the package function.
func (m Materializer) AddExerciseToTemplate(b models.Block, existing []models.WorkoutSession, dayIndex int, name string, typ models.ExerciseType, fromWeek int) (models.Block, []models.WorkoutSession, error) {
	if dayIndex < 0 || dayIndex >= len(b.Days) {
		return b, existing, fmt.Errorf("%w: %d of %d days", ErrDayIndexOutOfRange, dayIndex, len(b.Days))
	}
	if fromWeek < 1 || fromWeek > b.NumberOfWeeks {
		return b, existing, fmt.Errorf("%w: week %d of %d", ErrWeekOutOfRange, fromWeek, b.NumberOfWeeks)
	}
	if typ == "" {
		typ = models.ExerciseStrength
	}

	tmpl := NewExerciseTemplate(name, typ)
	updated := b.Clone()
	day := &updated.Days[dayIndex]
	day.Exercises = append(day.Exercises, tmpl)
	for _, week := range updated.WeekTemplates {
		for i := range week {
			if week[i].ID == day.ID {
				week[i].Exercises = append(week[i].Exercises, tmpl)
			}
		}
	}

	return updated, m.ExtendFutureSessions(existing, day.ID, tmpl, fromWeek), nil
}

// NewExerciseTemplate returns a template for an exercise added by hand. It
// has no planned sets and a custom progression rule.
func NewExerciseTemplate(name string, typ models.ExerciseType) models.ExerciseTemplate {
	return models.ExerciseTemplate{
		ID:               uuid.New(),
		CustomName:       strings.TrimSpace(name),
		Type:             typ,
		StrengthSets:     []models.StrengthSet{},
		ConditioningSets: []models.ConditioningSet{},
		ProgressionRule:  models.ProgressionRule{Type: models.ProgressionCustom},
	}
}

// ExtendFutureSessions returns a copy of sessions in which every session
// after fromWeek for the given day template carries an exercise for tmpl.
// A session that already has an exercise with the template's id, or with
// the same name and type, is left alone. The input is not modified.
func ExtendFutureSessions(sessions []models.WorkoutSession, dayTemplateID uuid.UUID, tmpl models.ExerciseTemplate, fromWeek int) []models.WorkoutSession {
	return Materializer{}.ExtendFutureSessions(sessions, dayTemplateID, tmpl, fromWeek)
}

// ExtendFutureSessions is the engine-aware form of the package function.
func (m Materializer) ExtendFutureSessions(sessions []models.WorkoutSession, dayTemplateID uuid.UUID, tmpl models.ExerciseTemplate, fromWeek int) []models.WorkoutSession {
	out := make([]models.WorkoutSession, len(sessions))
	for i, ws := range sessions {
		if ws.WeekIndex > fromWeek && ws.DayTemplateID == dayTemplateID && !hasExercise(ws, tmpl) {
			exercises := make([]models.SessionExercise, len(ws.Exercises), len(ws.Exercises)+1)
			copy(exercises, ws.Exercises)
			ws.Exercises = append(exercises, m.sessionExercise(tmpl, ws.WeekIndex))
		}
		out[i] = ws
	}
	return out
}

func hasExercise(ws models.WorkoutSession, tmpl models.ExerciseTemplate) bool {
	for _, ex := range ws.Exercises {
		if ex.ExerciseTemplateID != nil && *ex.ExerciseTemplateID == tmpl.ID {
			return true
		}
		if strings.EqualFold(ex.CustomName, tmpl.CustomName) && ex.Type == tmpl.Type {
			return true
		}
	}
	return false
}
