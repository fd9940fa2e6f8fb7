package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a workout session.
type SessionStatus string

const (
	StatusNotStarted SessionStatus = "notStarted"
	StatusInProgress SessionStatus = "inProgress"
	StatusCompleted  SessionStatus = "completed"
)

// WorkoutSession is one concrete (week, day) instance of a block.
type WorkoutSession struct {
	ID            uuid.UUID         `json:"id"`
	BlockID       uuid.UUID         `json:"blockId"`
	WeekIndex     int               `json:"weekIndex"`
	DayTemplateID uuid.UUID         `json:"dayTemplateId"`
	DayName       string            `json:"dayName"`
	Date          *time.Time        `json:"date,omitempty"`
	Status        SessionStatus     `json:"status"`
	Exercises     []SessionExercise `json:"exercises"`
	Segments      []SessionSegment  `json:"segments"`
}

// SessionExercise is an exercise within a session.
type SessionExercise struct {
	ID                 uuid.UUID      `json:"id"`
	ExerciseTemplateID *uuid.UUID     `json:"exerciseTemplateId,omitempty"`
	CustomName         string         `json:"customName"`
	Type               ExerciseType   `json:"type"`
	SetGroupID         *string        `json:"setGroupId,omitempty"`
	ExpectedSets       []SessionSet   `json:"expectedSets"`
	LoggedSets         []SessionSet   `json:"loggedSets"`
	Skill              *SkillProgress `json:"skill,omitempty"`
}

// SkillProgress exposes the authored skill deltas for a week together with
// the number of accumulated weeks, leaving scaling to the consumer.
type SkillProgress struct {
	WeekOffset       int      `json:"weekOffset"`
	DeltaResistance  *int     `json:"deltaResistance,omitempty"`
	DeltaRounds      *int     `json:"deltaRounds,omitempty"`
	DeltaConstraints []string `json:"deltaConstraints"`
}

// SessionSet is one set inside a session, expected and logged values side
// by side.
type SessionSet struct {
	ID               uuid.UUID  `json:"id"`
	Index            int        `json:"index"`
	ExpectedReps     *int       `json:"expectedReps,omitempty"`
	ExpectedRepsMax  *int       `json:"expectedRepsMax,omitempty"`
	ExpectedWeight   *float64   `json:"expectedWeight,omitempty"`
	ExpectedTime     *int       `json:"expectedTime,omitempty"`
	ExpectedDistance *float64   `json:"expectedDistance,omitempty"`
	ExpectedCalories *float64   `json:"expectedCalories,omitempty"`
	ExpectedRounds   *int       `json:"expectedRounds,omitempty"`
	RPE              *float64   `json:"rpe,omitempty"`
	RIR              *float64   `json:"rir,omitempty"`
	Tempo            *string    `json:"tempo,omitempty"`
	RestSeconds      *int       `json:"restSeconds,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	LoggedReps       *int       `json:"loggedReps,omitempty"`
	LoggedWeight     *float64   `json:"loggedWeight,omitempty"`
	LoggedTime       *int       `json:"loggedTime,omitempty"`
	LoggedDistance   *float64   `json:"loggedDistance,omitempty"`
	LoggedCalories   *float64   `json:"loggedCalories,omitempty"`
	LoggedRounds     *int       `json:"loggedRounds,omitempty"`
	LoggedRPE        *float64   `json:"loggedRpe,omitempty"`
	IsCompleted      bool       `json:"isCompleted"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// SetCompleted updates the completion flag. CompletedAt is stamped only on
// the transition to completed and cleared whenever the set is reverted.
func (s *SessionSet) SetCompleted(done bool, now time.Time) {
	switch {
	case done && !s.IsCompleted:
		t := now.UTC()
		s.CompletedAt = &t
	case !done:
		s.CompletedAt = nil
	}
	s.IsCompleted = done
}

// SessionSegment records the outcome of one class segment.
type SessionSegment struct {
	ID                    uuid.UUID  `json:"id"`
	SegmentName           string     `json:"segmentName"`
	SegmentType           string     `json:"segmentType"`
	ActualDurationMinutes *int       `json:"actualDurationMinutes,omitempty"`
	IsCompleted           bool       `json:"isCompleted"`
	CompletedAt           *time.Time `json:"completedAt,omitempty"`
	Notes                 *string    `json:"notes,omitempty"`
}

// SetCompleted follows the same timestamp rule as SessionSet.SetCompleted.
func (s *SessionSegment) SetCompleted(done bool, now time.Time) {
	switch {
	case done && !s.IsCompleted:
		t := now.UTC()
		s.CompletedAt = &t
	case !done:
		s.CompletedAt = nil
	}
	s.IsCompleted = done
}

// SetLog carries the values recorded for one set. Nil fields are left
// unchanged.
type SetLog struct {
	Reps      *int     `json:"reps,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	Time      *int     `json:"time,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
	Calories  *float64 `json:"calories,omitempty"`
	Rounds    *int     `json:"rounds,omitempty"`
	RPE       *float64 `json:"rpe,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}

// FindExercise returns the exercise with the given id, or nil.
func (ws *WorkoutSession) FindExercise(id uuid.UUID) *SessionExercise {
	for i := range ws.Exercises {
		if ws.Exercises[i].ID == id {
			return &ws.Exercises[i]
		}
	}
	return nil
}

// LogSet records values for the set with the given index on an exercise.
// The logged set starts as a copy of the expected set the first time it is
// touched. It reports false when no such expected set exists.
func (ws *WorkoutSession) LogSet(exerciseID uuid.UUID, index int, entry SetLog, now time.Time) bool {
	ex := ws.FindExercise(exerciseID)
	if ex == nil {
		return false
	}
	var logged *SessionSet
	for i := range ex.LoggedSets {
		if ex.LoggedSets[i].Index == index {
			logged = &ex.LoggedSets[i]
			break
		}
	}
	if logged == nil {
		found := false
		for _, s := range ex.ExpectedSets {
			if s.Index == index {
				ex.LoggedSets = append(ex.LoggedSets, s)
				found = true
				break
			}
		}
		if !found {
			return false
		}
		logged = &ex.LoggedSets[len(ex.LoggedSets)-1]
	}

	if entry.Reps != nil {
		logged.LoggedReps = entry.Reps
	}
	if entry.Weight != nil {
		logged.LoggedWeight = entry.Weight
	}
	if entry.Time != nil {
		logged.LoggedTime = entry.Time
	}
	if entry.Distance != nil {
		logged.LoggedDistance = entry.Distance
	}
	if entry.Calories != nil {
		logged.LoggedCalories = entry.Calories
	}
	if entry.Rounds != nil {
		logged.LoggedRounds = entry.Rounds
	}
	if entry.RPE != nil {
		logged.LoggedRPE = entry.RPE
	}
	done := true
	if entry.Completed != nil {
		done = *entry.Completed
	}
	logged.SetCompleted(done, now)
	ws.RefreshStatus()
	return true
}

// RefreshStatus derives the session status from set completion.
func (ws *WorkoutSession) RefreshStatus() {
	total, done := ws.SetCounts()
	switch {
	case done == 0:
		ws.Status = StatusNotStarted
	case done >= total:
		ws.Status = StatusCompleted
	default:
		ws.Status = StatusInProgress
	}
}

// SetCounts returns the number of expected sets and the number of logged
// sets that are completed.
func (ws *WorkoutSession) SetCounts() (total, completed int) {
	for _, ex := range ws.Exercises {
		total += len(ex.ExpectedSets)
		for _, s := range ex.LoggedSets {
			if s.IsCompleted {
				completed++
			}
		}
	}
	return total, completed
}
