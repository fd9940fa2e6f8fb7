package normalize

import (
	"encoding/json"

	"github.com/claude/blockboard/internal/models"
)

// binding ties a JSON key to the destination it decodes into.
type binding struct {
	key string
	dst any
}

func bind(key string, dst any) binding {
	return binding{key: key, dst: dst}
}

// decodeObject decodes the bound keys of a JSON object one at a time so a
// type mismatch is reported against the path of the field that caused it.
// Null and missing keys leave their destination untouched.
func decodeObject(path string, raw json.RawMessage, fields ...binding) (map[string]json.RawMessage, error) {
	obj, err := probe(raw)
	if err != nil {
		return nil, parseErr(path, "expected an object", err)
	}
	if err := decodeFields(path, obj, fields...); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeFields(path string, obj map[string]json.RawMessage, fields ...binding) error {
	for _, f := range fields {
		v, ok := lookup(obj, f.key)
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return parseErr(field(path, f.key), "invalid value", err)
		}
	}
	return nil
}

// decodeList splits a JSON array into its raw elements.
func decodeList(path string, raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, parseErr(path, "expected a list", err)
	}
	return items, nil
}

// authoringBlock holds the top-level metadata of an authored block. The
// content keys (Weeks, Days, Exercises) are decoded separately.
type authoringBlock struct {
	Title                     *string
	Description               *string
	Goal                      *string
	TargetAthlete             *string
	NumberOfWeeks             *int
	DurationMinutes           *int
	Difficulty                *int
	Equipment                 *string
	WarmUp                    *string
	Finisher                  *string
	Notes                     *string
	EstimatedTotalTimeMinutes *int
	Progression               *string
	Source                    *string
	Tags                      []string
	Disciplines               []string
}

func (a *authoringBlock) bindings() []binding {
	return []binding{
		bind("Title", &a.Title),
		bind("Description", &a.Description),
		bind("Goal", &a.Goal),
		bind("TargetAthlete", &a.TargetAthlete),
		bind("NumberOfWeeks", &a.NumberOfWeeks),
		bind("DurationMinutes", &a.DurationMinutes),
		bind("Difficulty", &a.Difficulty),
		bind("Equipment", &a.Equipment),
		bind("WarmUp", &a.WarmUp),
		bind("Finisher", &a.Finisher),
		bind("Notes", &a.Notes),
		bind("EstimatedTotalTimeMinutes", &a.EstimatedTotalTimeMinutes),
		bind("Progression", &a.Progression),
		bind("Source", &a.Source),
		bind("Tags", &a.Tags),
		bind("Disciplines", &a.Disciplines),
	}
}

type authoringDay struct {
	Name      *string
	ShortCode *string
	Goal      *string
	Notes     *string
	Exercises json.RawMessage
	Segments  json.RawMessage
}

func (a *authoringDay) bindings() []binding {
	return []binding{
		bind("name", &a.Name),
		bind("shortCode", &a.ShortCode),
		bind("goal", &a.Goal),
		bind("notes", &a.Notes),
		bind("exercises", &a.Exercises),
		bind("segments", &a.Segments),
	}
}

type authoringExercise struct {
	Name             *string
	Type             *string
	Category         *string
	SetsReps         *string
	Sets             json.RawMessage
	Reps             json.RawMessage
	Weight           *float64
	RPE              *float64
	RIR              *float64
	Tempo            *string
	IntensityCue     *string
	Notes            *string
	ConditioningType *string
	Rounds           *int
	DurationSeconds  *int
	DistanceMeters   *float64
	Calories         *float64
	TargetPace       *string
	EffortDescriptor *string
	RestSeconds      *int
	Progression      *models.ProgressionRule
	SetGroupID       *string
	SetGroupKind     *string
	VideoURL         *string
	VideoURLs        []string
}

func (a *authoringExercise) bindings() []binding {
	return []binding{
		bind("name", &a.Name),
		bind("type", &a.Type),
		bind("category", &a.Category),
		bind("setsReps", &a.SetsReps),
		bind("sets", &a.Sets),
		bind("reps", &a.Reps),
		bind("weight", &a.Weight),
		bind("rpe", &a.RPE),
		bind("rir", &a.RIR),
		bind("tempo", &a.Tempo),
		bind("intensityCue", &a.IntensityCue),
		bind("notes", &a.Notes),
		bind("conditioningType", &a.ConditioningType),
		bind("rounds", &a.Rounds),
		bind("durationSeconds", &a.DurationSeconds),
		bind("distanceMeters", &a.DistanceMeters),
		bind("calories", &a.Calories),
		bind("targetPace", &a.TargetPace),
		bind("effortDescriptor", &a.EffortDescriptor),
		bind("restSeconds", &a.RestSeconds),
		bind("progression", &a.Progression),
		bind("setGroupId", &a.SetGroupID),
		bind("setGroupKind", &a.SetGroupKind),
		bind("videoUrl", &a.VideoURL),
		bind("videoUrls", &a.VideoURLs),
	}
}

// authoringSet is one explicitly listed set. Strength and conditioning
// fields share the object; the exercise type decides which are used.
type authoringSet struct {
	Reps             *int     `json:"reps"`
	RepsMax          *int     `json:"repsMax"`
	Weight           *float64 `json:"weight"`
	PercentageOfMax  *float64 `json:"percentageOfMax"`
	RPE              *float64 `json:"rpe"`
	RIR              *float64 `json:"rir"`
	Tempo            *string  `json:"tempo"`
	RestSeconds      *int     `json:"restSeconds"`
	Notes            *string  `json:"notes"`
	DurationSeconds  *int     `json:"durationSeconds"`
	DistanceMeters   *float64 `json:"distanceMeters"`
	Calories         *float64 `json:"calories"`
	Rounds           *int     `json:"rounds"`
	TargetPace       *string  `json:"targetPace"`
	EffortDescriptor *string  `json:"effortDescriptor"`
}

func (s authoringSet) strength(i int) models.StrengthSet {
	return models.StrengthSet{
		Index:           i,
		Reps:            s.Reps,
		RepsMax:         s.RepsMax,
		Weight:          s.Weight,
		PercentageOfMax: s.PercentageOfMax,
		RPE:             s.RPE,
		RIR:             s.RIR,
		Tempo:           s.Tempo,
		RestSeconds:     s.RestSeconds,
		Notes:           s.Notes,
	}
}

func (s authoringSet) conditioning(i int) models.ConditioningSet {
	return models.ConditioningSet{
		Index:            i,
		DurationSeconds:  s.DurationSeconds,
		DistanceMeters:   s.DistanceMeters,
		Calories:         s.Calories,
		Rounds:           s.Rounds,
		TargetPace:       s.TargetPace,
		EffortDescriptor: s.EffortDescriptor,
		RestSeconds:      s.RestSeconds,
		Notes:            s.Notes,
	}
}
