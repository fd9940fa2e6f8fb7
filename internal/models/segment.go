package models

import (
	"encoding/json"
	"strings"
)

// Segment is a class-structured unit of a day (warmup, technique, drill,
// positional sparring, cooldown, ...). Every member is optional; absence
// means the field does not apply.
type Segment struct {
	Name            string   `json:"name"`
	SegmentType     string   `json:"segmentType"`
	Domain          *string  `json:"domain,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	Objective       *string  `json:"objective,omitempty"`
	Constraints     []string `json:"constraints"`
	CoachingCues    []string `json:"coachingCues"`
	Positions       []string `json:"positions"`
	StartPosition   *string  `json:"startPosition,omitempty"`
	EndCondition    *string  `json:"endCondition,omitempty"`
	IntensityCue    *string  `json:"intensityCue,omitempty"`
	Notes           *string  `json:"notes,omitempty"`

	Techniques    []Technique    `json:"techniques"`
	DrillPlan     *DrillPlan     `json:"drillPlan,omitempty"`
	PartnerPlan   *PartnerPlan   `json:"partnerPlan,omitempty"`
	RoundPlan     *RoundPlan     `json:"roundPlan,omitempty"`
	Scoring       *Scoring       `json:"scoring,omitempty"`
	StartingState *StartingState `json:"startingState,omitempty"`
	Breathwork    *Breathwork    `json:"breathwork,omitempty"`
	Props         []string       `json:"props"`
	FlowSequence  []FlowStep     `json:"flowSequence"`
	Media         *Media         `json:"media,omitempty"`
	Safety        *Safety        `json:"safety,omitempty"`
}

// IsWarmup reports whether the segment is a warmup, ignoring case.
func (s Segment) IsWarmup() bool {
	return strings.EqualFold(s.SegmentType, SegmentWarmup)
}

// Technique is one technique taught within a segment.
type Technique struct {
	Name         string   `json:"name"`
	Variant      *string  `json:"variant,omitempty"`
	KeyDetails   []string `json:"keyDetails"`
	CommonErrors []string `json:"commonErrors"`
	Counters     []string `json:"counters"`
	FollowUps    []string `json:"followUps"`
	VideoURLs    []string `json:"videoUrls"`
}

// UnmarshalJSON accepts the legacy singular "videoUrl" alongside "videoUrls".
func (t *Technique) UnmarshalJSON(data []byte) error {
	type plain Technique
	var aux struct {
		plain
		VideoURL *string `json:"videoUrl"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Technique(aux.plain)
	t.VideoURLs = MergeVideoURLs(aux.VideoURL, t.VideoURLs)
	return nil
}

// DrillPlan lists timed drill items.
type DrillPlan struct {
	Items []DrillItem `json:"items"`
}

// DrillItem is one timed drill.
type DrillItem struct {
	Name        string  `json:"name"`
	WorkSeconds int     `json:"workSeconds"`
	RestSeconds int     `json:"restSeconds"`
	Notes       *string `json:"notes,omitempty"`
}

// PartnerPlan describes cooperative partner work.
type PartnerPlan struct {
	Rounds               *int            `json:"rounds,omitempty"`
	RoundDurationSeconds *int            `json:"roundDurationSeconds,omitempty"`
	RestSeconds          *int            `json:"restSeconds,omitempty"`
	Resistance           *int            `json:"resistance,omitempty"`
	SwitchEverySeconds   *int            `json:"switchEverySeconds,omitempty"`
	Roles                *PartnerRoles   `json:"roles,omitempty"`
	QualityTargets       *QualityTargets `json:"qualityTargets,omitempty"`
}

// PartnerRoles holds the attacker and defender goals.
type PartnerRoles struct {
	AttackerGoal *string `json:"attackerGoal,omitempty"`
	DefenderGoal *string `json:"defenderGoal,omitempty"`
}

// QualityTargets are measurable goals for partner work.
type QualityTargets struct {
	SuccessRateTarget    *float64 `json:"successRateTarget,omitempty"`
	CleanRepsTarget      *int     `json:"cleanRepsTarget,omitempty"`
	DecisionSpeedSeconds *float64 `json:"decisionSpeedSeconds,omitempty"`
	ControlTimeSeconds   *int     `json:"controlTimeSeconds,omitempty"`
}

// RoundPlan describes live rounds.
type RoundPlan struct {
	Rounds               *int     `json:"rounds,omitempty"`
	RoundDurationSeconds *int     `json:"roundDurationSeconds,omitempty"`
	RestSeconds          *int     `json:"restSeconds,omitempty"`
	IntensityCue         *string  `json:"intensityCue,omitempty"`
	ResetRule            *string  `json:"resetRule,omitempty"`
	WinConditions        []string `json:"winConditions"`
}

// Scoring lists what scores for each side.
type Scoring struct {
	AttackerScoresIf []string `json:"attackerScoresIf"`
	DefenderScoresIf []string `json:"defenderScoresIf"`
}

// StartingState describes grips and roles at the start of a round.
type StartingState struct {
	Grips []string `json:"grips"`
	Roles []string `json:"roles"`
}

// Breathwork describes a breathing protocol.
type Breathwork struct {
	Style           *string `json:"style,omitempty"`
	Pattern         *string `json:"pattern,omitempty"`
	DurationSeconds *int    `json:"durationSeconds,omitempty"`
	BreathCount     *int    `json:"breathCount,omitempty"`
	HoldSeconds     *int    `json:"holdSeconds,omitempty"`
}

// FlowStep is one pose in a flow sequence.
type FlowStep struct {
	PoseName      string  `json:"poseName"`
	HoldSeconds   *int    `json:"holdSeconds,omitempty"`
	TransitionCue *string `json:"transitionCue,omitempty"`
}

// Media references reference material for a segment.
type Media struct {
	VideoURLs          []string `json:"videoUrls"`
	ImageURL           *string  `json:"imageUrl,omitempty"`
	DiagramAssetID     *string  `json:"diagramAssetId,omitempty"`
	CoachNotesMarkdown *string  `json:"coachNotesMarkdown,omitempty"`
}

// UnmarshalJSON accepts the legacy singular "videoUrl" alongside "videoUrls".
func (m *Media) UnmarshalJSON(data []byte) error {
	type plain Media
	var aux struct {
		plain
		VideoURL *string `json:"videoUrl"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Media(aux.plain)
	m.VideoURLs = MergeVideoURLs(aux.VideoURL, m.VideoURLs)
	return nil
}

// Safety lists contraindications and stop conditions.
type Safety struct {
	Contraindications []string `json:"contraindications"`
	StopIf            []string `json:"stopIf"`
	IntensityCeiling  *string  `json:"intensityCeiling,omitempty"`
}

// MergeVideoURLs folds a legacy singular URL into a URL list. An absent or
// blank singular URL leaves the list untouched, so a missing field stays nil.
func MergeVideoURLs(single *string, list []string) []string {
	if single == nil || strings.TrimSpace(*single) == "" {
		return list
	}
	url := strings.TrimSpace(*single)
	for _, u := range list {
		if u == url {
			return list
		}
	}
	return append([]string{url}, list...)
}
