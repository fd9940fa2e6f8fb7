package whiteboard

import (
	"fmt"
	"strings"

	"github.com/claude/blockboard/internal/models"
)

func formatSegment(seg models.Segment) Item {
	item := Item{Primary: seg.Name, Bullets: segmentBullets(seg)}

	var parts []string
	if seg.DurationMinutes != nil {
		parts = append(parts, fmt.Sprintf("%d min", *seg.DurationMinutes))
	}
	rounds, roundSeconds, rest := roundShape(seg)
	if rounds != nil {
		parts = append(parts, fmt.Sprintf("%d rounds", *rounds))
	}
	if roundSeconds != nil {
		parts = append(parts, formatSeconds(*roundSeconds))
	}
	if len(parts) > 0 {
		item.Secondary = ptr(strings.Join(parts, ", "))
	}
	item.Tertiary = formatRest(rest, "Rest ")
	return item
}

// roundShape takes round count, round length and rest from the round plan,
// falling back to the partner plan.
func roundShape(seg models.Segment) (rounds, roundSeconds, rest *int) {
	if rp := seg.RoundPlan; rp != nil {
		rounds, roundSeconds, rest = rp.Rounds, rp.RoundDurationSeconds, rp.RestSeconds
	}
	if pp := seg.PartnerPlan; pp != nil {
		if rounds == nil {
			rounds = pp.Rounds
		}
		if roundSeconds == nil {
			roundSeconds = pp.RoundDurationSeconds
		}
		if rest == nil {
			rest = pp.RestSeconds
		}
	}
	return rounds, roundSeconds, rest
}

func segmentBullets(seg models.Segment) []string {
	b := []string{}
	if seg.Objective != nil {
		b = append(b, "Objective: "+*seg.Objective)
	}
	if seg.StartPosition != nil {
		b = append(b, "Start Position: "+*seg.StartPosition)
	}
	if len(seg.Positions) > 0 {
		b = append(b, "Positions: "+strings.Join(seg.Positions, ", "))
	}

	for _, t := range seg.Techniques {
		name := t.Name
		if t.Variant != nil && *t.Variant != "" {
			name += " (" + *t.Variant + ")"
		}
		b = append(b, name)
		for _, d := range t.KeyDetails {
			b = append(b, "  - "+d)
		}
		for _, c := range t.Counters {
			b = append(b, "  Counter: "+c)
		}
		for _, f := range t.FollowUps {
			b = append(b, "  Follow-up: "+f)
		}
	}

	if seg.DrillPlan != nil {
		for _, d := range seg.DrillPlan.Items {
			line := d.Name + ": " + formatSeconds(d.WorkSeconds)
			if d.RestSeconds > 0 {
				line += " / " + formatSeconds(d.RestSeconds) + " rest"
			}
			b = append(b, line)
		}
	}

	if len(seg.FlowSequence) > 0 {
		b = append(b, "Flow Sequence:")
		for _, step := range seg.FlowSequence {
			line := "  - " + step.PoseName
			if step.HoldSeconds != nil {
				line += fmt.Sprintf(" (%ds)", *step.HoldSeconds)
			}
			if step.TransitionCue != nil && *step.TransitionCue != "" {
				line += ": " + *step.TransitionCue
			}
			b = append(b, line)
		}
	}

	b = appendList(b, "Constraints:", seg.Constraints)
	b = appendList(b, "Cues:", seg.CoachingCues)

	if pp := seg.PartnerPlan; pp != nil {
		b = appendList(b, "Quality Targets:", qualityTargets(pp.QualityTargets))
		if pp.Roles != nil {
			if pp.Roles.AttackerGoal != nil {
				b = append(b, "Attacker: "+*pp.Roles.AttackerGoal)
			}
			if pp.Roles.DefenderGoal != nil {
				b = append(b, "Defender: "+*pp.Roles.DefenderGoal)
			}
		}
		if pp.Resistance != nil {
			b = append(b, fmt.Sprintf("Resistance: %d%%", *pp.Resistance))
		}
		if pp.SwitchEverySeconds != nil && *pp.SwitchEverySeconds > 0 {
			b = append(b, "Switch roles every "+formatSeconds(*pp.SwitchEverySeconds))
		}
	}

	if rp := seg.RoundPlan; rp != nil {
		b = appendList(b, "Win Conditions:", rp.WinConditions)
	}
	if sc := seg.Scoring; sc != nil {
		b = appendList(b, "Attacker scores if:", sc.AttackerScoresIf)
		b = appendList(b, "Defender scores if:", sc.DefenderScoresIf)
	}
	if rp := seg.RoundPlan; rp != nil && rp.ResetRule != nil {
		b = append(b, "Reset: "+*rp.ResetRule)
	}
	if seg.EndCondition != nil {
		b = append(b, "End Condition: "+*seg.EndCondition)
	}

	if bw := seg.Breathwork; bw != nil {
		var parts []string
		if bw.Style != nil {
			parts = append(parts, *bw.Style)
		}
		if bw.Pattern != nil {
			parts = append(parts, *bw.Pattern)
		}
		if bw.DurationSeconds != nil {
			parts = append(parts, formatSeconds(*bw.DurationSeconds))
		}
		if bw.HoldSeconds != nil {
			parts = append(parts, fmt.Sprintf("hold %ds", *bw.HoldSeconds))
		}
		if len(parts) > 0 {
			b = append(b, "Breathwork: "+strings.Join(parts, ", "))
		}
		if bw.BreathCount != nil {
			b = append(b, fmt.Sprintf("Breath count: %d", *bw.BreathCount))
		}
	}

	if len(seg.Props) > 0 {
		b = append(b, "Props: "+strings.Join(seg.Props, ", "))
	}
	b = appendList(b, "Media:", media(seg.Media))

	if s := seg.Safety; s != nil {
		var items []string
		items = append(items, s.Contraindications...)
		for _, stop := range s.StopIf {
			items = append(items, "Stop If: "+stop)
		}
		b = appendList(b, "Safety:", items)
		if s.IntensityCeiling != nil {
			b = append(b, "Intensity Ceiling: "+*s.IntensityCeiling)
		}
	}

	if ss := seg.StartingState; ss != nil {
		var items []string
		if len(ss.Grips) > 0 {
			items = append(items, "Grips: "+strings.Join(ss.Grips, ", "))
		}
		if len(ss.Roles) > 0 {
			items = append(items, "Roles: "+strings.Join(ss.Roles, ", "))
		}
		b = appendList(b, "Starting State:", items)
	}

	if seg.Notes != nil && *seg.Notes != "" {
		b = append(b, "Notes: "+*seg.Notes)
	}
	return b
}

func qualityTargets(q *models.QualityTargets) []string {
	if q == nil {
		return nil
	}
	var out []string
	if q.SuccessRateTarget != nil {
		rate := *q.SuccessRateTarget
		if rate <= 1 {
			rate *= 100
		}
		out = append(out, "Success rate: "+formatNumber(rate)+"%")
	}
	if q.CleanRepsTarget != nil {
		out = append(out, fmt.Sprintf("Clean reps: %d", *q.CleanRepsTarget))
	}
	if q.DecisionSpeedSeconds != nil {
		out = append(out, "Decision speed: "+formatNumber(*q.DecisionSpeedSeconds)+"s")
	}
	if q.ControlTimeSeconds != nil {
		out = append(out, fmt.Sprintf("Control time: %ds", *q.ControlTimeSeconds))
	}
	return out
}

func media(m *models.Media) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, u := range m.VideoURLs {
		out = append(out, "Video: "+u)
	}
	if m.ImageURL != nil {
		out = append(out, "Image: "+*m.ImageURL)
	}
	if m.DiagramAssetID != nil {
		out = append(out, "Diagram: "+*m.DiagramAssetID)
	}
	if m.CoachNotesMarkdown != nil && *m.CoachNotesMarkdown != "" {
		out = append(out, "Coach Notes: "+*m.CoachNotesMarkdown)
	}
	return out
}
