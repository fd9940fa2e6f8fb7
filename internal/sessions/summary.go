package sessions

import (
	"slices"

	"github.com/claude/blockboard/internal/models"
)

// WeekProgress summarizes completion for one week of a block.
type WeekProgress struct {
	WeekIndex         int  `json:"week_index"`
	Sessions          int  `json:"sessions"`
	CompletedSessions int  `json:"completed_sessions"`
	TotalSets         int  `json:"total_sets"`
	CompletedSets     int  `json:"completed_sets"`
	Complete          bool `json:"complete"`
}

// WeekSummary groups sessions by week and counts expected and completed
// sets, ordered by week.
func WeekSummary(sessions []models.WorkoutSession) []WeekProgress {
	byWeek := make(map[int]*WeekProgress)
	for _, ws := range sessions {
		wp, ok := byWeek[ws.WeekIndex]
		if !ok {
			wp = &WeekProgress{WeekIndex: ws.WeekIndex}
			byWeek[ws.WeekIndex] = wp
		}
		total, done := ws.SetCounts()
		wp.Sessions++
		wp.TotalSets += total
		wp.CompletedSets += done
		if total > 0 && done >= total {
			wp.CompletedSessions++
		}
	}

	out := make([]WeekProgress, 0, len(byWeek))
	for _, wp := range byWeek {
		wp.Complete = wp.TotalSets > 0 && wp.CompletedSets >= wp.TotalSets
		out = append(out, *wp)
	}
	slices.SortFunc(out, func(a, b WeekProgress) int { return a.WeekIndex - b.WeekIndex })
	return out
}
