package whiteboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatSeconds renders a duration as H:MM:SS or M:SS.
func formatSeconds(total int) string {
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// formatClock renders a duration as zero-padded :MM:SS for interval cues.
func formatClock(total int) string {
	return fmt.Sprintf(":%02d:%02d", total/60, total%60)
}

// formatNumber drops a trailing ".0" and otherwise keeps one decimal.
func formatNumber(v float64) string {
	v = math.Round(v*10) / 10
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// splitNotes breaks free-text notes into clauses on commas, semicolons and
// newlines.
func splitNotes(notes string) []string {
	parts := strings.FieldsFunc(notes, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ptr(s string) *string { return &s }

func appendList(bullets []string, header string, items []string) []string {
	if len(items) == 0 {
		return bullets
	}
	bullets = append(bullets, header)
	for _, it := range items {
		bullets = append(bullets, "  - "+it)
	}
	return bullets
}
