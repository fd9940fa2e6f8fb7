package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/blockboard/internal/normalize"
	"github.com/claude/blockboard/internal/whiteboard"
)

func (h *handlers) activeBlock(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	b, err := h.ds.ActiveBlock(ctx, uid)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"block":      b,
		"whiteboard": whiteboard.FormatWeek(normalize.FromBlock(b), 1),
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) authoringGuide(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     authoringGuide,
		},
	}, nil
}

const authoringGuide = `# Authoring a training block

A block is a JSON object. Keys are matched without regard to case.

## Block
- Title (required): block name.
- NumberOfWeeks: defaults to the number of authored weeks, or 1.
- Goal: strength, hypertrophy, power, conditioning, peaking, deload, rehab
  or mixed.
- Description, Notes, Tags, Disciplines.
- Progression: "weight", "volume" or free text, applied to every exercise
  without its own rule.

## Days
Use one of:
- Days: a list of days repeated every week.
- Weeks: a list of weeks, each a list of days. Missing weeks repeat the
  authored ones in order.
- Exercises: a single implicit "Day 1".

Each day has name, shortCode, goal, notes, exercises and segments.

## Exercises
- name, type (strength, conditioning or other),
  category (squat, hinge, pressHorizontal, ...).
- setsReps: "3x5" or "4x8-10".
- sets: an explicit list of {reps, weight, percentageOfMax, rpe, rir, tempo,
  restSeconds, durationSeconds, distanceMeters, calories, rounds}.
- conditioningType: amrap, emom, intervals, roundsForTime, forTime,
  forDistance, forCalories.
- progression: {type: weight|volume|skill|custom, deltaWeight, deltaSets,
  deltaResistance, deltaRounds, deltaConstraints, deloadWeekIndexes}.
- setGroupId groups supersets and circuits.

## Segments
Class-style days use segments instead of exercises: name, segmentType
(warmup, technique, drill, positionalSpar, rolling, cooldown, breathwork,
...), durationMinutes, objective, techniques, drillPlan, partnerPlan,
roundPlan, scoring, breathwork, flowSequence, media and safety.

## Chat responses
A response with a "JSON:" line is read from the first "{" after it. A
response starting with "BLOCK:" uses the line-oriented block layout. Any
other text is read as a single-session workout with Title, Goal and
Exercises ("Name | 3x8 | 90 | cue") sections.
`
