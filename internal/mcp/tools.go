package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/blockboard/internal/ingest"
	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/normalize"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
	"github.com/claude/blockboard/internal/whiteboard"
)

// --- Tool definitions ---

var toolNormalizeBlock = mcp.NewTool("normalize_block",
	mcp.WithDescription("Normalize an authored training block (JSON or a chat-assistant response) into the canonical block model. Does not store anything."),
	mcp.WithString("document", mcp.Required(), mcp.Description("Block document: authoring JSON, legacy or canonical JSON, or chat text")),
)

var toolPreviewWhiteboard = mcp.NewTool("preview_whiteboard",
	mcp.WithDescription("Render the whiteboard for one week of an authored block without storing it. Returns one board per day with sections and items."),
	mcp.WithString("document", mcp.Required(), mcp.Description("Block document, as for normalize_block")),
	mcp.WithNumber("week", mcp.Description("1-based week. Defaults to 1.")),
)

var toolListBlocks = mcp.NewTool("list_blocks",
	mcp.WithDescription("List the user's stored training blocks with week and day counts and active/archived flags."),
	mcp.WithBoolean("include_archived", mcp.Description("Include archived blocks. Defaults to false.")),
)

var toolGetBlockSessions = mcp.NewTool("get_block_sessions",
	mcp.WithDescription("Retrieve the workout sessions of a stored block with expected and logged sets, plus a per-week completion summary."),
	mcp.WithString("block_id", mcp.Required(), mcp.Description("Block UUID")),
	mcp.WithNumber("week", mcp.Description("Only this 1-based week. Defaults to all weeks.")),
)

var toolGetWhiteboard = mcp.NewTool("get_whiteboard",
	mcp.WithDescription("Render the whiteboard of a stored block for a week, or for a single day of that week."),
	mcp.WithString("block_id", mcp.Description("Block UUID. Defaults to the active block.")),
	mcp.WithNumber("week", mcp.Description("1-based week. Defaults to 1.")),
	mcp.WithNumber("day", mcp.Description("0-based day index. Defaults to every day of the week.")),
)

var toolAddExercise = mcp.NewTool("add_exercise",
	mcp.WithDescription("Add an exercise to a day of a stored block. Sessions after from_week that use the day gain the exercise; earlier sessions are unchanged."),
	mcp.WithString("block_id", mcp.Required(), mcp.Description("Block UUID")),
	mcp.WithNumber("day_index", mcp.Required(), mcp.Description("0-based day index")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithString("type", mcp.Description("Exercise type. Defaults to strength."), mcp.Enum("strength", "conditioning", "other")),
	mcp.WithNumber("from_week", mcp.Description("Week after which sessions are extended. Defaults to 1.")),
)

var toolComputeProgression = mcp.NewTool("compute_progression",
	mcp.WithDescription("Compute the expected sets of each exercise of an authored block for every week, applying progression rules and deloads."),
	mcp.WithString("document", mcp.Required(), mcp.Description("Block document, as for normalize_block")),
	mcp.WithString("exercise", mcp.Description("Only exercises whose name contains this text (case-insensitive)")),
)

// --- Tool handlers ---

func (h *handlers) normalizeBlock(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError("document parameter is required"), nil
	}

	u, format, err := ingest.Decode([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(decodeMessage(err)), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"format": format, "block": u})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewWhiteboard(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError("document parameter is required"), nil
	}

	u, _, err := ingest.Decode([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(decodeMessage(err)), nil
	}
	week := req.GetInt("week", 1)
	if week < 1 || week > u.NumberOfWeeks {
		return mcp.NewToolResultError(fmt.Sprintf("week %d is outside the block's %d weeks", week, u.NumberOfWeeks)), nil
	}

	result, err := mcp.NewToolResultJSON(whiteboard.FormatWeek(u, week))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	blocks, err := h.ds.ListBlocks(ctx, uid, req.GetBool("include_archived", false))
	if err != nil {
		h.log.Error("mcp list_blocks", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(blocks)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getBlockSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, errResult := requireBlockID(req)
	if errResult != nil {
		return errResult, nil
	}
	uid := UserIDFromContext(ctx)

	ws, err := h.ds.ListSessions(ctx, uid, blockID, req.GetInt("week", 0))
	if err != nil {
		h.log.Error("mcp get_block_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"sessions": ws,
		"progress": sessions.WeekSummary(ws),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWhiteboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	var b *models.Block
	var err error
	if raw := req.GetString("block_id", ""); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			return mcp.NewToolResultError("invalid block_id: " + perr.Error()), nil
		}
		b, err = h.ds.GetBlock(ctx, uid, id)
	} else {
		b, err = h.ds.ActiveBlock(ctx, uid)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("block not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_whiteboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	week := req.GetInt("week", 1)
	if week < 1 || week > b.NumberOfWeeks {
		return mcp.NewToolResultError(fmt.Sprintf("week %d is outside the block's %d weeks", week, b.NumberOfWeeks)), nil
	}
	boards := whiteboard.FormatWeek(normalize.FromBlock(b), week)

	var out any = boards
	if day := req.GetInt("day", -1); day >= 0 {
		if day >= len(boards) {
			return mcp.NewToolResultError(fmt.Sprintf("day %d is outside the week's %d days", day, len(boards))), nil
		}
		out = boards[day]
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) addExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, errResult := requireBlockID(req)
	if errResult != nil {
		return errResult, nil
	}
	dayIndex, err := req.RequireInt("day_index")
	if err != nil {
		return mcp.NewToolResultError("day_index parameter is required"), nil
	}
	name, err := req.RequireString("name")
	if err != nil || strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	typ := models.ExerciseType(req.GetString("type", string(models.ExerciseStrength)))
	fromWeek := req.GetInt("from_week", 1)

	uid := UserIDFromContext(ctx)
	res, err := h.ds.AddExercise(ctx, uid, blockID, h.mat, dayIndex, name, typ, fromWeek)
	switch {
	case errors.Is(err, sessions.ErrDayIndexOutOfRange), errors.Is(err, sessions.ErrWeekOutOfRange):
		return mcp.NewToolResultError(err.Error()), nil
	case errors.Is(err, storage.ErrNotFound):
		return mcp.NewToolResultError("block not found"), nil
	case err != nil:
		h.log.Error("mcp add_exercise", "error", err)
		return mcp.NewToolResultError("update failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"block_id":          blockID,
		"day":               res.Block.Days[dayIndex].Name,
		"exercise":          name,
		"sessions_extended": res.SessionsExtended,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// exerciseWeek is the expected prescription of one exercise in one week.
type exerciseWeek struct {
	Day          string              `json:"day"`
	Exercise     string              `json:"exercise"`
	Rule         string              `json:"rule"`
	Deload       bool                `json:"deload"`
	ExpectedSets []models.SessionSet `json:"expected_sets"`
}

type weekProgression struct {
	Week      int            `json:"week"`
	Exercises []exerciseWeek `json:"exercises"`
}

func (h *handlers) computeProgression(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError("document parameter is required"), nil
	}
	filter := strings.ToLower(req.GetString("exercise", ""))

	u, _, err := ingest.Decode([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(decodeMessage(err)), nil
	}
	b := normalize.ToBlock(u)

	out := make([]weekProgression, 0, b.NumberOfWeeks)
	for week := 1; week <= b.NumberOfWeeks; week++ {
		wp := weekProgression{Week: week, Exercises: []exerciseWeek{}}
		for _, day := range b.DaysForWeek(week) {
			for _, ex := range day.Exercises {
				if filter != "" && !strings.Contains(strings.ToLower(ex.CustomName), filter) {
					continue
				}
				wp.Exercises = append(wp.Exercises, exerciseWeek{
					Day:          day.Name,
					Exercise:     ex.CustomName,
					Rule:         string(ex.ProgressionRule.Type),
					Deload:       ex.ProgressionRule.IsDeload(week),
					ExpectedSets: h.mat.Engine.ComputeExpectedSets(ex, week),
				})
			}
		}
		out = append(out, wp)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func requireBlockID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("block_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("block_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid block_id: " + err.Error())
	}
	return id, nil
}

// decodeMessage renders a decode failure for the caller. Parse errors
// already name the offending field.
func decodeMessage(err error) string {
	return "invalid block: " + err.Error()
}
