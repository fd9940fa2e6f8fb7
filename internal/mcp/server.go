package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/blockboard/internal/sessions"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, mat sessions.Materializer, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("BlockBoard", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions("BlockBoard training block server. Normalize authored training blocks, "+
			"preview whiteboards, inspect stored blocks and sessions, and add exercises to a running block. "+
			"All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, mat: mat, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolNormalizeBlock, Handler: h.normalizeBlock},
		server.ServerTool{Tool: toolPreviewWhiteboard, Handler: h.previewWhiteboard},
		server.ServerTool{Tool: toolListBlocks, Handler: h.listBlocks},
		server.ServerTool{Tool: toolGetBlockSessions, Handler: h.getBlockSessions},
		server.ServerTool{Tool: toolGetWhiteboard, Handler: h.getWhiteboard},
		server.ServerTool{Tool: toolAddExercise, Handler: h.addExercise},
		server.ServerTool{Tool: toolComputeProgression, Handler: h.computeProgression},
	)

	s.AddResources(
		server.ServerResource{Resource: resActiveBlock, Handler: h.activeBlock},
		server.ServerResource{Resource: resAuthoringGuide, Handler: h.authoringGuide},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	mat sessions.Materializer
	log *slog.Logger
}

// --- Resource definitions ---

var resActiveBlock = mcp.NewResource(
	"blockboard://active_block",
	"Active Block",
	mcp.WithResourceDescription("The user's active training block with its week 1 whiteboard"),
	mcp.WithMIMEType("application/json"),
)

var resAuthoringGuide = mcp.NewResource(
	"blockboard://authoring_guide",
	"Authoring Guide",
	mcp.WithResourceDescription("How to write a training block document that normalize_block accepts"),
	mcp.WithMIMEType("text/markdown"),
)
