package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/repscore/internal/scoring"
)

// New creates an MCP server with all tools and resources registered. The
// classifier and reward calculator should carry the same settings as the
// server that stored the workouts.
func New(ds DataSource, classifier *scoring.Classifier, rewards *scoring.RewardCalculator, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepScore", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepScore workout server. Query finished workouts with their per-set scores, saved workout templates, and reward summaries. Scores are 0-100."),
	)

	h := &handlers{ds: ds, classifier: classifier, rewards: rewards, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetWorkoutSummary, Handler: h.getWorkoutSummary},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolClassifyScore, Handler: h.classifyScore},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds         DataSource
	classifier *scoring.Classifier
	rewards    *scoring.RewardCalculator
	log        *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"repscore://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"repscore://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All tracked exercises with their range-of-motion difficulty factor"),
	mcp.WithMIMEType("application/json"),
)
