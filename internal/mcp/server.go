// Package mcp exposes the stored series and the derived-metrics engine to
// LLM clients over the Model Context Protocol. All tools are read-only.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/recon-health/recon/internal/config"
	"github.com/recon-health/recon/internal/storage"
)

// userKey scopes MCP access to the same local user the HTTP API serves.
const userKey = "default"

// New creates an MCP server with all tools and resources registered. The
// goals config supplies fallback targets when the user has never saved any.
func New(store storage.Store, goals config.GoalsConfig, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Recon", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Recon personal health data server. Query daily metrics, weight trend, personal records, goal streaks, and window comparisons. All tools are read-only."),
	)

	h := &handlers{store: store, goals: goals, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetDailyMetrics, Handler: h.getDailyMetrics},
		server.ServerTool{Tool: toolGetWeightTrend, Handler: h.getWeightTrend},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetStreaks, Handler: h.getStreaks},
		server.ServerTool{Tool: toolCompareWindow, Handler: h.compareWindow},
		server.ServerTool{Tool: toolGetSummary, Handler: h.getSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDailySummary, Handler: h.dailySummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	store storage.Store
	goals config.GoalsConfig
	log   *slog.Logger
}

// --- Resource definitions ---

var resDailySummary = mcp.NewResource(
	"recon://daily_summary",
	"Daily Summary",
	mcp.WithResourceDescription("Latest day's metrics with week-over-week deltas, goal streaks, and weight trajectory"),
	mcp.WithMIMEType("application/json"),
)
