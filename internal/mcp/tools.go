package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recon-health/recon/internal/derive"
	"github.com/recon-health/recon/internal/metrics"
)

// fieldFromName resolves a canonical field name ("weight", "steps", ...)
// against the known numeric fields.
func fieldFromName(name string) (metrics.Field, bool) {
	for _, f := range metrics.NumericFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// --- Tool definitions ---

var toolGetDailyMetrics = mcp.NewTool("get_daily_metrics",
	mcp.WithDescription("Retrieve the stored daily health series. Each record holds one calendar day; absent fields were not observed that day."),
	mcp.WithString("range", mcp.Description("Trailing window to return. Defaults to 30D."), mcp.Enum("7D", "30D", "90D", "6M", "1Y", "ALL")),
)

var toolGetWeightTrend = mcp.NewTool("get_weight_trend",
	mcp.WithDescription("Weight series with 7-point and 30-point trailing averages, plus the current rate of change (kg/week) and goal-date projection."),
	mcp.WithString("range", mcp.Description("Trailing window. Defaults to ALL."), mcp.Enum("7D", "30D", "90D", "6M", "1Y", "ALL")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("All-time bests: lowest weight, most steps, lowest resting heart rate, longest sleep, most active calories, most flights climbed."),
)

var toolGetStreaks = mcp.NewTool("get_streaks",
	mcp.WithDescription("Consecutive days (ending at the latest record) meeting the step, active-calorie, and sleep goals."),
)

var toolCompareWindow = mcp.NewTool("compare_window",
	mcp.WithDescription("Compare a metric's average over the most recent N days against the N days before that. Missing days count as zero."),
	mcp.WithString("metric", mcp.Required(), mcp.Description("Canonical field name (e.g. weight, steps, activeCalories, sleepDuration, restingHeartRate)")),
	mcp.WithString("days", mcp.Description("Window size in days. Defaults to 7.")),
)

var toolGetSummary = mcp.NewTool("get_summary",
	mcp.WithDescription("One-call overview: latest day's metrics, week-over-week weight and step deltas, goal streaks, weight rate, and goal projection."),
)

// --- Tool handlers ---

func (h *handlers) getDailyMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series, err := h.store.LoadSeries(ctx, userKey)
	if err != nil {
		h.log.Error("mcp get_daily_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	rng := derive.TimeRange(req.GetString("range", "30D"))
	series = derive.FilterByRange(series, rng, time.Now())

	result, err := mcp.NewToolResultJSON(series)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeightTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series, err := h.store.LoadSeries(ctx, userKey)
	if err != nil {
		h.log.Error("mcp get_weight_trend", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if rng := req.GetString("range", ""); rng != "" {
		series = derive.FilterByRange(series, derive.TimeRange(rng), time.Now())
	}

	trend := derive.WeightTrendSeries(series)
	payload := map[string]any{
		"trend":            trend,
		"rate_kg_per_week": derive.WeightRate(trend),
	}
	if goals, err := h.loadGoals(ctx); err == nil && goals.TargetWeight != nil {
		payload["goal_projection"] = derive.ProjectGoalDate(trend, *goals.TargetWeight, time.Now())
	}

	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series, err := h.store.LoadSeries(ctx, userKey)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(derive.PersonalRecords(series))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStreaks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series, err := h.store.LoadSeries(ctx, userKey)
	if err != nil {
		h.log.Error("mcp get_streaks", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	goals, err := h.loadGoals(ctx)
	if err != nil {
		h.log.Error("mcp get_streaks: goals", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	streaks := map[string]int{}
	if goals.DailySteps != nil {
		streaks["steps"] = derive.Streak(series, metrics.FieldSteps, *goals.DailySteps)
	}
	if goals.DailyCalories != nil {
		streaks["activeCalories"] = derive.Streak(series, metrics.FieldActiveCalories, *goals.DailyCalories)
	}
	if goals.DailySleep != nil {
		streaks["sleepDuration"] = derive.Streak(series, metrics.FieldSleepDuration, *goals.DailySleep)
	}

	result, err := mcp.NewToolResultJSON(streaks)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) compareWindow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError("metric parameter is required"), nil
	}
	field, ok := fieldFromName(name)
	if !ok {
		return mcp.NewToolResultError("unknown metric: " + name), nil
	}
	days := 7
	if v := req.GetString("days", ""); v != "" {
		if n, convErr := parsePositiveInt(v); convErr == nil {
			days = n
		} else {
			return mcp.NewToolResultError("days must be a positive integer"), nil
		}
	}

	series, err := h.store.LoadSeries(ctx, userKey)
	if err != nil {
		h.log.Error("mcp compare_window", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	delta := derive.CompareWindow(series, field, days)
	payload := map[string]any{"metric": name, "days": days, "delta": delta}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := h.buildSummary(ctx, time.Now())
	if err != nil {
		h.log.Error("mcp get_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
