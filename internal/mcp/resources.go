package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recon-health/recon/internal/derive"
	"github.com/recon-health/recon/internal/metrics"
)

func (h *handlers) dailySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload, err := h.buildSummary(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
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

// buildSummary assembles the overview shared by the get_summary tool and the
// daily_summary resource.
func (h *handlers) buildSummary(ctx context.Context, now time.Time) (map[string]any, error) {
	series, err := h.store.LoadSeries(ctx, userKey)
	if err != nil {
		return nil, err
	}
	goals, err := h.loadGoals(ctx)
	if err != nil {
		return nil, err
	}

	trend := derive.WeightTrendSeries(series)
	payload := map[string]any{
		"today":           derive.Today(series, now),
		"weight_delta_7d": derive.CompareWindow(series, metrics.FieldWeight, 7),
		"steps_delta_7d":  derive.CompareWindow(series, metrics.FieldSteps, 7),
		"weight_rate":     derive.WeightRate(trend),
		"goals":           goals,
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
	payload["streaks"] = streaks
	if goals.TargetWeight != nil {
		payload["goal_projection"] = derive.ProjectGoalDate(trend, *goals.TargetWeight, now)
	}
	return payload, nil
}

// loadGoals returns the stored goals with unset fields filled from the
// configured defaults.
func (h *handlers) loadGoals(ctx context.Context) (metrics.Goals, error) {
	stored, err := h.store.LoadGoals(ctx, userKey)
	if err != nil {
		return metrics.Goals{}, err
	}
	out := metrics.Goals{}
	if stored != nil {
		out = *stored
	}
	if out.TargetWeight == nil {
		v := h.goals.TargetWeight
		out.TargetWeight = &v
	}
	if out.DailySteps == nil {
		v := h.goals.DailySteps
		out.DailySteps = &v
	}
	if out.DailyCalories == nil {
		v := h.goals.DailyCalories
		out.DailyCalories = &v
	}
	if out.DailySleep == nil {
		v := h.goals.DailySleepMin
		out.DailySleep = &v
	}
	return out, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive, got %d", n)
	}
	return n, nil
}
