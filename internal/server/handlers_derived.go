package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/recon-health/recon/internal/derive"
	"github.com/recon-health/recon/internal/metrics"
	"github.com/recon-health/recon/internal/storage"
)

func (s *Server) handleWeightTrend(w http.ResponseWriter, r *http.Request) {
	series, err := s.store.LoadSeries(r.Context(), defaultUserKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rng := r.URL.Query().Get("range"); rng != "" {
		series = derive.FilterByRange(series, derive.TimeRange(rng), time.Now())
	}
	trend := derive.WeightTrendSeries(series)
	if trend == nil {
		trend = []derive.WeightTrend{}
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	series, err := s.store.LoadSeries(r.Context(), defaultUserKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	records := derive.PersonalRecords(series)
	if records == nil {
		records = []derive.PersonalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// summaryResponse is the dashboard's single-call overview: latest day,
// week-over-week deltas, goal streaks, and the weight trajectory.
type summaryResponse struct {
	Today          *metrics.DailyMetric   `json:"today,omitempty"`
	WeightDelta    *derive.Delta          `json:"weight_delta_7d,omitempty"`
	StepsDelta     *derive.Delta          `json:"steps_delta_7d,omitempty"`
	StepsStreak    int                    `json:"steps_streak"`
	CaloriesStreak int                    `json:"calories_streak"`
	SleepStreak    int                    `json:"sleep_streak"`
	WeightRate     float64                `json:"weight_rate_kg_per_week"`
	GoalProjection *derive.GoalProjection `json:"goal_projection,omitempty"`
	Goals          metrics.Goals          `json:"goals"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	series, err := s.store.LoadSeries(r.Context(), defaultUserKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	stored, err := s.store.LoadGoals(r.Context(), defaultUserKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.buildSummary(series, stored, time.Now()))
}

func (s *Server) buildSummary(series []metrics.DailyMetric, stored *metrics.Goals, now time.Time) summaryResponse {
	goals := s.effectiveGoals(stored)
	trend := derive.WeightTrendSeries(series)

	resp := summaryResponse{
		Today:       derive.Today(series, now),
		WeightDelta: derive.CompareWindow(series, metrics.FieldWeight, 7),
		StepsDelta:  derive.CompareWindow(series, metrics.FieldSteps, 7),
		WeightRate:  derive.WeightRate(trend),
		Goals:       goals,
	}
	if goals.DailySteps != nil {
		resp.StepsStreak = derive.Streak(series, metrics.FieldSteps, *goals.DailySteps)
	}
	if goals.DailyCalories != nil {
		resp.CaloriesStreak = derive.Streak(series, metrics.FieldActiveCalories, *goals.DailyCalories)
	}
	if goals.DailySleep != nil {
		resp.SleepStreak = derive.Streak(series, metrics.FieldSleepDuration, *goals.DailySleep)
	}
	if goals.TargetWeight != nil {
		resp.GoalProjection = derive.ProjectGoalDate(trend, *goals.TargetWeight, now)
	}
	return resp
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	logs, err := s.store.QueryImportLogs(r.Context(), defaultUserKey, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "recon"})
}
