package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recon-health/recon/internal/derive"
	"github.com/recon-health/recon/internal/metrics"
	"github.com/recon-health/recon/internal/storage"
)

// handleImport ingests a CSV or JSON export, merges it into the stored
// series, and records an import log entry.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	contentType := r.Header.Get("Content-Type")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read file"})
		return
	}

	series, err := metrics.Parse(string(body), contentType)
	if err != nil {
		s.logImport(r, storage.ImportLog{
			Source: "http", Format: formatLabel(contentType), Status: "error",
			ErrorMessage: err.Error(), DurationMs: msSince(start),
		})
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read file"})
		return
	}
	if len(series) == 0 {
		s.logImport(r, storage.ImportLog{
			Source: "http", Format: formatLabel(contentType), Status: "empty",
			ErrorMessage: "no valid data found", DurationMs: msSince(start),
		})
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no valid data found"})
		return
	}

	existing, err := s.store.LoadSeries(r.Context(), defaultUserKey)
	if err != nil {
		s.log.Error("loading series", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	merged := metrics.Merge(existing, series)
	if err := s.store.SaveSeries(r.Context(), defaultUserKey, merged); err != nil {
		s.log.Error("saving series", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	from, to := series[0].Date, series[len(series)-1].Date
	s.logImport(r, storage.ImportLog{
		Source: "http", Format: formatLabel(contentType), Status: "success",
		DaysImported: len(series), FromDate: from, ToDate: to,
		DurationMs: msSince(start),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(series),
		"from":     from,
		"to":       to,
	})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	series, err := s.store.LoadSeries(r.Context(), defaultUserKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rng := r.URL.Query().Get("range"); rng != "" {
		series = derive.FilterByRange(series, derive.TimeRange(rng), time.Now())
	}
	if series == nil {
		series = []metrics.DailyMetric{}
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleDeleteMetrics(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearSeries(r.Context(), defaultUserKey); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.LoadGoals(r.Context(), defaultUserKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.effectiveGoals(stored))
}

func (s *Server) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	var goals metrics.Goals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.store.SaveGoals(r.Context(), defaultUserKey, goals); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.effectiveGoals(&goals))
}

// effectiveGoals fills unset goal fields from the configured defaults.
func (s *Server) effectiveGoals(stored *metrics.Goals) metrics.Goals {
	out := metrics.Goals{}
	if stored != nil {
		out = *stored
	}
	if out.TargetWeight == nil {
		v := s.goals.TargetWeight
		out.TargetWeight = &v
	}
	if out.DailySteps == nil {
		v := s.goals.DailySteps
		out.DailySteps = &v
	}
	if out.DailyCalories == nil {
		v := s.goals.DailyCalories
		out.DailyCalories = &v
	}
	if out.DailySleep == nil {
		v := s.goals.DailySleepMin
		out.DailySleep = &v
	}
	return out
}

func (s *Server) logImport(r *http.Request, entry storage.ImportLog) {
	entry.ID = uuid.New()
	entry.UserKey = defaultUserKey
	entry.CreatedAt = time.Now().UTC()
	if err := s.store.InsertImportLog(r.Context(), entry); err != nil {
		s.log.Warn("recording import log", "error", err)
	}
}

// formatLabel reduces a Content-Type header to the short format name stored
// with import logs.
func formatLabel(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "csv"):
		return "csv"
	case strings.Contains(ct, "json"):
		return "json"
	default:
		return ""
	}
}

func msSince(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
