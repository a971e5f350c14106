package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recon-health/recon/internal/config"
	"github.com/recon-health/recon/internal/metrics"
	"github.com/recon-health/recon/internal/storage"
)

func testGoals() config.GoalsConfig {
	return config.GoalsConfig{TargetWeight: 85, DailySteps: 10000, DailyCalories: 500, DailySleepMin: 420}
}

func newTestServer(t *testing.T, apiKey string) (*Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, apiKey, testGoals(), log), store
}

func doRequest(s *Server, method, path, contentType, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

const weightCSV = "Date,Weight (kg),Step Count (steps)\n2024-03-01,85.0,9000\n2024-03-02,84.5,11000\n"

// TestImportCSV posts a CSV export and checks the stored series and the
// {imported, from, to} response.
func TestImportCSV(t *testing.T) {
	s, store := newTestServer(t, "")

	rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Imported int    `json:"imported"`
		From     string `json:"from"`
		To       string `json:"to"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Imported != 2 || resp.From != "2024-03-01" || resp.To != "2024-03-02" {
		t.Errorf("response = %+v, want 2 days 2024-03-01..2024-03-02", resp)
	}

	series, err := store.LoadSeries(context.Background(), "default")
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("stored series len = %d, want 2", len(series))
	}
	if series[1].Weight == nil || *series[1].Weight != 84.5 {
		t.Errorf("Weight = %v, want 84.5", series[1].Weight)
	}
}

// TestImportMergesWithStored verifies a second import merges field-wise
// instead of replacing whole days.
func TestImportMergesWithStored(t *testing.T) {
	s, store := newTestServer(t, "")

	if rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV, nil); rec.Code != http.StatusOK {
		t.Fatalf("first import status = %d", rec.Code)
	}
	sleepCSV := "Date,Sleep Analysis [Asleep] (hr)\n2024-03-01,7.5\n"
	if rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", sleepCSV, nil); rec.Code != http.StatusOK {
		t.Fatalf("second import status = %d", rec.Code)
	}

	series, _ := store.LoadSeries(context.Background(), "default")
	if len(series) != 2 {
		t.Fatalf("series len = %d, want 2", len(series))
	}
	day := series[0]
	if day.Weight == nil || *day.Weight != 85.0 {
		t.Errorf("Weight = %v, want 85.0 preserved across imports", day.Weight)
	}
	if day.SleepDuration == nil || *day.SleepDuration != 450 {
		t.Errorf("SleepDuration = %v, want 450", day.SleepDuration)
	}
}

// TestImportUnauthorized verifies a wrong API key is rejected with 401
// before the body is parsed.
func TestImportUnauthorized(t *testing.T) {
	s, store := newTestServer(t, "secret")

	rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV,
		map[string]string{"X-API-Key": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	series, _ := store.LoadSeries(context.Background(), "default")
	if len(series) != 0 {
		t.Errorf("series len = %d, want 0 after rejected import", len(series))
	}
	logs, _ := store.QueryImportLogs(context.Background(), "default", 0)
	if len(logs) != 0 {
		t.Errorf("import logs = %d, want 0: auth must run before the importer", len(logs))
	}
}

// TestImportAuthorized verifies the configured key is accepted.
func TestImportAuthorized(t *testing.T) {
	s, _ := newTestServer(t, "secret")

	rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV,
		map[string]string{"X-API-Key": "secret"})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestImportEmpty verifies a well-formed document with no usable rows
// yields 422.
func TestImportEmpty(t *testing.T) {
	s, store := newTestServer(t, "")

	rec := doRequest(s, http.MethodPost, "/api/v1/import", "application/json", `{"metrics": []}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no valid data found") {
		t.Errorf("body = %s, want no-valid-data message", rec.Body.String())
	}

	logs, _ := store.QueryImportLogs(context.Background(), "default", 0)
	if len(logs) != 1 || logs[0].Status != "empty" {
		t.Errorf("import logs = %+v, want one empty entry", logs)
	}
}

// TestImportMalformed verifies broken JSON yields 400 with the generic
// read-failure message.
func TestImportMalformed(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := doRequest(s, http.MethodPost, "/api/v1/import", "application/json", `{"metrics": [`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "could not read file") {
		t.Errorf("body = %s, want could-not-read message", rec.Body.String())
	}
}

// TestGetMetricsRange verifies the range filter is applied to the stored
// series.
func TestGetMetricsRange(t *testing.T) {
	s, _ := newTestServer(t, "")
	if rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV, nil); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/api/v1/metrics?range=7D", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var series []metrics.DailyMetric
	if err := json.Unmarshal(rec.Body.Bytes(), &series); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	// Test data is from 2024; a trailing 7-day window must exclude it.
	if len(series) != 0 {
		t.Errorf("series len = %d, want 0 inside 7D window", len(series))
	}
}

// TestDeleteMetrics clears the stored series.
func TestDeleteMetrics(t *testing.T) {
	s, store := newTestServer(t, "")
	if rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV, nil); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodDelete, "/api/v1/metrics", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	series, _ := store.LoadSeries(context.Background(), "default")
	if len(series) != 0 {
		t.Errorf("series len = %d, want 0 after delete", len(series))
	}
}

// TestGoalsDefaults verifies GET /goals falls back to configured defaults
// before any goals are saved.
func TestGoalsDefaults(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := doRequest(s, http.MethodGet, "/api/v1/goals", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var goals metrics.Goals
	if err := json.Unmarshal(rec.Body.Bytes(), &goals); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if goals.TargetWeight == nil || *goals.TargetWeight != 85 {
		t.Errorf("TargetWeight = %v, want default 85", goals.TargetWeight)
	}
	if goals.DailySleep == nil || *goals.DailySleep != 420 {
		t.Errorf("DailySleep = %v, want default 420", goals.DailySleep)
	}
}

// TestGoalsPut saves goals and verifies the stored values win over
// defaults while unset fields keep them.
func TestGoalsPut(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := doRequest(s, http.MethodPut, "/api/v1/goals", "application/json",
		`{"targetWeight": 80}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/v1/goals", "", "", nil)
	var goals metrics.Goals
	if err := json.Unmarshal(rec.Body.Bytes(), &goals); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if goals.TargetWeight == nil || *goals.TargetWeight != 80 {
		t.Errorf("TargetWeight = %v, want 80", goals.TargetWeight)
	}
	if goals.DailySteps == nil || *goals.DailySteps != 10000 {
		t.Errorf("DailySteps = %v, want default 10000", goals.DailySteps)
	}
}

// TestWeightTrendEndpoint returns the smoothed series for stored weights.
func TestWeightTrendEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "")
	if rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV, nil); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/api/v1/trend/weight", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var trend []struct {
		Date        string  `json:"date"`
		MovingAvg7d float64 `json:"movingAvg7d"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trend); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("trend len = %d, want 2", len(trend))
	}
	if trend[1].MovingAvg7d != 84.8 {
		t.Errorf("MovingAvg7d = %v, want 84.8", trend[1].MovingAvg7d)
	}
}

// TestSummaryEndpoint exercises the aggregate view over imported data.
func TestSummaryEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "")
	if rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV, nil); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/api/v1/summary", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	// Today falls back to the most recent record when nothing matches the
	// current date.
	if resp.Today == nil || resp.Today.Date != "2024-03-02" {
		t.Errorf("Today = %+v, want last record 2024-03-02", resp.Today)
	}
	if resp.Goals.TargetWeight == nil {
		t.Errorf("Goals missing from summary: %+v", resp.Goals)
	}
}

// TestImportLogsEndpoint lists logged imports newest first.
func TestImportLogsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "")
	if rec := doRequest(s, http.MethodPost, "/api/v1/import", "text/csv", weightCSV, nil); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/api/v1/imports", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var logs []storage.ImportLog
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs len = %d, want 1", len(logs))
	}
	if logs[0].Status != "success" || logs[0].DaysImported != 2 || logs[0].Format != "csv" {
		t.Errorf("log = %+v, want success/2 days/csv", logs[0])
	}
}

// TestHealthEndpoint answers without auth or data.
func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "secret")

	rec := doRequest(s, http.MethodGet, "/api/v1/health", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "recon") {
		t.Errorf("body = %s, want service name", rec.Body.String())
	}
}
