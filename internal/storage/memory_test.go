package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/recon-health/recon/internal/metrics"
)

func fp(v float64) *float64 { return &v }

// TestMemorySeriesRoundTrip saves a series and reads it back sorted.
func TestMemorySeriesRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	series := []metrics.DailyMetric{
		{Date: "2024-03-02", Weight: fp(84.5)},
		{Date: "2024-03-01", Weight: fp(85.0), Steps: fp(9000)},
	}
	if err := s.SaveSeries(ctx, "alice", series); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}

	got, err := s.LoadSeries(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2024-03-01" || got[1].Date != "2024-03-02" {
		t.Errorf("dates = %s, %s, want sorted ascending", got[0].Date, got[1].Date)
	}
	if got[0].Steps == nil || *got[0].Steps != 9000 {
		t.Errorf("Steps = %v, want 9000", got[0].Steps)
	}
}

// TestMemorySeriesIsolated verifies user keys do not leak into each other.
func TestMemorySeriesIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.SaveSeries(ctx, "alice", []metrics.DailyMetric{{Date: "2024-03-01"}}); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}
	got, err := s.LoadSeries(ctx, "bob")
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 for other user", len(got))
	}
}

// TestMemoryClearSeries removes all rows for the user.
func TestMemoryClearSeries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.SaveSeries(ctx, "alice", []metrics.DailyMetric{{Date: "2024-03-01"}}); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}
	if err := s.ClearSeries(ctx, "alice"); err != nil {
		t.Fatalf("ClearSeries: %v", err)
	}
	got, err := s.LoadSeries(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 after clear", len(got))
	}
}

// TestMemoryGoals returns nil before any save and the stored value after.
func TestMemoryGoals(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	g, err := s.LoadGoals(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if g != nil {
		t.Fatalf("LoadGoals before save = %+v, want nil", g)
	}

	want := metrics.Goals{TargetWeight: fp(80), DailySteps: fp(10000)}
	if err := s.SaveGoals(ctx, "alice", want); err != nil {
		t.Fatalf("SaveGoals: %v", err)
	}
	g, err = s.LoadGoals(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if g == nil || g.TargetWeight == nil || *g.TargetWeight != 80 {
		t.Errorf("TargetWeight = %v, want 80", g)
	}
}

// TestMemoryImportLogs returns entries newest first, honoring the limit.
func TestMemoryImportLogs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		entry := ImportLog{
			ID:        uuid.New(),
			UserKey:   "alice",
			Source:    "http",
			Format:    "csv",
			Status:    "success",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.InsertImportLog(ctx, entry); err != nil {
			t.Fatalf("InsertImportLog: %v", err)
		}
	}

	logs, err := s.QueryImportLogs(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("QueryImportLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len = %d, want 2", len(logs))
	}
	if !logs[0].CreatedAt.After(logs[1].CreatedAt) {
		t.Errorf("logs not in newest-first order: %v, %v", logs[0].CreatedAt, logs[1].CreatedAt)
	}
}
