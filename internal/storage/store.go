// Package storage defines the persistence port for canonical daily series,
// goals, and import logs, with sqlite (local), postgres (remote), and
// in-memory adapters. The surrounding application picks the adapter; the
// core never touches storage directly.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recon-health/recon/internal/metrics"
)

// Store is the persistence contract. Series are keyed by an opaque user key
// and hold one row per date; SaveSeries replaces the stored series wholesale
// (callers merge first).
type Store interface {
	LoadSeries(ctx context.Context, userKey string) ([]metrics.DailyMetric, error)
	SaveSeries(ctx context.Context, userKey string, series []metrics.DailyMetric) error
	ClearSeries(ctx context.Context, userKey string) error

	// LoadGoals returns nil when the user has never saved goals.
	LoadGoals(ctx context.Context, userKey string) (*metrics.Goals, error)
	SaveGoals(ctx context.Context, userKey string, goals metrics.Goals) error

	InsertImportLog(ctx context.Context, entry ImportLog) error
	QueryImportLogs(ctx context.Context, userKey string, limit int) ([]ImportLog, error)

	Close() error
}

// ImportLog records one import operation's outcome.
type ImportLog struct {
	ID           uuid.UUID `json:"id"`
	UserKey      string    `json:"-"`
	Source       string    `json:"source"` // "http" or "cli"
	Format       string    `json:"format"` // "csv", "json", or "" when ambiguous
	Status       string    `json:"status"` // "success", "empty", "error"
	DaysImported int       `json:"days_imported"`
	FromDate     string    `json:"from_date,omitempty"`
	ToDate       string    `json:"to_date,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
	DurationMs   int       `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open returns the store for the configured driver. The postgres driver
// expects migrations to have been applied via RunMigrations.
func Open(ctx context.Context, driver, sqlitePath, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(sqlitePath)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// metricColumns are the numeric columns of the daily_metrics table, aligned
// with metrics.NumericFields.
var metricColumns = []string{
	"weight", "body_fat", "steps", "active_calories", "basal_calories",
	"distance", "flights_climbed", "resting_heart_rate", "heart_rate_min",
	"heart_rate_max", "heart_rate_avg", "sleep_duration", "sleep_in_bed",
	"sleep_deep", "sleep_light", "sleep_rem", "sleep_awake", "blood_oxygen",
}

func metricColumnList() string {
	return strings.Join(metricColumns, ", ")
}

// metricArgs returns insert arguments in column order; nil pointers map to
// SQL NULL.
func metricArgs(m metrics.DailyMetric) []any {
	args := make([]any, 0, len(metrics.NumericFields))
	for _, f := range metrics.NumericFields {
		args = append(args, m.Get(f))
	}
	return args
}

// scanRecord reads one date plus the numeric columns via the given scan
// function, which both database/sql and pgx rows satisfy.
func scanRecord(scan func(dest ...any) error) (metrics.DailyMetric, error) {
	var m metrics.DailyMetric
	vals := make([]sql.NullFloat64, len(metrics.NumericFields))

	dest := make([]any, 0, len(vals)+1)
	dest = append(dest, &m.Date)
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	if err := scan(dest...); err != nil {
		return metrics.DailyMetric{}, err
	}

	for i, f := range metrics.NumericFields {
		if vals[i].Valid {
			m.Set(f, vals[i].Float64)
		}
	}
	return m, nil
}
