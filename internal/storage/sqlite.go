package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/recon-health/recon/internal/metrics"
)

// SQLiteStore persists to a local SQLite file, for single-machine and
// offline use.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS daily_metrics (
	user_key           TEXT NOT NULL,
	date               TEXT NOT NULL,
	weight             REAL,
	body_fat           REAL,
	steps              REAL,
	active_calories    REAL,
	basal_calories     REAL,
	distance           REAL,
	flights_climbed    REAL,
	resting_heart_rate REAL,
	heart_rate_min     REAL,
	heart_rate_max     REAL,
	heart_rate_avg     REAL,
	sleep_duration     REAL,
	sleep_in_bed       REAL,
	sleep_deep         REAL,
	sleep_light        REAL,
	sleep_rem          REAL,
	sleep_awake        REAL,
	blood_oxygen       REAL,
	PRIMARY KEY (user_key, date)
);

CREATE TABLE IF NOT EXISTS goals (
	user_key       TEXT PRIMARY KEY,
	target_weight  REAL,
	daily_steps    REAL,
	daily_calories REAL,
	daily_sleep    REAL,
	target_date    TEXT
);

CREATE TABLE IF NOT EXISTS import_logs (
	id            TEXT PRIMARY KEY,
	user_key      TEXT NOT NULL,
	source        TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	days_imported INTEGER NOT NULL,
	from_date     TEXT,
	to_date       TEXT,
	error         TEXT,
	duration_ms   INTEGER NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_import_logs_user ON import_logs (user_key, created_at);
`

// OpenSQLite opens (or creates) the SQLite database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Single writer; WAL keeps readers unblocked during imports.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadSeries(ctx context.Context, userKey string) ([]metrics.DailyMetric, error) {
	query := fmt.Sprintf(
		`SELECT date, %s FROM daily_metrics WHERE user_key = ? ORDER BY date ASC`,
		metricColumnList(),
	)
	rows, err := s.db.QueryContext(ctx, query, userKey)
	if err != nil {
		return nil, fmt.Errorf("querying daily metrics: %w", err)
	}
	defer rows.Close()

	var series []metrics.DailyMetric
	for rows.Next() {
		m, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning daily metric: %w", err)
		}
		series = append(series, m)
	}
	return series, rows.Err()
}

func (s *SQLiteStore) SaveSeries(ctx context.Context, userKey string, series []metrics.DailyMetric) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_metrics WHERE user_key = ?`, userKey); err != nil {
		return fmt.Errorf("clearing daily metrics: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(metricColumns)+2), ", ")
	insert := fmt.Sprintf(
		`INSERT INTO daily_metrics (user_key, date, %s) VALUES (%s)`,
		metricColumnList(), placeholders,
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range series {
		args := append([]any{userKey, m.Date}, metricArgs(m)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting metrics for %s: %w", m.Date, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ClearSeries(ctx context.Context, userKey string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM daily_metrics WHERE user_key = ?`, userKey)
	if err != nil {
		return fmt.Errorf("clearing daily metrics: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadGoals(ctx context.Context, userKey string) (*metrics.Goals, error) {
	var g metrics.Goals
	err := s.db.QueryRowContext(ctx,
		`SELECT target_weight, daily_steps, daily_calories, daily_sleep, COALESCE(target_date, '')
		 FROM goals WHERE user_key = ?`, userKey,
	).Scan(&g.TargetWeight, &g.DailySteps, &g.DailyCalories, &g.DailySleep, &g.TargetDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	return &g, nil
}

func (s *SQLiteStore) SaveGoals(ctx context.Context, userKey string, goals metrics.Goals) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO goals (user_key, target_weight, daily_steps, daily_calories, daily_sleep, target_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userKey, goals.TargetWeight, goals.DailySteps, goals.DailyCalories, goals.DailySleep, goals.TargetDate,
	)
	if err != nil {
		return fmt.Errorf("saving goals: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertImportLog(ctx context.Context, entry ImportLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_logs (id, user_key, source, format, status, days_imported, from_date, to_date, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.UserKey, entry.Source, entry.Format, entry.Status,
		entry.DaysImported, entry.FromDate, entry.ToDate, entry.ErrorMessage,
		entry.DurationMs, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting import log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) QueryImportLogs(ctx context.Context, userKey string, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, format, status, days_imported, from_date, to_date, error, duration_ms, created_at
		 FROM import_logs WHERE user_key = ? ORDER BY created_at DESC LIMIT ?`,
		userKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var logs []ImportLog
	for rows.Next() {
		var (
			entry ImportLog
			id    string
		)
		entry.UserKey = userKey
		if err := rows.Scan(&id, &entry.Source, &entry.Format, &entry.Status,
			&entry.DaysImported, &entry.FromDate, &entry.ToDate,
			&entry.ErrorMessage, &entry.DurationMs, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		entry.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing import log id: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
