package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recon-health/recon/internal/metrics"
)

// PostgresStore persists to PostgreSQL through a pgx connection pool, for
// shared or hosted deployments.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadSeries(ctx context.Context, userKey string) ([]metrics.DailyMetric, error) {
	query := fmt.Sprintf(
		`SELECT date, %s FROM daily_metrics WHERE user_key = $1 ORDER BY date ASC`,
		metricColumnList(),
	)
	rows, err := s.pool.Query(ctx, query, userKey)
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

func (s *PostgresStore) SaveSeries(ctx context.Context, userKey string, series []metrics.DailyMetric) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM daily_metrics WHERE user_key = $1`, userKey); err != nil {
		return fmt.Errorf("clearing daily metrics: %w", err)
	}

	placeholders := make([]string, 0, len(metricColumns)+2)
	for i := 1; i <= len(metricColumns)+2; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
	}
	insert := fmt.Sprintf(
		`INSERT INTO daily_metrics (user_key, date, %s) VALUES (%s)`,
		metricColumnList(), strings.Join(placeholders, ", "),
	)
	for _, m := range series {
		args := append([]any{userKey, m.Date}, metricArgs(m)...)
		if _, err := tx.Exec(ctx, insert, args...); err != nil {
			return fmt.Errorf("inserting metrics for %s: %w", m.Date, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ClearSeries(ctx context.Context, userKey string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM daily_metrics WHERE user_key = $1`, userKey); err != nil {
		return fmt.Errorf("clearing daily metrics: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadGoals(ctx context.Context, userKey string) (*metrics.Goals, error) {
	var g metrics.Goals
	err := s.pool.QueryRow(ctx,
		`SELECT target_weight, daily_steps, daily_calories, daily_sleep, COALESCE(target_date, '')
		 FROM goals WHERE user_key = $1`, userKey,
	).Scan(&g.TargetWeight, &g.DailySteps, &g.DailyCalories, &g.DailySleep, &g.TargetDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	return &g, nil
}

func (s *PostgresStore) SaveGoals(ctx context.Context, userKey string, goals metrics.Goals) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO goals (user_key, target_weight, daily_steps, daily_calories, daily_sleep, target_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_key) DO UPDATE SET
		   target_weight = EXCLUDED.target_weight,
		   daily_steps = EXCLUDED.daily_steps,
		   daily_calories = EXCLUDED.daily_calories,
		   daily_sleep = EXCLUDED.daily_sleep,
		   target_date = EXCLUDED.target_date`,
		userKey, goals.TargetWeight, goals.DailySteps, goals.DailyCalories, goals.DailySleep, goals.TargetDate,
	)
	if err != nil {
		return fmt.Errorf("saving goals: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertImportLog(ctx context.Context, entry ImportLog) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO import_logs (id, user_key, source, format, status, days_imported, from_date, to_date, error, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.UserKey, entry.Source, entry.Format, entry.Status,
		entry.DaysImported, entry.FromDate, entry.ToDate, entry.ErrorMessage,
		entry.DurationMs, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting import log: %w", err)
	}
	return nil
}

func (s *PostgresStore) QueryImportLogs(ctx context.Context, userKey string, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, format, status, days_imported, from_date, to_date, error, duration_ms, created_at
		 FROM import_logs WHERE user_key = $1 ORDER BY created_at DESC LIMIT $2`,
		userKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var logs []ImportLog
	for rows.Next() {
		entry := ImportLog{UserKey: userKey}
		if err := rows.Scan(&entry.ID, &entry.Source, &entry.Format, &entry.Status,
			&entry.DaysImported, &entry.FromDate, &entry.ToDate,
			&entry.ErrorMessage, &entry.DurationMs, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
