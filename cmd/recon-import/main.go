package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/recon-health/recon/internal/config"
	"github.com/recon-health/recon/internal/metrics"
	"github.com/recon-health/recon/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to a CSV or JSON export file (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to storage")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: recon-import -config config.yaml -file export.csv [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Error("failed to read export file", "path", *filePath, "error", err)
		os.Exit(1)
	}

	start := time.Now()
	series, err := metrics.Parse(string(data), *filePath)
	if err != nil {
		log.Error("could not read file", "path", *filePath, "error", err)
		os.Exit(1)
	}
	if len(series) == 0 {
		log.Error("no valid data found", "path", *filePath)
		os.Exit(1)
	}
	from, to := series[0].Date, series[len(series)-1].Date
	log.Info("parsed export", "days", len(series), "from", from, "to", to)

	if *dryRun {
		log.Info("DRY RUN mode — nothing written to storage")
		return
	}

	if cfg.Storage.Driver == "postgres" {
		if err := storage.RunMigrations(cfg.Storage.Postgres.DSN(), "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.SQLitePath, cfg.Storage.Postgres.DSN())
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	const userKey = "default"
	existing, err := store.LoadSeries(ctx, userKey)
	if err != nil {
		log.Error("failed to load stored series", "error", err)
		os.Exit(1)
	}
	merged := metrics.Merge(existing, series)
	if err := store.SaveSeries(ctx, userKey, merged); err != nil {
		log.Error("failed to save series", "error", err)
		os.Exit(1)
	}

	entry := storage.ImportLog{
		ID:           uuid.New(),
		UserKey:      userKey,
		Source:       "cli",
		Status:       "success",
		DaysImported: len(series),
		FromDate:     from,
		ToDate:       to,
		DurationMs:   int(time.Since(start).Milliseconds()),
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.InsertImportLog(ctx, entry); err != nil {
		log.Warn("failed to record import log", "error", err)
	}

	log.Info("import complete",
		"days_imported", len(series),
		"total_days", len(merged),
		"from", from,
		"to", to,
	)
}
