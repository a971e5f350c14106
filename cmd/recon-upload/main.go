package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/recon-health/recon/internal/upload"
)

func main() {
	serverURL := flag.String("server", "http://127.0.0.1:8080", "recon server URL")
	apiKey := flag.String("api-key", os.Getenv("RECON_AUTH_API_KEY"), "API key for the import endpoint")
	dir := flag.String("path", "", "directory of CSV/JSON export files (required)")
	stateDir := flag.String("state-dir", defaultStateDir(), "directory for the sync state database")
	dryRun := flag.Bool("dry-run", false, "report what would be sent without uploading")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: recon-upload -server http://host:port -path /path/to/exports [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *dir)
		os.Exit(1)
	}

	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode — nothing will be uploaded")
	}

	client := upload.NewClient(*serverURL, *apiKey)
	u := upload.New(client, state, *dir, *dryRun, log)

	stats, err := u.Run()
	if err != nil {
		log.Error("sync failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("sync complete")
}

func printStats(log *slog.Logger, stats *upload.Stats) {
	log.Info("sync stats",
		"files_total", stats.FilesTotal,
		"files_sent", stats.FilesSent,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"days_imported", stats.DaysImported,
	)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recon-upload"
	}
	return home + "/.recon-upload"
}
