package upload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks sync progress.
type Stats struct {
	FilesTotal   int
	FilesSent    int
	FilesSkipped int
	FilesErrored int
	DaysImported int
}

// Uploader walks a directory of CSV/JSON exports and POSTs new or changed
// files to the recon server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the sync, oldest file first so later exports win field
// conflicts on the server.
func (u *Uploader) Run() (*Stats, error) {
	files, err := exportFiles(u.dir)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		u.stats.FilesTotal++

		relPath, _ := filepath.Rel(u.dir, f)
		info, err := os.Stat(f)
		if err != nil {
			u.log.Warn("stat failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}

		hash, err := HashFile(f)
		if err != nil {
			u.log.Warn("hash failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}

		sent, err := u.state.IsSent(relPath, info.Size(), hash)
		if err != nil {
			u.log.Warn("state check failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if sent {
			u.stats.FilesSkipped++
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			u.log.Warn("read failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}

		if u.dryRun {
			u.log.Info("dry-run: would send", "file", relPath, "bytes", len(data))
			u.stats.FilesSent++
			continue
		}

		result, err := u.client.SendFile(f, data)
		if err != nil {
			u.log.Warn("send failed", "file", relPath, "error", err)
			u.stats.FilesErrored++
			continue
		}

		if err := u.state.MarkSent(relPath, info.Size(), hash); err != nil {
			u.log.Warn("failed to mark sent", "file", relPath, "error", err)
		}
		u.stats.FilesSent++
		u.stats.DaysImported += result.Imported
		u.log.Info("sent export",
			"file", relPath,
			"days", result.Imported,
			"from", result.From,
			"to", result.To,
		)
	}

	return &u.stats, nil
}

// exportFiles lists the CSV and JSON files under dir, sorted by name.
// Export tools name files by date, so name order is chronological order.
func exportFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".json":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
