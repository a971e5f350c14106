package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/recon-health/recon/internal/config"
	"github.com/recon-health/recon/internal/mcp"
	"github.com/recon-health/recon/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
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

	s := mcp.New(store, cfg.Goals, Version, log)
	log.Info("Recon MCP server starting", "version", Version, "driver", cfg.Storage.Driver)

	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
