package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/helios-lab/project-helios/internal/api"
	corecfg "github.com/helios-lab/project-helios/internal/core/config"
	"github.com/helios-lab/project-helios/internal/model"
	"github.com/helios-lab/project-helios/internal/rdb"
	"github.com/helios-lab/project-helios/internal/server"
)

func main() {
	configPath := flag.String("config", "helios.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Result Database
	var opts []rdb.Option
	if cfg.RDB.ReplaceEntries {
		opts = append(opts, rdb.WithReplaceEntries())
	}
	db := rdb.New(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Ingest solved-model result files
	if len(cfg.Models.Paths) > 0 {
		models, err := model.LoadAll(ctx, cfg.Models.Paths)
		if err != nil {
			slog.Error("Failed to load model files", "error", err)
			os.Exit(1)
		}
		for _, m := range models {
			entry, err := db.AddEntry(m)
			if err != nil {
				slog.Error("Failed to add entry", "model", m.Name, "error", err)
				os.Exit(1)
			}
			slog.Info("Added entry",
				"id", entry.ID(),
				"name", entry.Name(),
				"snapshots", len(entry.Snapshots()),
				"components", len(entry.Metadata().Components()),
			)
		}
	}

	// 4. Initialize Server + Inspection API
	addr := fmtAddr(cfg.Server.Host, cfg.Server.Port)
	srv := server.New(addr, db, cfg.Server.Mode)
	api.NewService(db).RegisterRoutes(srv.Engine)

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	if cfg.UI.OpenBrowser {
		url := fmt.Sprintf("http://%s/v1/entries", addr)
		if err := api.OpenBrowser(url); err != nil {
			slog.Warn("Failed to open browser", "url", url, "error", err)
		}
	}

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
