package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/leca/sauce-relay/internal/config"
	"github.com/leca/sauce-relay/internal/database"
	"github.com/leca/sauce-relay/internal/router"
	"github.com/leca/sauce-relay/internal/sauce"
	"github.com/leca/sauce-relay/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	if cfg.APIKey == "" {
		slog.Warn("no upstream api key configured, searches will be rejected upstream")
	}

	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewFileSystem(cfg.StoragePath)

	client := sauce.New(sauce.Options{
		BaseURL:       cfg.UpstreamBaseURL,
		APIKey:        cfg.APIKey,
		AllowedHosts:  cfg.AllowedHosts,
		MaxImageBytes: cfg.MaxImageBytes,
		FetchTimeout:  cfg.FetchTimeout,
	})

	srv := router.New(db, store, client, cfg)

	slog.Info("starting server", "addr", cfg.ListenAddr, "upstream", cfg.UpstreamBaseURL)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
