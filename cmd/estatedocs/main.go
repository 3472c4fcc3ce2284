package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/estatedocs/internal/config"
	"github.com/vbonduro/estatedocs/internal/db"
	"github.com/vbonduro/estatedocs/internal/logging"
	"github.com/vbonduro/estatedocs/internal/remote"
	"github.com/vbonduro/estatedocs/internal/service"
	"github.com/vbonduro/estatedocs/internal/store"
	"github.com/vbonduro/estatedocs/internal/web"
	"github.com/vbonduro/estatedocs/internal/web/templates"
)

const pruneInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.SessionDBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	sessions := store.NewSessionStore(database, cfg.SessionIdleTimeout)
	snapshots := store.NewSnapshotStore(database)
	client := remote.NewClient(cfg.RemoteEndpointURL, cfg.SpreadsheetID, cfg.DriveFolderID, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go pruneSessions(ctx, sessions, logger)

	portal := service.NewPortalService(client, snapshots, logger)
	server := web.NewServer(portal, sessions, templates.FS, cfg.CookieSecure, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// pruneSessions removes idle sessions until ctx is done.
func pruneSessions(ctx context.Context, sessions *store.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PruneIdle(ctx)
			if err != nil {
				logger.Error("prune sessions failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned idle sessions", "count", n)
			}
		}
	}
}
