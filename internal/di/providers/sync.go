package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/marginapp/margin-server/internal/config"
	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/logger"
	"github.com/marginapp/margin-server/internal/service"
	"github.com/marginapp/margin-server/internal/snapshot"
	"github.com/marginapp/margin-server/internal/watcher"
)

// ProvideSnapshotService provides the snapshot export/import service.
func ProvideSnapshotService(i do.Injector) (*snapshot.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	dbHandle := do.MustInvoke[*DBHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return snapshot.NewService(dbHandle.DB, log.Logger, snapshot.Options{
		Dir:        cfg.Sync.SnapshotDir,
		DeviceName: cfg.Sync.DeviceName,
		Reindexer:  searchService,
	}), nil
}

// InboxWatcherHandle wraps the inbox watcher with its context for
// lifecycle management.
type InboxWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideInboxWatcher provides the snapshot inbox watcher, already running.
func ProvideInboxWatcher(i do.Injector) (*InboxWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	snapshotService := do.MustInvoke[*snapshot.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	w, err := watcher.New(snapshotService, log.Logger, watcher.Options{
		Dir:      cfg.Sync.InboxDir,
		Strategy: db.Strategy(cfg.Sync.AutoImportStrategy),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("Inbox watcher stopped", "error", err)
		}
	}()

	log.Info("Inbox watcher started", "dir", cfg.Sync.InboxDir, "strategy", cfg.Sync.AutoImportStrategy)

	return &InboxWatcherHandle{Watcher: w, cancel: cancel}, nil
}
