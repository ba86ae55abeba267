package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/marginapp/margin-server/internal/api"
	"github.com/marginapp/margin-server/internal/config"
	"github.com/marginapp/margin-server/internal/logger"
	"github.com/marginapp/margin-server/internal/service"
	"github.com/marginapp/margin-server/internal/snapshot"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	dbHandle := do.MustInvoke[*DBHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	tagService := do.MustInvoke[*service.TagService](i)
	annotationService := do.MustInvoke[*service.AnnotationService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	snapshotService := do.MustInvoke[*snapshot.Service](i)

	handler := api.NewServer(dbHandle.DB, tagService, annotationService, searchService, snapshotService, log.Logger, api.Options{
		SyncRateLimit: cfg.Server.SyncRateLimit,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
