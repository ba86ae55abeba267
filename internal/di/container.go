// Package di provides dependency injection configuration for the Margin server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/marginapp/margin-server/internal/config"
	"github.com/marginapp/margin-server/internal/di/providers"
	"github.com/marginapp/margin-server/internal/logger"
	"github.com/marginapp/margin-server/internal/service"
	"github.com/marginapp/margin-server/internal/snapshot"
	"github.com/marginapp/margin-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Persistence layer
	do.Provide(injector, providers.ProvideDB)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideAnnotationService)

	// Snapshot exchange
	do.Provide(injector, providers.ProvideSnapshotService)
	do.Provide(injector, providers.ProvideInboxWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns the HTTP server handle.
// This triggers lazy initialization of every core service; the inbox
// watcher is started only when enabled in configuration.
func Bootstrap(injector *do.RootScope) (*providers.HTTPServerHandle, error) {
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return nil, err
	}

	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.DBHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*store.Store](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*service.SearchService](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*service.AnnotationService](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*snapshot.Service](injector); err != nil {
		return nil, err
	}

	if cfg.Sync.WatchInbox {
		if _, err := do.Invoke[*providers.InboxWatcherHandle](injector); err != nil {
			return nil, err
		}
	}

	return do.Invoke[*providers.HTTPServerHandle](injector)
}
