package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/marginapp/margin-server/internal/config"
	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/logger"
	"github.com/marginapp/margin-server/internal/store"
)

// DBHandle wraps the database gateway with shutdown capability.
type DBHandle struct {
	*db.DB
}

// Shutdown implements do.Shutdownable.
func (h *DBHandle) Shutdown() error {
	return h.Close()
}

// ProvideDB provides the single-writer database gateway.
func ProvideDB(i do.Injector) (*DBHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BaseDir, 0o755); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DatabasePath(), log.Logger, db.Options{
		CallTimeout: cfg.Data.CallTimeout,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.DatabasePath())

	return &DBHandle{DB: database}, nil
}

// ProvideStore provides the typed persistence layer.
func ProvideStore(i do.Injector) (*store.Store, error) {
	dbHandle := do.MustInvoke[*DBHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.New(dbHandle.DB, log.Logger), nil
}
