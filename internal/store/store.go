// Package store maps domain entities to and from relational rows.
// All SQL goes through the db gateway; this package never opens the
// backing file itself.
package store

import (
	"log/slog"

	"github.com/marginapp/margin-server/internal/db"
)

// Store provides repository access to tags, annotations, and styles.
type Store struct {
	db     *db.DB
	logger *slog.Logger
}

// New creates a Store over an open gateway.
func New(d *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: d, logger: logger}
}
