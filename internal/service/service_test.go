package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/domain"
	"github.com/marginapp/margin-server/internal/store"
)

// setupTestStore creates a store over a temporary database for testing.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"), logger, db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return store.New(d, logger)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// createTestTag creates a tag through the service so tests exercise the
// real creation path.
func createTestTag(t *testing.T, s *TagService, name string) *domain.Tag {
	t.Helper()

	tag, err := s.CreateTag(context.Background(), CreateTagRequest{
		Name:     name,
		Category: "themes",
		Color:    "#ffcc00",
	})
	require.NoError(t, err)
	return tag
}
