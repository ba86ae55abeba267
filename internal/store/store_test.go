package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d, err := db.Open(filepath.Join(dir, "test.db"), logger, db.Options{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return New(d, logger)
}

// makeTestTag creates a domain.Tag with sensible defaults for testing.
func makeTestTag(id, name string) *domain.Tag {
	return &domain.Tag{
		ID:        id,
		Name:      name,
		Category:  "themes",
		Color:     "#ffcc00",
		Priority:  5,
		CreatedAt: time.Now(),
		UserID:    "user-1",
	}
}

// makeTestAnnotation creates a domain.Annotation referencing tagID.
func makeTestAnnotation(id, tagID string, tokens ...string) *domain.Annotation {
	a := &domain.Annotation{
		ID:       id,
		TagID:    tagID,
		TokenIDs: tokens,
		UserID:   "user-1",
		Note:     "a note",
	}
	a.InitTimestamps()
	return a
}

// mustSaveTag persists a tag or fails the test.
func mustSaveTag(t *testing.T, s *Store, tag *domain.Tag) {
	t.Helper()
	if err := s.SaveTag(context.Background(), tag); err != nil {
		t.Fatalf("SaveTag %s: %v", tag.ID, err)
	}
}

// mustSaveAnnotation persists an annotation or fails the test.
func mustSaveAnnotation(t *testing.T, s *Store, a *domain.Annotation) {
	t.Helper()
	if err := s.SaveAnnotation(context.Background(), a); err != nil {
		t.Fatalf("SaveAnnotation %s: %v", a.ID, err)
	}
}
