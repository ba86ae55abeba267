package store

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/marginapp/margin-server/internal/errors"
)

func TestSaveAndGetAnnotation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))
	a := makeTestAnnotation("ann-1", "tag-1", "gen.1.1.1", "gen.1.1.2")
	mustSaveAnnotation(t, s, a)

	got, err := s.GetAnnotation(ctx, "ann-1")
	if err != nil {
		t.Fatalf("GetAnnotation: %v", err)
	}

	if got.TagID != "tag-1" {
		t.Errorf("TagID: got %q, want tag-1", got.TagID)
	}
	if len(got.TokenIDs) != 2 || got.TokenIDs[0] != "gen.1.1.1" || got.TokenIDs[1] != "gen.1.1.2" {
		t.Errorf("TokenIDs did not round-trip as authored: %v", got.TokenIDs)
	}
	if got.Note != "a note" {
		t.Errorf("Note: got %q", got.Note)
	}
	if got.Version != 1 {
		t.Errorf("Version: got %d, want 1", got.Version)
	}
	if got.LastModified.Before(got.CreatedAt) {
		t.Errorf("LastModified %v before CreatedAt %v", got.LastModified, got.CreatedAt)
	}
}

func TestGetAnnotation_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAnnotation(context.Background(), "nonexistent")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAnnotations_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))

	base := time.Now().UTC()
	for i, id := range []string{"ann-old", "ann-mid", "ann-new"} {
		a := makeTestAnnotation(id, "tag-1", "gen.1.1.1")
		a.CreatedAt = base.Add(time.Duration(i) * time.Second)
		a.LastModified = a.CreatedAt
		mustSaveAnnotation(t, s, a)
	}

	got, err := s.ListAnnotations(ctx)
	if err != nil {
		t.Fatalf("ListAnnotations: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(got))
	}
	want := []string{"ann-new", "ann-mid", "ann-old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestGetAnnotationsForTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "first"))
	mustSaveTag(t, s, makeTestTag("tag-2", "second"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-1", "tag-1", "gen.1.1.1"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-2", "tag-2", "gen.1.1.2"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-3", "tag-1", "gen.1.1.3"))

	got, err := s.GetAnnotationsForTag(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetAnnotationsForTag: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(got))
	}
	for _, a := range got {
		if a.TagID != "tag-1" {
			t.Errorf("annotation %s belongs to %s", a.ID, a.TagID)
		}
	}
}

func TestGetAnnotationsForToken_Containment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-1", "tag-1", "gen.1.1.1", "gen.1.1.2"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-2", "tag-1", "gen.1.1.10"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-3", "tag-1", "exo.2.3.4"))

	got, err := s.GetAnnotationsForToken(ctx, "gen.1.1.1")
	if err != nil {
		t.Fatalf("GetAnnotationsForToken: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ann-1" {
		t.Fatalf("expected exactly ann-1, got %v", got)
	}

	// The reverse direction: querying for the longer id must not match the
	// annotation that holds its prefix.
	got, err = s.GetAnnotationsForToken(ctx, "gen.1.1.10")
	if err != nil {
		t.Fatalf("GetAnnotationsForToken: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ann-2" {
		t.Fatalf("expected exactly ann-2, got %v", got)
	}
}

func TestGetAnnotationsForToken_NoMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-1", "tag-1", "gen.1.1.1"))

	got, err := s.GetAnnotationsForToken(ctx, "rev.22.21.1")
	if err != nil {
		t.Fatalf("GetAnnotationsForToken: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestDeleteAnnotation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-1", "tag-1", "gen.1.1.1"))

	if err := s.DeleteAnnotation(ctx, "ann-1"); err != nil {
		t.Fatalf("DeleteAnnotation: %v", err)
	}
	if err := s.DeleteAnnotation(ctx, "ann-1"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAnnotationsForTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "doomed"))
	mustSaveTag(t, s, makeTestTag("tag-2", "safe"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-1", "tag-1", "gen.1.1.1"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-2", "tag-1", "gen.1.1.2"))
	mustSaveAnnotation(t, s, makeTestAnnotation("ann-3", "tag-2", "gen.1.1.3"))

	if err := s.DeleteAnnotationsForTag(ctx, "tag-1"); err != nil {
		t.Fatalf("DeleteAnnotationsForTag: %v", err)
	}

	remaining, err := s.ListAnnotations(ctx)
	if err != nil {
		t.Fatalf("ListAnnotations: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "ann-3" {
		t.Fatalf("expected only ann-3 to remain, got %v", remaining)
	}

	// Deleting for a tag with no annotations is a no-op.
	if err := s.DeleteAnnotationsForTag(ctx, "tag-1"); err != nil {
		t.Fatalf("second DeleteAnnotationsForTag: %v", err)
	}
}
