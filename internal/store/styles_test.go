package store

import (
	"context"
	"testing"

	"github.com/marginapp/margin-server/internal/domain"
	apperrors "github.com/marginapp/margin-server/internal/errors"
)

func TestSaveAndGetStyle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))

	st := &domain.TagStyle{
		TagID:           "tag-1",
		UserID:          "user-1",
		BackgroundColor: "#fff3cd",
		TextColor:       "#664d03",
		UnderlineStyle:  "dotted",
		UnderlineColor:  "#997404",
		FontWeight:      "bold",
		Icon:            "star",
		IconPosition:    "before",
		Opacity:         0.8,
	}
	if err := s.SaveStyle(ctx, st); err != nil {
		t.Fatalf("SaveStyle: %v", err)
	}

	got, err := s.GetStyle(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetStyle: %v", err)
	}
	if *got != *st {
		t.Errorf("style did not round-trip:\n got %+v\nwant %+v", got, st)
	}
}

func TestSaveStyle_PartialFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))

	// Only a background; everything else stays at its zero value.
	st := &domain.TagStyle{TagID: "tag-1", BackgroundColor: "#e2f0d9"}
	if err := s.SaveStyle(ctx, st); err != nil {
		t.Fatalf("SaveStyle: %v", err)
	}

	got, err := s.GetStyle(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetStyle: %v", err)
	}
	if got.BackgroundColor != "#e2f0d9" {
		t.Errorf("BackgroundColor: got %q", got.BackgroundColor)
	}
	if got.TextColor != "" || got.Icon != "" {
		t.Errorf("unset fields came back non-empty: %+v", got)
	}
	if got.Opacity != 0 {
		t.Errorf("Opacity: got %v, want 0", got.Opacity)
	}
}

func TestSaveStyle_UpsertsByTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))

	first := &domain.TagStyle{TagID: "tag-1", BackgroundColor: "#ff0000"}
	if err := s.SaveStyle(ctx, first); err != nil {
		t.Fatalf("SaveStyle: %v", err)
	}
	second := &domain.TagStyle{TagID: "tag-1", BackgroundColor: "#00ff00", FontWeight: "bold"}
	if err := s.SaveStyle(ctx, second); err != nil {
		t.Fatalf("SaveStyle (update): %v", err)
	}

	got, err := s.GetStyle(ctx, "tag-1")
	if err != nil {
		t.Fatalf("GetStyle: %v", err)
	}
	if got.BackgroundColor != "#00ff00" || got.FontWeight != "bold" {
		t.Errorf("update not applied: %+v", got)
	}

	styles, err := s.ListStyles(ctx)
	if err != nil {
		t.Fatalf("ListStyles: %v", err)
	}
	if len(styles) != 1 {
		t.Errorf("expected a single style row, got %d", len(styles))
	}
}

func TestGetStyle_NotFound(t *testing.T) {
	s := newTestStore(t)

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))

	_, err := s.GetStyle(context.Background(), "tag-1")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteStyle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveTag(t, s, makeTestTag("tag-1", "insight"))
	if err := s.SaveStyle(ctx, &domain.TagStyle{TagID: "tag-1", Icon: "flag"}); err != nil {
		t.Fatalf("SaveStyle: %v", err)
	}

	if err := s.DeleteStyle(ctx, "tag-1"); err != nil {
		t.Fatalf("DeleteStyle: %v", err)
	}
	if _, err := s.GetStyle(ctx, "tag-1"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Removing a style that does not exist is a no-op.
	if err := s.DeleteStyle(ctx, "tag-1"); err != nil {
		t.Fatalf("second DeleteStyle: %v", err)
	}
}
