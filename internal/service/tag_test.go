package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/marginapp/margin-server/internal/errors"
)

func TestTagService_CreateTag(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, CreateTagRequest{
		Name:        "covenant",
		Description: "covenant language",
		Category:    "theology",
		Color:       "#ffcc00",
		Priority:    3,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tag.ID)
	assert.Contains(t, tag.ID, "tag")
	assert.Equal(t, "covenant", tag.Name)
	assert.Equal(t, int64(3), tag.Priority)
	assert.False(t, tag.CreatedAt.IsZero())

	got, err := svc.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.Name, got.Name)
}

func TestTagService_CreateTag_TrimsName(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())

	tag, err := svc.CreateTag(context.Background(), CreateTagRequest{Name: "  covenant  "})
	require.NoError(t, err)
	assert.Equal(t, "covenant", tag.Name)
}

func TestTagService_CreateTag_EmptyName(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.CreateTag(ctx, CreateTagRequest{Name: name})
		assert.True(t, apperrors.Is(err, apperrors.ErrEmptyName), "name %q: got %v", name, err)
	}
}

func TestTagService_CreateTag_DuplicateName(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	createTestTag(t, svc, "covenant")

	_, err := svc.CreateTag(ctx, CreateTagRequest{Name: "covenant"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateName))

	// Whitespace around the name must not defeat the check.
	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: " covenant "})
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateName))
}

func TestTagService_UpdateTag(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	tag := createTestTag(t, svc, "covenant")

	newName := "promise"
	newPriority := int64(7)
	updated, err := svc.UpdateTag(ctx, tag.ID, UpdateTagRequest{
		Name:     &newName,
		Priority: &newPriority,
	})
	require.NoError(t, err)
	assert.Equal(t, "promise", updated.Name)
	assert.Equal(t, int64(7), updated.Priority)
	assert.Equal(t, "themes", updated.Category, "unset fields keep their values")
}

func TestTagService_UpdateTag_RenameToOwnName(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	tag := createTestTag(t, svc, "covenant")

	name := "covenant"
	_, err := svc.UpdateTag(ctx, tag.ID, UpdateTagRequest{Name: &name})
	assert.NoError(t, err, "keeping the current name is not a duplicate")
}

func TestTagService_UpdateTag_DuplicateName(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	createTestTag(t, svc, "covenant")
	other := createTestTag(t, svc, "promise")

	name := "covenant"
	_, err := svc.UpdateTag(ctx, other.ID, UpdateTagRequest{Name: &name})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateName))
}

func TestTagService_UpdateTag_NotFound(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())

	name := "anything"
	_, err := svc.UpdateTag(context.Background(), "tag-missing", UpdateTagRequest{Name: &name})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestTagService_DeleteTag_Cascades(t *testing.T) {
	st := setupTestStore(t)
	tags := NewTagService(st, nil, testLogger())
	annotations := NewAnnotationService(st, nil, testLogger())
	ctx := context.Background()

	tag := createTestTag(t, tags, "covenant")
	keep := createTestTag(t, tags, "promise")

	a, err := annotations.CreateAnnotation(ctx, CreateAnnotationRequest{
		TagID:    tag.ID,
		TokenIDs: []string{"gen.1.1.1"},
	})
	require.NoError(t, err)
	kept, err := annotations.CreateAnnotation(ctx, CreateAnnotationRequest{
		TagID:    keep.ID,
		TokenIDs: []string{"gen.1.1.2"},
	})
	require.NoError(t, err)

	_, err = tags.SetStyle(ctx, tag.ID, StyleRequest{BackgroundColor: "#fff3cd"})
	require.NoError(t, err)

	require.NoError(t, tags.DeleteTag(ctx, tag.ID))

	_, err = tags.GetTag(ctx, tag.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	_, err = annotations.GetAnnotation(ctx, a.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	_, err = tags.GetStyle(ctx, tag.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	// Unrelated data survives.
	_, err = annotations.GetAnnotation(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestTagService_DeleteTag_NotFound(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())

	err := svc.DeleteTag(context.Background(), "tag-missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestTagService_SetStyle(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	tag := createTestTag(t, svc, "covenant")

	style, err := svc.SetStyle(ctx, tag.ID, StyleRequest{
		BackgroundColor: "#fff3cd",
		UnderlineStyle:  "dotted",
		FontWeight:      "bold",
		IconPosition:    "before",
		Opacity:         0.6,
	})
	require.NoError(t, err)
	assert.Equal(t, tag.ID, style.TagID)

	got, err := svc.GetStyle(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "dotted", got.UnderlineStyle)
	assert.Equal(t, 0.6, got.Opacity)
}

func TestTagService_SetStyle_TagNotFound(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())

	_, err := svc.SetStyle(context.Background(), "tag-missing", StyleRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrTagNotFound))
}

func TestTagService_SetStyle_Invalid(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	tag := createTestTag(t, svc, "covenant")

	_, err := svc.SetStyle(ctx, tag.ID, StyleRequest{UnderlineStyle: "zigzag"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.SetStyle(ctx, tag.ID, StyleRequest{Opacity: 1.5})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestTagService_DeleteStyle(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	tag := createTestTag(t, svc, "covenant")
	_, err := svc.SetStyle(ctx, tag.ID, StyleRequest{BackgroundColor: "#fff3cd"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteStyle(ctx, tag.ID))

	_, err = svc.GetStyle(ctx, tag.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	// Removing an absent style is a no-op.
	assert.NoError(t, svc.DeleteStyle(ctx, tag.ID))
}

func TestTagService_ListTags(t *testing.T) {
	svc := NewTagService(setupTestStore(t), nil, testLogger())
	ctx := context.Background()

	createTestTag(t, svc, "promise")
	createTestTag(t, svc, "covenant")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "covenant", tags[0].Name)
	assert.Equal(t, "promise", tags[1].Name)
}
