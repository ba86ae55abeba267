package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/marginapp/margin-server/internal/domain"
	apperrors "github.com/marginapp/margin-server/internal/errors"
	"github.com/marginapp/margin-server/internal/id"
	"github.com/marginapp/margin-server/internal/store"
	"github.com/marginapp/margin-server/internal/validation"
)

// TagService orchestrates tag and tag style operations.
type TagService struct {
	store     *store.Store
	search    *SearchService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewTagService creates a new tag service.
// The search service may be nil; indexing is then skipped.
func NewTagService(store *store.Store, search *SearchService, logger *slog.Logger) *TagService {
	return &TagService{
		store:     store,
		search:    search,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListTags returns all tags ordered by name.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, storageFailure(err, "could not list tags")
	}
	return tags, nil
}

// GetTag returns a single tag.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, storageFailure(err, "could not load tag")
	}
	return tag, nil
}

// GetTagByName returns the tag with the given name.
func (s *TagService) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	tag, err := s.store.GetTagByName(ctx, name)
	if err != nil {
		return nil, storageFailure(err, "could not load tag")
	}
	return tag, nil
}

// CreateTagRequest contains fields for creating a tag.
type CreateTagRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=100"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon" validate:"max=100"`
	Priority    int64  `json:"priority"`
	UserID      string `json:"user_id"`
}

// CreateTag creates a new tag.
// The name is trimmed before any checks; an empty or whitespace-only
// name is rejected, as is a name another tag already uses.
func (s *TagService) CreateTag(ctx context.Context, req CreateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.EmptyName("tag name must not be empty")
	}

	if _, err := s.store.GetTagByName(ctx, name); err == nil {
		return nil, apperrors.DuplicateNamef("a tag named %q already exists", name)
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, storageFailure(err, "could not check tag name")
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, err
	}

	tag := &domain.Tag{
		ID:          tagID,
		Name:        name,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
		Icon:        req.Icon,
		Priority:    req.Priority,
		CreatedAt:   time.Now().UTC(),
		UserID:      req.UserID,
	}

	if err := s.store.SaveTag(ctx, tag); err != nil {
		return nil, storageFailure(err, "could not persist tag")
	}

	s.indexTag(tag)

	s.logger.Info("tag created", "id", tagID, "name", name)
	return tag, nil
}

// UpdateTagRequest contains fields for updating a tag.
// Nil fields are left unchanged.
type UpdateTagRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon"`
	Priority    *int64  `json:"priority"`
}

// UpdateTag updates a tag.
// Renaming enforces the same name rules as creation, except that the
// tag's current name never counts as a duplicate of itself.
func (s *TagService) UpdateTag(ctx context.Context, tagID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, storageFailure(err, "could not load tag")
	}

	renamed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.EmptyName("tag name must not be empty")
		}
		if name != tag.Name {
			if existing, err := s.store.GetTagByName(ctx, name); err == nil && existing.ID != tagID {
				return nil, apperrors.DuplicateNamef("a tag named %q already exists", name)
			} else if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
				return nil, storageFailure(err, "could not check tag name")
			}
			tag.Name = name
			renamed = true
		}
	}
	if req.Description != nil {
		tag.Description = *req.Description
	}
	if req.Category != nil {
		tag.Category = *req.Category
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}
	if req.Icon != nil {
		tag.Icon = *req.Icon
	}
	if req.Priority != nil {
		tag.Priority = *req.Priority
	}

	if err := s.store.SaveTag(ctx, tag); err != nil {
		return nil, storageFailure(err, "could not persist tag")
	}

	s.indexTag(tag)
	if renamed {
		// Annotation documents carry the tag name; refresh them.
		s.reindexAnnotationsForTag(ctx, tagID)
	}

	s.logger.Info("tag updated", "id", tagID, "name", tag.Name)
	return tag, nil
}

// DeleteTag removes a tag together with its annotations and style.
// The cascade is a single tag delete; the schema's foreign keys remove
// the annotation and style rows in the same statement, so a failure can
// never leave the cascade half applied.
func (s *TagService) DeleteTag(ctx context.Context, tagID string) error {
	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		return storageFailure(err, "could not load tag")
	}

	// Read before the delete so the index entries can be removed after.
	annotations, err := s.store.GetAnnotationsForTag(ctx, tagID)
	if err != nil {
		return storageFailure(err, "could not load annotations for tag")
	}

	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return storageFailure(err, "could not delete tag")
	}

	if s.search != nil {
		ids := make([]string, 0, len(annotations)+1)
		for _, a := range annotations {
			ids = append(ids, a.ID)
		}
		ids = append(ids, tagID)
		if err := s.search.DeleteDocuments(ids); err != nil {
			s.logger.Warn("failed to deindex deleted tag", "id", tagID, "error", err)
		}
	}

	s.logger.Info("tag deleted", "id", tagID, "annotations", len(annotations))
	return nil
}

// StyleRequest contains fields for setting a tag's display style.
type StyleRequest struct {
	UserID          string  `json:"user_id"`
	BackgroundColor string  `json:"background_color" validate:"omitempty,hexcolor"`
	TextColor       string  `json:"text_color" validate:"omitempty,hexcolor"`
	UnderlineStyle  string  `json:"underline_style" validate:"omitempty,oneof=solid dotted dashed wavy"`
	UnderlineColor  string  `json:"underline_color" validate:"omitempty,hexcolor"`
	FontWeight      string  `json:"font_weight" validate:"omitempty,oneof=normal bold"`
	Icon            string  `json:"icon" validate:"max=100"`
	IconPosition    string  `json:"icon_position" validate:"omitempty,oneof=before after"`
	Opacity         float64 `json:"opacity" validate:"gte=0,lte=1"`
}

// SetStyle creates or replaces the style override for a tag.
func (s *TagService) SetStyle(ctx context.Context, tagID string, req StyleRequest) (*domain.TagStyle, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.TagNotFoundf("tag %s not found", tagID)
		}
		return nil, storageFailure(err, "could not load tag")
	}

	style := &domain.TagStyle{
		TagID:           tagID,
		UserID:          req.UserID,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		UnderlineStyle:  req.UnderlineStyle,
		UnderlineColor:  req.UnderlineColor,
		FontWeight:      req.FontWeight,
		Icon:            req.Icon,
		IconPosition:    req.IconPosition,
		Opacity:         req.Opacity,
	}

	if err := s.store.SaveStyle(ctx, style); err != nil {
		return nil, storageFailure(err, "could not persist style")
	}

	s.logger.Info("tag style set", "tag_id", tagID)
	return style, nil
}

// GetStyle returns the style override for a tag.
func (s *TagService) GetStyle(ctx context.Context, tagID string) (*domain.TagStyle, error) {
	style, err := s.store.GetStyle(ctx, tagID)
	if err != nil {
		return nil, storageFailure(err, "could not load style")
	}
	return style, nil
}

// ListStyles returns every style override.
func (s *TagService) ListStyles(ctx context.Context) ([]*domain.TagStyle, error) {
	styles, err := s.store.ListStyles(ctx)
	if err != nil {
		return nil, storageFailure(err, "could not list styles")
	}
	return styles, nil
}

// DeleteStyle removes the style override for a tag, reverting it to
// client defaults. Removing a style that does not exist is a no-op.
func (s *TagService) DeleteStyle(ctx context.Context, tagID string) error {
	if err := s.store.DeleteStyle(ctx, tagID); err != nil {
		return storageFailure(err, "could not delete style")
	}
	s.logger.Info("tag style removed", "tag_id", tagID)
	return nil
}

// indexTag pushes a tag into the search index (best effort).
func (s *TagService) indexTag(tag *domain.Tag) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexTag(tag); err != nil {
		s.logger.Warn("failed to index tag", "id", tag.ID, "error", err)
	}
}

// reindexAnnotationsForTag refreshes annotation documents after a rename.
func (s *TagService) reindexAnnotationsForTag(ctx context.Context, tagID string) {
	if s.search == nil {
		return
	}
	annotations, err := s.store.GetAnnotationsForTag(ctx, tagID)
	if err != nil {
		s.logger.Warn("failed to load annotations for reindex", "tag_id", tagID, "error", err)
		return
	}
	for _, a := range annotations {
		if err := s.search.IndexAnnotation(ctx, a); err != nil {
			s.logger.Warn("failed to reindex annotation", "id", a.ID, "error", err)
		}
	}
}
