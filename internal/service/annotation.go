package service

import (
	"context"
	"log/slog"

	"github.com/marginapp/margin-server/internal/domain"
	apperrors "github.com/marginapp/margin-server/internal/errors"
	"github.com/marginapp/margin-server/internal/id"
	"github.com/marginapp/margin-server/internal/store"
	"github.com/marginapp/margin-server/internal/validation"
)

// AnnotationService orchestrates annotation operations.
type AnnotationService struct {
	store     *store.Store
	search    *SearchService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewAnnotationService creates a new annotation service.
// The search service may be nil; indexing is then skipped.
func NewAnnotationService(store *store.Store, search *SearchService, logger *slog.Logger) *AnnotationService {
	return &AnnotationService{
		store:     store,
		search:    search,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListAnnotations returns all annotations, most recently modified first.
func (s *AnnotationService) ListAnnotations(ctx context.Context) ([]*domain.Annotation, error) {
	annotations, err := s.store.ListAnnotations(ctx)
	if err != nil {
		return nil, storageFailure(err, "could not list annotations")
	}
	return annotations, nil
}

// GetAnnotation returns a single annotation.
func (s *AnnotationService) GetAnnotation(ctx context.Context, annotationID string) (*domain.Annotation, error) {
	a, err := s.store.GetAnnotation(ctx, annotationID)
	if err != nil {
		return nil, storageFailure(err, "could not load annotation")
	}
	return a, nil
}

// GetAnnotationsForTag returns the annotations applying a tag.
func (s *AnnotationService) GetAnnotationsForTag(ctx context.Context, tagID string) ([]*domain.Annotation, error) {
	annotations, err := s.store.GetAnnotationsForTag(ctx, tagID)
	if err != nil {
		return nil, storageFailure(err, "could not load annotations for tag")
	}
	return annotations, nil
}

// GetAnnotationsForToken returns annotations whose token set contains the
// given word token. A malformed token id can never appear in a stored
// token list, so it is rejected up front rather than scanned for.
func (s *AnnotationService) GetAnnotationsForToken(ctx context.Context, tokenID string) ([]*domain.Annotation, error) {
	if !domain.ValidTokenID(tokenID) {
		return nil, apperrors.InvalidTokens("malformed token id", []string{tokenID})
	}
	annotations, err := s.store.GetAnnotationsForToken(ctx, tokenID)
	if err != nil {
		return nil, storageFailure(err, "could not load annotations for token")
	}
	return annotations, nil
}

// CreateAnnotationRequest contains fields for creating an annotation.
type CreateAnnotationRequest struct {
	TagID    string   `json:"tag_id"`
	TokenIDs []string `json:"token_ids"`
	Note     string   `json:"note" validate:"max=10000"`
	UserID   string   `json:"user_id"`
}

// CreateAnnotation creates a new annotation applying a tag to a token range.
// The tag must exist, and the token list must be non-empty with every id
// well formed.
func (s *AnnotationService) CreateAnnotation(ctx context.Context, req CreateAnnotationRequest) (*domain.Annotation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetTag(ctx, req.TagID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.TagNotFoundf("tag %s not found", req.TagID)
		}
		return nil, storageFailure(err, "could not load tag")
	}

	if err := checkTokenIDs(req.TokenIDs); err != nil {
		return nil, err
	}

	annotationID, err := id.Generate("ann")
	if err != nil {
		return nil, err
	}

	a := &domain.Annotation{
		ID:       annotationID,
		TagID:    req.TagID,
		TokenIDs: req.TokenIDs,
		UserID:   req.UserID,
		Note:     req.Note,
	}
	a.InitTimestamps()

	if err := s.store.SaveAnnotation(ctx, a); err != nil {
		return nil, storageFailure(err, "could not persist annotation")
	}

	s.indexAnnotation(ctx, a)

	s.logger.Info("annotation created", "id", annotationID, "tag_id", req.TagID, "tokens", len(req.TokenIDs))
	return a, nil
}

// UpdateAnnotationRequest contains fields for updating an annotation.
// Nil fields are left unchanged.
type UpdateAnnotationRequest struct {
	TagID    *string   `json:"tag_id"`
	TokenIDs *[]string `json:"token_ids"`
	Note     *string   `json:"note"`
}

// UpdateAnnotation applies changes to an annotation. Every successful
// update bumps the version by exactly one and refreshes the modification
// time, whether or not any field actually changed.
func (s *AnnotationService) UpdateAnnotation(ctx context.Context, annotationID string, req UpdateAnnotationRequest) (*domain.Annotation, error) {
	a, err := s.store.GetAnnotation(ctx, annotationID)
	if err != nil {
		return nil, storageFailure(err, "could not load annotation")
	}

	if req.TagID != nil {
		if _, err := s.store.GetTag(ctx, *req.TagID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.TagNotFoundf("tag %s not found", *req.TagID)
			}
			return nil, storageFailure(err, "could not load tag")
		}
		a.TagID = *req.TagID
	}
	if req.TokenIDs != nil {
		if err := checkTokenIDs(*req.TokenIDs); err != nil {
			return nil, err
		}
		a.TokenIDs = *req.TokenIDs
	}
	if req.Note != nil {
		a.Note = *req.Note
	}

	a.Touch()

	if err := s.store.SaveAnnotation(ctx, a); err != nil {
		return nil, storageFailure(err, "could not persist annotation")
	}

	s.indexAnnotation(ctx, a)

	s.logger.Info("annotation updated", "id", annotationID, "version", a.Version)
	return a, nil
}

// DeleteAnnotation removes an annotation.
func (s *AnnotationService) DeleteAnnotation(ctx context.Context, annotationID string) error {
	if err := s.store.DeleteAnnotation(ctx, annotationID); err != nil {
		return storageFailure(err, "could not delete annotation")
	}

	if s.search != nil {
		if err := s.search.DeleteDocument(annotationID); err != nil {
			s.logger.Warn("failed to deindex annotation", "id", annotationID, "error", err)
		}
	}

	s.logger.Info("annotation deleted", "id", annotationID)
	return nil
}

// checkTokenIDs rejects empty token lists and malformed ids.
func checkTokenIDs(tokenIDs []string) error {
	if len(tokenIDs) == 0 {
		return apperrors.NoTokens("annotation must reference at least one token")
	}
	if invalid := domain.InvalidTokenIDs(tokenIDs); len(invalid) > 0 {
		return apperrors.InvalidTokens("malformed token ids", invalid)
	}
	return nil
}

// indexAnnotation pushes an annotation into the search index (best effort).
func (s *AnnotationService) indexAnnotation(ctx context.Context, a *domain.Annotation) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexAnnotation(ctx, a); err != nil {
		s.logger.Warn("failed to index annotation", "id", a.ID, "error", err)
	}
}
