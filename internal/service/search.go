package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marginapp/margin-server/internal/domain"
	"github.com/marginapp/margin-server/internal/search"
	"github.com/marginapp/margin-server/internal/store"
)

// SearchService provides search across tags and annotations.
// It bridges the search index with the data store, handling document
// creation, updates, and query execution.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search performs a federated search across tags and annotations.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexTag indexes a single tag.
// Call this when a tag is created or renamed.
func (s *SearchService) IndexTag(tag *domain.Tag) error {
	doc := search.TagToSearchDocument(tag)

	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index tag: %w", err)
	}

	s.logger.Debug("indexed tag", "id", tag.ID, "name", tag.Name)
	return nil
}

// IndexAnnotation indexes a single annotation under its tag's name.
func (s *SearchService) IndexAnnotation(ctx context.Context, a *domain.Annotation) error {
	tagName := ""
	if tag, err := s.store.GetTag(ctx, a.TagID); err == nil {
		tagName = tag.Name
	} else {
		s.logger.Warn("indexing annotation without tag name", "id", a.ID, "tag_id", a.TagID, "error", err)
	}

	doc := search.AnnotationToSearchDocument(a, tagName)

	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index annotation: %w", err)
	}

	s.logger.Debug("indexed annotation", "id", a.ID, "tag_id", a.TagID)
	return nil
}

// DeleteDocument removes a single entity from the index.
func (s *SearchService) DeleteDocument(id string) error {
	return s.index.DeleteDocument(id)
}

// DeleteDocuments removes multiple entities from the index.
func (s *SearchService) DeleteDocuments(ids []string) error {
	return s.index.DeleteDocuments(ids)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from the store.
// Called after a snapshot import changes the data set underneath us.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}
	tagNames := make(map[string]string, len(tags))
	docs := make([]*search.SearchDocument, 0, len(tags))
	for _, tag := range tags {
		tagNames[tag.ID] = tag.Name
		docs = append(docs, search.TagToSearchDocument(tag))
	}

	annotations, err := s.store.ListAnnotations(ctx)
	if err != nil {
		return fmt.Errorf("list annotations: %w", err)
	}
	for _, a := range annotations {
		docs = append(docs, search.AnnotationToSearchDocument(a, tagNames[a.TagID]))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("reindexed search documents", "tags", len(tags), "annotations", len(annotations))
	return nil
}
