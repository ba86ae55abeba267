// Package search provides full-text search functionality using Bleve.
// It enables federated search across tags and annotations with faceted
// filtering and fuzzy matching.
package search

import (
	"github.com/marginapp/margin-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeTag        DocType = "tag"
	DocTypeAnnotation DocType = "annotation"
)

// SearchDocument is the unified document structure for the Bleve index.
// All searchable entities are indexed as SearchDocuments with type discrimination.
//
// Design note: We denormalize the tag name into annotation documents so a
// single query can match an annotation by the name of the tag it applies.
// The trade-off is that annotations must be reindexed when their tag is
// renamed, which the tag service takes care of.
type SearchDocument struct {
	// Identity
	ID   string  `json:"id"`   // Original entity ID (tag-xxx, ann-xxx)
	Type DocType `json:"type"` // Discriminator for result grouping

	// Primary searchable text (tag name for tags, note for annotations)
	Name string `json:"name"`

	// Tag-specific fields (empty for annotations)
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	// Annotation-specific fields (empty for tags)
	TagName  string   `json:"tag_name,omitempty"` // Denormalized for search
	TokenIDs []string `json:"token_ids,omitempty"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.TagName != "" {
		m["tag_name"] = d.TagName
	}
	if len(d.TokenIDs) > 0 {
		m["token_ids"] = d.TokenIDs
	}

	return m
}

// TagToSearchDocument converts a domain Tag to a SearchDocument.
func TagToSearchDocument(t *domain.Tag) *SearchDocument {
	return &SearchDocument{
		ID:          t.ID,
		Type:        DocTypeTag,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		CreatedAt:   t.CreatedAt.UnixMilli(),
		UpdatedAt:   t.CreatedAt.UnixMilli(),
	}
}

// AnnotationToSearchDocument converts a domain Annotation to a SearchDocument.
// The tag name must be provided by the caller, as the search package
// shouldn't depend on store.
func AnnotationToSearchDocument(a *domain.Annotation, tagName string) *SearchDocument {
	return &SearchDocument{
		ID:        a.ID,
		Type:      DocTypeAnnotation,
		Name:      a.Note,
		TagName:   tagName,
		TokenIDs:  a.TokenIDs,
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.LastModified.UnixMilli(),
	}
}
