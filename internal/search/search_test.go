package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginapp/margin-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:       "tag-123",
		Type:     DocTypeTag,
		Name:     "covenant",
		Category: "theology",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "tag-1", Type: DocTypeTag, Name: "covenant"},
		{ID: "tag-2", Type: DocTypeTag, Name: "promise"},
		{ID: "ann-1", Type: DocTypeAnnotation, Name: "first occurrence of the theme"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:   "tag-123",
		Type: DocTypeTag,
		Name: "covenant",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.DeleteDocument("tag-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Search(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "tag-1", Type: DocTypeTag, Name: "covenant", Category: "theology"},
		{ID: "tag-2", Type: DocTypeTag, Name: "geography", Category: "places"},
		{ID: "ann-1", Type: DocTypeAnnotation, Name: "covenant renewed here", TagName: "covenant",
			TokenIDs: []string{"gen.15.1.1", "gen.15.1.2"}},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "covenant"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	assert.Contains(t, ids, "tag-1")
	assert.Contains(t, ids, "ann-1")
}

func TestSearchIndex_Search_TypeFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "tag-1", Type: DocTypeTag, Name: "covenant"},
		{ID: "ann-1", Type: DocTypeAnnotation, Name: "covenant note", TagName: "covenant"},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.Query = "covenant"
	params.Types = []string{string(DocTypeTag)}

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "tag-1", result.Hits[0].ID)
	assert.Equal(t, DocTypeTag, result.Hits[0].Type)
}

func TestSearchIndex_Search_TokenIDFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*SearchDocument{
		{ID: "ann-1", Type: DocTypeAnnotation, Name: "first", TokenIDs: []string{"gen.1.1.1"}},
		{ID: "ann-2", Type: DocTypeAnnotation, Name: "second", TokenIDs: []string{"gen.1.1.10"}},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultSearchParams()
	params.TokenID = "gen.1.1.1"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "ann-1", result.Hits[0].ID)
}

func TestSearchIndex_Search_Fuzzy(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(&SearchDocument{
		ID: "tag-1", Type: DocTypeTag, Name: "covenant",
	}))

	params := DefaultSearchParams()
	params.Query = "covenent" // typo

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "tag-1", result.Hits[0].ID)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(&SearchDocument{
		ID: "tag-1", Type: DocTypeTag, Name: "covenant",
	}))

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Still usable after rebuild.
	require.NoError(t, index.IndexDocument(&SearchDocument{
		ID: "tag-2", Type: DocTypeTag, Name: "promise",
	}))
}

func TestAnnotationToSearchDocument(t *testing.T) {
	now := time.Now().UTC()
	a := &domain.Annotation{
		ID:           "ann-1",
		TagID:        "tag-1",
		TokenIDs:     []string{"gen.1.1.1"},
		Note:         "in the beginning",
		CreatedAt:    now,
		LastModified: now.Add(time.Minute),
		Version:      2,
	}

	doc := AnnotationToSearchDocument(a, "covenant")
	assert.Equal(t, "ann-1", doc.ID)
	assert.Equal(t, DocTypeAnnotation, doc.Type)
	assert.Equal(t, "in the beginning", doc.Name)
	assert.Equal(t, "covenant", doc.TagName)
	assert.Equal(t, a.CreatedAt.UnixMilli(), doc.CreatedAt)
	assert.Equal(t, a.LastModified.UnixMilli(), doc.UpdatedAt)
}
