package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/marginapp/margin-server/internal/http/response"
	"github.com/marginapp/margin-server/internal/search"
)

const maxSearchLimit = 100

// handleSearch runs a full-text search over tags and annotations.
//
// Query parameters:
//
//	q          search query (required)
//	types      comma-separated document types (tag, annotation)
//	category   exact tag category filter
//	token_id   exact token id filter on annotations
//	limit      page size (default 20, max 100)
//	offset     pagination offset
//	sort       relevance, name, or recent
//	order      asc or desc
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		response.BadRequest(w, "Search query is required", s.logger)
		return
	}

	params := search.DefaultSearchParams()
	params.Query = query
	params.Category = q.Get("category")
	params.TokenID = q.Get("token_id")

	if types := q.Get("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				params.Types = append(params.Types, t)
			}
		}
	}

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.Limit = min(limit, maxSearchLimit)
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		params.Offset = offset
	}

	if sortBy := q.Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := q.Get("order"); order != "" {
		params.SortOrder = order
	}

	result, err := s.searchService.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("Search failed", "query", query, "error", err)
		response.InternalError(w, "Search failed", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
