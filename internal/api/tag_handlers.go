package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marginapp/margin-server/internal/http/response"
	"github.com/marginapp/margin-server/internal/service"
)

// handleListTags returns all tags ordered by name.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tagService.ListTags(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tags, s.logger)
}

// handleCreateTag creates a new tag.
func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTagRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	tag, err := s.tagService.CreateTag(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, tag, s.logger)
}

// handleGetTag returns a single tag by ID.
func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tag, err := s.tagService.GetTag(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tag, s.logger)
}

// handleUpdateTag applies a partial update to a tag.
func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.UpdateTagRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	tag, err := s.tagService.UpdateTag(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tag, s.logger)
}

// handleDeleteTag deletes a tag along with its annotations and style.
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.tagService.DeleteTag(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleGetTagAnnotations returns all annotations carrying the given tag.
func (s *Server) handleGetTagAnnotations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	annotations, err := s.annotationService.GetAnnotationsForTag(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, annotations, s.logger)
}

// handleGetStyle returns the style for a tag.
func (s *Server) handleGetStyle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	style, err := s.tagService.GetStyle(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, style, s.logger)
}

// handleSetStyle creates or replaces the style for a tag.
func (s *Server) handleSetStyle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.StyleRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	style, err := s.tagService.SetStyle(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, style, s.logger)
}

// handleDeleteStyle removes a tag's style. Deleting an absent style is a no-op.
func (s *Server) handleDeleteStyle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.tagService.DeleteStyle(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListStyles returns all stored styles.
func (s *Server) handleListStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := s.tagService.ListStyles(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, styles, s.logger)
}
