package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marginapp/margin-server/internal/http/response"
	"github.com/marginapp/margin-server/internal/service"
)

// handleListAnnotations returns all annotations, newest first.
func (s *Server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	annotations, err := s.annotationService.ListAnnotations(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, annotations, s.logger)
}

// handleCreateAnnotation creates an annotation over a set of token ids.
func (s *Server) handleCreateAnnotation(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAnnotationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	annotation, err := s.annotationService.CreateAnnotation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, annotation, s.logger)
}

// handleGetAnnotation returns a single annotation by ID.
func (s *Server) handleGetAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	annotation, err := s.annotationService.GetAnnotation(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, annotation, s.logger)
}

// handleUpdateAnnotation applies a partial update to an annotation.
func (s *Server) handleUpdateAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.UpdateAnnotationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	annotation, err := s.annotationService.UpdateAnnotation(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, annotation, s.logger)
}

// handleDeleteAnnotation deletes an annotation.
func (s *Server) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.annotationService.DeleteAnnotation(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleGetTokenAnnotations returns every annotation whose token list
// contains the given token id.
func (s *Server) handleGetTokenAnnotations(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "tokenID")

	annotations, err := s.annotationService.GetAnnotationsForToken(r.Context(), tokenID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, annotations, s.logger)
}
