package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/http/response"
	"github.com/marginapp/margin-server/internal/snapshot"
)

// ExportSnapshotRequest is the request body for exporting a snapshot.
type ExportSnapshotRequest struct {
	// ID names the snapshot. A timestamped id is generated when empty.
	ID string `json:"id"`
}

// ImportSnapshotRequest is the request body for importing a snapshot.
type ImportSnapshotRequest struct {
	ID       string `json:"id"`
	Strategy string `json:"strategy"`
}

// handleExportSnapshot writes the current data set as a snapshot directory.
func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	var req ExportSnapshotRequest
	if r.ContentLength > 0 {
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}

	info, err := s.snapshotService.Export(r.Context(), req.ID)
	if err != nil {
		s.logger.Error("Snapshot export failed", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, info, s.logger)
}

// handleImportSnapshot applies a previously exported snapshot with the
// requested merge strategy.
func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var req ImportSnapshotRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if req.ID == "" {
		response.BadRequest(w, "Snapshot ID is required", s.logger)
		return
	}

	strategy := db.Strategy(req.Strategy)
	if req.Strategy == "" {
		strategy = db.StrategyMerge
	}
	if !strategy.Valid() {
		response.BadRequest(w, "Unknown merge strategy: "+req.Strategy, s.logger)
		return
	}

	result, err := s.snapshotService.Import(r.Context(), req.ID, strategy)
	if err != nil {
		s.handleSnapshotError(w, err)
		return
	}

	response.Success(w, result, s.logger)
}

// handleListSnapshots returns all snapshots in the snapshot directory,
// newest first.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.snapshotService.List(r.Context())
	if err != nil {
		s.logger.Error("Failed to list snapshots", "error", err)
		response.InternalError(w, "Failed to list snapshots", s.logger)
		return
	}

	response.Success(w, snapshots, s.logger)
}

// handleGetSnapshot returns metadata for a single snapshot.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, err := s.snapshotService.Get(r.Context(), id)
	if err != nil {
		s.handleSnapshotError(w, err)
		return
	}

	response.Success(w, info, s.logger)
}

// handleDeleteSnapshot removes a snapshot directory.
func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.snapshotService.Delete(r.Context(), id); err != nil {
		s.handleSnapshotError(w, err)
		return
	}

	response.NoContent(w)
}

// handleSnapshotError maps snapshot sentinel errors to HTTP statuses.
func (s *Server) handleSnapshotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, snapshot.ErrSnapshotNotFound), errors.Is(err, snapshot.ErrManifestNotFound):
		response.NotFound(w, "Snapshot not found", s.logger)
	case errors.Is(err, snapshot.ErrVersionMismatch):
		response.Error(w, http.StatusUnprocessableEntity, "Unsupported snapshot format version", s.logger)
	case errors.Is(err, snapshot.ErrFileLoad):
		s.logger.Error("Snapshot rejected", "error", err)
		response.Error(w, http.StatusUnprocessableEntity, "Snapshot data failed verification", s.logger)
	default:
		s.logger.Error("Snapshot operation failed", "error", err)
		response.HandleError(w, err, s.logger)
	}
}
