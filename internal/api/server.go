// Package api provides the HTTP API server and handlers for the Margin
// annotation engine.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/marginapp/margin-server/internal/db"
	"github.com/marginapp/margin-server/internal/http/response"
	"github.com/marginapp/margin-server/internal/service"
	"github.com/marginapp/margin-server/internal/snapshot"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db                *db.DB
	tagService        *service.TagService
	annotationService *service.AnnotationService
	searchService     *service.SearchService
	snapshotService   *snapshot.Service
	syncLimiter       *RateLimiter
	router            *chi.Mux
	logger            *slog.Logger
}

// Options tunes server behavior.
type Options struct {
	// SyncRateLimit is the per-client requests-per-minute budget on the
	// snapshot endpoints. Zero disables limiting.
	SyncRateLimit int
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(database *db.DB, tagService *service.TagService, annotationService *service.AnnotationService, searchService *service.SearchService, snapshotService *snapshot.Service, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		db:                database,
		tagService:        tagService,
		annotationService: annotationService,
		searchService:     searchService,
		snapshotService:   snapshotService,
		router:            chi.NewRouter(),
		logger:            logger,
	}

	if opts.SyncRateLimit > 0 {
		s.syncLimiter = NewRateLimiter(opts.SyncRateLimit, time.Minute, opts.SyncRateLimit)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Get("/{id}", s.handleGetTag)
			r.Patch("/{id}", s.handleUpdateTag)
			r.Delete("/{id}", s.handleDeleteTag)
			r.Get("/{id}/annotations", s.handleGetTagAnnotations)
			r.Get("/{id}/style", s.handleGetStyle)
			r.Put("/{id}/style", s.handleSetStyle)
			r.Delete("/{id}/style", s.handleDeleteStyle)
		})

		r.Get("/styles", s.handleListStyles)

		r.Route("/annotations", func(r chi.Router) {
			r.Get("/", s.handleListAnnotations)
			r.Post("/", s.handleCreateAnnotation)
			r.Get("/{id}", s.handleGetAnnotation)
			r.Patch("/{id}", s.handleUpdateAnnotation)
			r.Delete("/{id}", s.handleDeleteAnnotation)
		})

		r.Get("/tokens/{tokenID}/annotations", s.handleGetTokenAnnotations)

		r.Get("/search", s.handleSearch)

		// Snapshot exchange. Exports and imports move whole data sets,
		// so these endpoints carry a per-client rate limit.
		r.Route("/sync", func(r chi.Router) {
			if s.syncLimiter != nil {
				r.Use(RateLimitMiddleware(s.syncLimiter, s.logger))
			}
			r.Post("/export", s.handleExportSnapshot)
			r.Post("/import", s.handleImportSnapshot)
			r.Get("/snapshots", s.handleListSnapshots)
			r.Get("/snapshots/{id}", s.handleGetSnapshot)
			r.Delete("/snapshots/{id}", s.handleDeleteSnapshot)
		})
	})
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	start := time.Now()
	if _, err := s.db.Query(ctx, "SELECT 1"); err != nil {
		components["database"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
		overall = "unhealthy"
	} else {
		components["database"] = ComponentHealth{
			Status:  "healthy",
			Latency: time.Since(start).String(),
		}
	}

	if s.searchService != nil {
		if _, err := s.searchService.DocumentCount(); err != nil {
			components["search"] = ComponentHealth{Status: "degraded", Message: err.Error()}
			if overall == "healthy" {
				overall = "degraded"
			}
		} else {
			components["search"] = ComponentHealth{Status: "healthy"}
		}
	}

	status := http.StatusOK
	if overall == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, HealthResponse{Status: overall, Components: components}, s.logger)
}
