package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dgallion1/lawgest/internal/config"
	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/pipeline"
	"github.com/dgallion1/lawgest/internal/qa"
	"github.com/dgallion1/lawgest/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// UploadStore is the upload registry.
type UploadStore interface {
	Create(ctx context.Context, u *storage.Upload) error
	Get(ctx context.Context, id string) (storage.Upload, error)
	List(ctx context.Context, kind storage.Kind) ([]storage.Upload, error)
	Delete(ctx context.Context, id string) error
}

// RunStore persists review runs.
type RunStore interface {
	Create(ctx context.Context, run *storage.Run) error
	Get(ctx context.Context, id string) (storage.Run, error)
	Latest(ctx context.Context, uploadID string) (storage.Run, error)
}

// FileStore holds uploaded bytes.
type FileStore interface {
	Save(kind storage.Kind, filename string, r io.Reader, maxBytes int64) (storage.SavedFile, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// JobQueue runs learn jobs in the background.
type JobQueue interface {
	Submit(uploadID, filename string) (*pipeline.Job, error)
	GetJob(id string) *pipeline.Job
}

// Reviewer answers the questions of an outline.
type Reviewer interface {
	Run(ctx context.Context, terms []outline.Term) ([]qa.Result, error)
}

// Forgetter drops a learned document from the vector index.
type Forgetter interface {
	Forget(ctx context.Context, program string) error
}

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Uploads  UploadStore
	Runs     RunStore
	Files    FileStore
	Jobs     JobQueue
	Reviewer Reviewer
	Index    Forgetter
	Claude   *qa.ClaudeClient
}

// Server is the HTTP API server for lawgest.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/upload", s.handleUpload)
		r.Get("/api/uploads", s.handleListUploads)
		r.Delete("/api/uploads/{uploadID}", s.handleDeleteUpload)
		r.Get("/api/uploads/{uploadID}/runs/latest", s.handleLatestRun)

		r.Post("/api/learn", s.handleLearn)
		r.Get("/api/learn/{jobID}/status", s.handleLearnStatus)

		r.Post("/api/segment", s.handleSegment)
		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/process", s.handleProcess)

		r.Get("/api/runs/{runID}", s.handleGetRun)
		r.Get("/api/runs/{runID}/export", s.handleExportRun)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
