package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/profiler/internal/processor"
	"github.com/MikeSquared-Agency/profiler/internal/store"
)

// Runner runs the profiling pipeline for one user.
type Runner interface {
	Run(ctx context.Context, username string, opts processor.RunOptions) (*processor.Result, error)
}

// ReportReader reads stored reports.
type ReportReader interface {
	GetReport(ctx context.Context, id uuid.UUID) (*store.Report, error)
	ListReports(ctx context.Context, username string, limit int) ([]store.Report, error)
}

type Server struct {
	router  *chi.Mux
	runner  Runner
	reports ReportReader
	backend string
	logger  *slog.Logger
	http    *http.Server
}

// NewServer builds the router. reports may be nil, in which case the
// read endpoints answer 503.
func NewServer(port int, apiToken string, runner Runner, reports ReportReader, backend string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		runner:  runner,
		reports: reports,
		backend: backend,
		logger:  logger,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/profiler/status", s.status)

	router.Route("/api/v1/personas", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/", s.createPersona)
		r.Get("/", s.listPersonas)
		r.Get("/{id}", s.getPersona)
	})

	return s
}

// Start serves until Shutdown is called. Start after Shutdown returns nil
// without listening.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":   "profiler",
		"backend": s.backend,
		"store":   s.reports != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
