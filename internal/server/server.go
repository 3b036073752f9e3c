// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/v1/graph/workflows/{workflowType}?size=&format=
//	POST /api/v1/graph/render   {"workflow": {...}, "phases": [...], "size": "", "format": ""}
//	POST /api/v1/graph/tasks    {"workflowType": "", "phases": [...], "size": "", "format": ""}
//
// Successful responses carry the artifact with its content type. Errors are
// JSON objects {"code": ..., "message": ...} using the codes from
// [github.com/gclm/flowgraph/pkg/errors].
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/gclm/flowgraph/pkg/pipeline"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server serves rendered workflow graphs.
type Server struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// RequestTimeout bounds each request, including source lookups.
	RequestTimeout time.Duration

	validate *validator.Validate
}

// New creates a server around runner. A nil logger uses log.Default().
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Runner:         runner,
		Logger:         logger,
		RequestTimeout: 30 * time.Second,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1/graph", func(r chi.Router) {
		r.Get("/workflows/{workflowType}", s.handleWorkflow)
		r.Post("/render", s.handleRender)
		r.Post("/tasks", s.handleTask)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
