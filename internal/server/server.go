// Package server exposes views and the rendering pipeline over HTTP.
//
// Routes (all under /api/v1 except the health check):
//
//	POST   /views                           open a view
//	GET    /views                           list stored views
//	GET    /views/{id}                      view state and diagram
//	DELETE /views/{id}                      close a view
//	POST   /views/{id}/refresh              re-read the source
//	PUT    /views/{id}/mode                 switch activation mode
//	POST   /views/{id}/nodes/{node}/activate
//	GET    /views/{id}/nodes/{node}         inspect a node
//	GET    /views/{id}/render.{format}      render the current diagram
//	POST   /render                          one-shot render of a source
//	GET    /healthz
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/astview/pkg/buildinfo"
	"github.com/matzehuels/astview/pkg/observability"
	"github.com/matzehuels/astview/pkg/pipeline"
	"github.com/matzehuels/astview/pkg/view"
)

// maxBodySize bounds request bodies, which may carry a whole source file.
const maxBodySize = 17 << 20

// Config configures a [Server].
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Root is the directory view paths are resolved against.
	Root string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server serves the astview HTTP API.
type Server struct {
	cfg     Config
	views   *view.Manager
	runner  *pipeline.Runner
	logger  *log.Logger
	handler http.Handler
}

// New creates a server.
func New(cfg Config, views *view.Manager, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{cfg: cfg, views: views, runner: runner, logger: logger}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Route("/views", func(r chi.Router) {
			r.Post("/", s.handleOpen)
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(s.validateViewID)
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleClose)
				r.Post("/refresh", s.handleRefresh)
				r.Put("/mode", s.handleMode)
				r.Get("/render.{format}", s.handleViewRender)
				r.Route("/nodes/{node}", func(r chi.Router) {
					r.Use(validateNodeID)
					r.Get("/", s.handleInspect)
					r.Post("/activate", s.handleActivate)
				})
			})
		})
	})
	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "root", s.cfg.Root)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe reports requests to the HTTP hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
