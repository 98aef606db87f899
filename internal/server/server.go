// Package server exposes the action bridge over HTTP.
//
// One server owns a session store, a layout library, and a shared
// pipeline runner. Each action batch loads its session state into the
// runner, which builds the same bridge/scheduler/normalizer assembly
// the CLI uses, and persists the outcome back. Batches on the same
// session are serialized; different sessions run concurrently.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/labelsmith/labelsmith/pkg/bridge"
	"github.com/labelsmith/labelsmith/pkg/cache"
	"github.com/labelsmith/labelsmith/pkg/library"
	"github.com/labelsmith/labelsmith/pkg/media"
	"github.com/labelsmith/labelsmith/pkg/pipeline"
	"github.com/labelsmith/labelsmith/pkg/preview"
	"github.com/labelsmith/labelsmith/pkg/render"
	"github.com/labelsmith/labelsmith/pkg/session"
)

const (
	// DefaultAddr is where Run listens unless configured otherwise.
	DefaultAddr = ":8080"

	// requestBodyLimit caps action batches and layout uploads.
	requestBodyLimit = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Config wires a Server. Zero fields fall back to working defaults.
type Config struct {
	// Addr is the listen address for Run.
	Addr string

	// Sessions stores editing sessions. Nil falls back to an in-memory
	// store with the default TTL.
	Sessions session.Store

	// Library stores named layouts. Nil falls back to the file store in
	// the user config directory.
	Library library.Store

	// Media is the profile registry. Nil uses the built-ins.
	Media *media.Registry

	// Measurer computes layout geometry. Nil uses the headless measurer.
	Measurer render.Measurer

	// Cache fronts measurements and preview artifacts. Nil disables
	// caching.
	Cache cache.Cache

	// Preview configures the PNG preview renderer. Scale can still be
	// overridden per request.
	Preview preview.Options

	Logger *log.Logger
}

// Server handles the labelsmith HTTP API.
type Server struct {
	addr     string
	sessions session.Store
	library  library.Store
	registry *media.Registry
	runner   *pipeline.Runner
	logger   *log.Logger
	locks    *sessionLocks
}

// New creates a server. The error is from building the default layout
// store when none is configured.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Media == nil {
		cfg.Media = media.Builtin()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore(session.DefaultTTL)
	}
	if cfg.Library == nil {
		store, err := library.NewFileStore("")
		if err != nil {
			return nil, err
		}
		cfg.Library = store
	}

	runner := pipeline.NewRunner(pipeline.Config{
		Cache:    cfg.Cache,
		Measurer: cfg.Measurer,
		Media:    cfg.Media,
		Preview:  cfg.Preview,
		Logger:   cfg.Logger,
	})

	return &Server{
		addr:     cfg.Addr,
		sessions: cfg.Sessions,
		library:  cfg.Library,
		registry: cfg.Media,
		runner:   runner,
		logger:   cfg.Logger,
		locks:    newSessionLocks(),
	}, nil
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/capabilities", s.handleCapabilities)

		r.Post("/sessions", s.handleSessionCreate)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionGet)
			r.Delete("/", s.handleSessionDelete)
			r.Post("/actions", s.handleSessionActions)
			r.Get("/preview.png", s.handleSessionPreview)
		})

		r.Get("/layouts", s.handleLayoutList)
		r.Route("/layouts/{name}", func(r chi.Router) {
			r.Get("/", s.handleLayoutGet)
			r.Put("/", s.handleLayoutPut)
			r.Delete("/", s.handleLayoutDelete)
		})
	})

	return r
}

// Run serves until the context is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Close releases the session and layout stores and the runner's cache.
func (s *Server) Close() error {
	sessErr := s.sessions.Close()
	libErr := s.library.Close()
	runErr := s.runner.Close()
	if sessErr != nil {
		return sessErr
	}
	if libErr != nil {
		return libErr
	}
	return runErr
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bridge.ActionCapabilities())
}
