// Package server exposes treemap sessions over HTTP.
//
// A client uploads a tree document once, receives a session ID, and then
// drives the session the way an interactive viewer would: re-layout for a
// new viewport or strategy, hit test the cursor position, zoom in and out.
// Every response that changes geometry carries the full exported layout, so
// a browser can redraw without keeping its own model of the tree.
//
// # Routes
//
//	GET    /healthz
//	GET    /strategies
//	POST   /layout?format=json          one-shot layout, cached
//	POST   /maps?format=json            create a session
//	GET    /maps/{id}                   current layout (query overrides relayout)
//	GET    /maps/{id}/hit?x=&y=         deepest node under a point
//	POST   /maps/{id}/zoom?path=        zoom to a node (or ?x=&y=, or {"path": ...})
//	DELETE /maps/{id}/zoom              unzoom
//	DELETE /maps/{id}                   drop the session
//
// Errors are JSON objects {"code": ..., "error": ...} with the HTTP status
// derived from the error code.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/session"
)

// Defaults for Config fields left zero.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 32 << 20
	DefaultTimeout      = 60 * time.Second
)

// Config holds server configuration.
type Config struct {
	Addr           string
	CORSOrigins    []string      // nil allows every origin
	SessionTTL     time.Duration // idle lifetime of a map session
	MaxBodyBytes   int64         // upload limit for tree documents
	RequestTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = session.DefaultTTL
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultTimeout
	}
}

// Server serves the treemap API.
type Server struct {
	cfg        Config
	runner     *pipeline.Runner
	store      session.Store
	logger     *log.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. A nil store selects an in-memory store; a nil
// logger selects log.Default().
func New(cfg Config, runner *pipeline.Runner, store session.Store, logger *log.Logger) *Server {
	cfg.setDefaults()
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if store == nil {
		store = session.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		store:  store,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.logger.StandardLog(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": s.store.Len(),
		})
	})
	r.Get("/strategies", s.handleStrategies)
	r.Post("/layout", s.handleLayout)

	r.Route("/maps", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/hit", s.handleHit)
			r.Post("/zoom", s.handleZoom)
			r.Delete("/zoom", s.handleUnzoom)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store returns the session store.
func (s *Server) Store() session.Store { return s.store }

// ListenAndServe listens on the configured address until Shutdown.
// Expired sessions are swept in the background while it runs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * s.cfg.RequestTimeout,
		IdleTimeout:       120 * time.Second,
	}

	if ms, ok := s.store.(*session.MemoryStore); ok {
		go ms.Janitor(ctx, max(time.Second, s.cfg.SessionTTL/4))
	}

	s.logger.Info("treemap server listening", "addr", s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
