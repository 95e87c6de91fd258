// Package web exposes inspection and export over HTTP for the serve command.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/tabinspect/internal/export"
	"github.com/JonMunkholm/tabinspect/internal/ingest"
	weblog "github.com/JonMunkholm/tabinspect/internal/web/middleware"
)

// maxBodySize bounds request bodies; requests only carry paths and names.
const maxBodySize = 1 << 20

// Options configures a Server.
type Options struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	PreviewRows    int
	// MaxConcurrentLoads and MaxWait configure the /api load limiter.
	MaxConcurrentLoads int
	MaxWait            time.Duration
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Server is the HTTP server for the serve command.
type Server struct {
	loader   *ingest.Loader
	writer   *export.Writer
	opts     Options
	validate *validator.Validate
	router   *chi.Mux
	server   *http.Server
	limiter  *LoadLimiter
}

// NewServer creates a new Server instance.
func NewServer(loader *ingest.Loader, writer *export.Writer, opts Options) *Server {
	s := &Server{
		loader:   loader,
		writer:   writer,
		opts:     opts,
		validate: newValidator(),
		router:   chi.NewRouter(),
		limiter:  NewLoadLimiter(opts.MaxConcurrentLoads, opts.MaxWait),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Post("/inspect", s.handleInspect)
		r.Post("/export", s.handleExport)
	})
}

// Start begins listening for HTTP requests. It returns
// http.ErrServerClosed after Shutdown, even when Shutdown ran first.
func (s *Server) Start(addr string) error {
	s.server.Addr = addr
	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
