// Package web provides the HTTP server and handlers for the catalog admin.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	mw "github.com/JonMunkholm/catalog/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the catalog admin.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	importLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		importLimit = s.newRateLimiter(s.cfg.Rate.ImportLimit).middleware
	}

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusFound)
	})
	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.Get("/products", s.handleProductList)
	s.router.Get("/products/import", s.handleImportForm)
	s.router.With(importLimit).Post("/products/import/mapping", s.handleImportMapping)
	s.router.With(importLimit).Post("/products/import/submit", s.handleImportSubmit)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)
		r.Get("/imports", s.handleRecentImports)
		r.Get("/products/export", s.handleExport)

		r.With(mw.APIKeyAuth(&s.cfg.Security), importLimit).Post("/products/import", s.handleImportAPI)
	})
}

// Start begins listening for HTTP requests on the configured address.
// It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if s.cfg.Security.EnableCSP {
			// Inline styles and the category select's onchange handler.
			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src * data:")
		}

		next.ServeHTTP(w, r)
	})
}
