package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/scrollfeed/pkg/config"
	"github.com/umputun/scrollfeed/pkg/session"
	"github.com/umputun/scrollfeed/pkg/source"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/sessions.go -pkg mocks -skip-ensure -fmt goimports . SessionStore
//go:generate moq -out mocks/archive.go -pkg mocks -skip-ensure -fmt goimports . ArchiveReporter

//go:embed templates/*.html
var templatesFS embed.FS

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	sessions  SessionStore
	archive   ArchiveReporter
	version   string
	debug     bool
	templates *template.Template

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetFullConfig() *config.Config
}

// SessionStore keeps per-browser feed sessions
type SessionStore interface {
	Get(id string) (*session.Session, bool)
	Create() *session.Session
	Len() int
}

// ArchiveReporter reports the state of the sqlite archive
type ArchiveReporter interface {
	Status(ctx context.Context) (source.ArchiveStatus, error)
}

// New initializes a new server instance, archive is nil unless posts are served from the archive
func New(cfg ConfigProvider, sessions SessionStore, archive ArchiveReporter, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		sessions:  sessions,
		archive:   archive,
		version:   version,
		debug:     debug,
		templates: template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")),
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("scrollfeed", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024)) // 64KB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// web UI, htmx fragments
	s.router.HandleFunc("GET /{$}", s.indexHandler)
	s.router.HandleFunc("GET /feed", s.feedHandler)
	s.router.HandleFunc("GET /feed/next", s.nextPageHandler)
	s.router.HandleFunc("POST /feed/refresh", s.refreshHandler)

	s.router.HandleFunc("GET /rss", s.rssHandler)

	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /feed", s.apiFeedHandler)
		r.HandleFunc("POST /feed/next", s.apiNextPageHandler)
		r.HandleFunc("POST /feed/refresh", s.apiRefreshHandler)
	})
}

// waitTimeout returns how long a request may wait for an in-flight load,
// half of the write timeout to leave room for rendering
func (s *Server) waitTimeout() time.Duration {
	_, timeout := s.config.GetServerConfig()
	return timeout / 2
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
