// Package server publishes manifest definitions over HTTP in the formats
// offline clients understand and serves captured resources back to a
// browser.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/manifest"
	"github.com/quantmind-br/offsync/internal/utils"
)

// ManifestsPath is where the manifest list is published
const ManifestsPath = "/offline/manifests/"

// Options contains options for creating a Server
type Options struct {
	Definitions *manifest.Definitions
	// Reader backs /offline/cache/; the route is not mounted when nil
	Reader domain.ResourceReader
	// BaseURL is the public root used in the manifest list. When empty it
	// is derived from each request.
	BaseURL string
	Logger  *utils.Logger
}

// Server serves manifests and captured resources
type Server struct {
	defs    *manifest.Definitions
	reader  domain.ResourceReader
	baseURL string
	logger  *utils.Logger
}

// New creates a Server
func New(opts Options) (*Server, error) {
	if opts.Definitions == nil {
		return nil, errors.New("server: manifest definitions are required")
	}
	if err := opts.Definitions.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Server{
		defs:    opts.Definitions,
		reader:  opts.Reader,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  logger.WithComponent("server"),
	}, nil
}

// Routes builds the HTTP router
func (s *Server) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(s.withLogging)

	router.Route("/offline", func(r chi.Router) {
		r.Get("/manifests/", s.manifestList)
		r.Get("/manifests/{name}/", s.manifestDocument)
		r.Get("/manifests/{name}/cache.manifest", s.cacheManifest)
		if s.reader != nil {
			r.Get("/cache/", s.cachedResource)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	})

	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", addr).Msg("Serving offline manifests")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// base returns the public root URL for r
func (s *Server) base(r *http.Request) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}
