// Package server exposes uploaded browser artifacts over HTTP. Each upload
// becomes a session holding its own artifact.Engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/runnerr0/histview/internal/artifact"
	"github.com/runnerr0/histview/internal/config"
)

const shutdownTimeout = 5 * time.Second

// Server serves the upload endpoint and the four record endpoints.
type Server struct {
	cfg       config.ServerConfig
	driver    string
	logger    *slog.Logger
	uploadDir string
	ownsDir   bool
	sessions  *registry
}

// Option configures a Server.
type Option func(*Server)

// WithDriver selects the SQLite driver used to open uploads.
func WithDriver(name string) Option {
	return func(s *Server) { s.driver = name }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server. When cfg.UploadDir is empty a temporary directory
// is created and removed again by Close.
func New(cfg config.ServerConfig, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		driver: artifact.DriverCGO,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !artifact.ValidDriver(s.driver) {
		return nil, fmt.Errorf("unknown sqlite driver %q", s.driver)
	}

	if cfg.UploadDir == "" {
		dir, err := os.MkdirTemp("", "histview-uploads-")
		if err != nil {
			return nil, fmt.Errorf("creating upload dir: %w", err)
		}
		s.uploadDir = dir
		s.ownsDir = true
	} else {
		if err := os.MkdirAll(cfg.UploadDir, 0700); err != nil {
			return nil, fmt.Errorf("creating upload dir: %w", err)
		}
		s.uploadDir = cfg.UploadDir
	}

	s.sessions = newRegistry(cfg.MaxSessions, s.logger)
	return s, nil
}

// UploadDir returns the directory uploads are stored under.
func (s *Server) UploadDir() string { return s.uploadDir }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/history", handleRecords(s, (*artifact.Engine).History))
		r.Get("/downloads", handleRecords(s, (*artifact.Engine).Downloads))
		r.Get("/visits", handleRecords(s, (*artifact.Engine).Visits))
		r.Get("/search-terms", handleRecords(s, (*artifact.Engine).SearchTerms))
	})

	return r
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("histview listening", "addr", ln.Addr().String(), "upload_dir", s.uploadDir)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases every session, and the upload directory when New
// created it.
func (s *Server) Close() error {
	s.sessions.closeAll()
	if s.ownsDir {
		s.ownsDir = false
		return os.RemoveAll(s.uploadDir)
	}
	return nil
}
