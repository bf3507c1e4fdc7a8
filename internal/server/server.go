// Package server exposes normalization over HTTP for the results page.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ppiankov/vitalscan/internal/cache"
	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/observability"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Assessor produces normalized documents; *pipeline.Pipeline satisfies it
type Assessor interface {
	Assess(ctx context.Context, form map[string]any) (*model.Document, error)
	NormalizeBytes(ctx context.Context, data []byte, contentType string, source string) *model.Document
}

// Server serves the normalization API and session-scoped results
type Server struct {
	assessor   Assessor
	sessions   *cache.SessionStore
	cfg        model.ServerConfig
	cookieName string
	cookieTTL  time.Duration
	maxBody    int64
	logger     *zap.Logger
}

// New creates a server from configuration
func New(cfg *model.Config, assessor Assessor) *Server {
	cookieName := cfg.Session.CookieName
	if cookieName == "" {
		cookieName = "vitalscan_session"
	}
	maxBody := cfg.Upstream.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2_000_000
	}

	return &Server{
		assessor:   assessor,
		sessions:   cache.NewSessionStore(cfg.Session.TTL),
		cfg:        cfg.Server,
		cookieName: cookieName,
		cookieTTL:  cfg.Session.TTL,
		maxBody:    maxBody,
		logger:     observability.GetLogger().Named("server"),
	}
}

// Handler builds the HTTP router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/results", s.handleResults)
	r.Route("/api", func(r chi.Router) {
		r.Post("/normalize", s.handleNormalize)
		r.Post("/assess", s.handleAssess)
		r.Get("/sample-assessment", s.handleSampleAssessment)
	})

	return r
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.Info("shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
