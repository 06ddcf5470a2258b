// Package server exposes a store.Persistence over the HTTP routes the client
// speaks.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/store"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllowOrigins restricts CORS to origins. "*" or an empty list allows any
// origin.
func WithAllowOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// Server serves templates from a Persistence.
type Server struct {
	store   store.Persistence
	logger  *slog.Logger
	origins []string
	engine  *gin.Engine
}

// New builds the router for p.
func New(p store.Persistence, opts ...Option) *Server {
	s := &Server{
		store:  p,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.logger), cors.New(s.corsConfig()))

	r.GET(client.PathList, s.selectTemplates)
	r.GET(client.PathRead, s.readTemplate)
	r.POST(client.PathCreate, s.createTemplate)
	r.PUT(client.PathUpdate, s.updateTemplate)
	r.DELETE(client.PathDelete, s.deleteTemplate)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", client.HeaderRequestID},
		ExposeHeaders: []string{client.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range s.origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(s.origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.origins
	return cfg
}
