package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Server serves the registered API handlers plus health, readiness, and
// metrics endpoints.
type Server struct {
	name     string
	version  string
	config   *Config
	handlers map[string]http.HandlerFunc
	limiter  *rate.Limiter

	mu    sync.RWMutex
	ready bool
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the name reported by the root endpoint.
func WithName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the version reported by the root endpoint.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithHandler registers API handlers by route pattern. API handlers run
// behind the request ID, rate limit, and recovery middleware.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		for pattern, h := range handlers {
			s.handlers[pattern] = h
		}
	}
}

// New returns a server that is not ready until SetReady(true) is called.
func New(opts ...Option) *Server {
	s := &Server{
		name:     "server",
		version:  "dev",
		config:   DefaultConfig(),
		handlers: make(map[string]http.HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	return s
}

// SetReady flips the readiness reported by /ready.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Config returns a copy of the effective configuration.
func (s *Server) Config() Config {
	return *s.config
}

// Handler returns the root handler with all routes installed.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", ln.Addr().String(), "name", s.name, "version", s.version)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped")
	return nil
}
