package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NVIDIA/patch-inventory/pkg/serializer"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Default handler
	mux.HandleFunc("/", s.handleDefault)

	// System endpoints (no rate limiting)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	// API endpoints with middleware
	for pattern, h := range s.handlers {
		mux.HandleFunc(pattern, s.withMiddleware(h))
	}

	return mux
}

// routes lists the served routes for the root endpoint.
func (s *Server) routes() []string {
	routes := []string{"GET /health", "GET /ready", "GET /metrics"}
	for pattern := range s.handlers {
		routes = append(routes, "GET "+pattern)
	}
	slices.Sort(routes)
	return routes
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	resp := struct {
		Name      string   `json:"name" yaml:"name"`
		Version   string   `json:"version" yaml:"version"`
		Ready     bool     `json:"ready" yaml:"ready"`
		Timestamp string   `json:"timestamp" yaml:"timestamp"`
		Routes    []string `json:"routes" yaml:"routes"`
	}{
		Name:      s.name,
		Version:   s.version,
		Ready:     s.isReady(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes:    s.routes(),
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}
