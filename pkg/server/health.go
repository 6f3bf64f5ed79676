package server

import (
	"net/http"
	"time"

	"github.com/NVIDIA/patch-inventory/pkg/serializer"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// handleReady handles GET /ready. The server is ready once the first
// inventory has been built.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.isReady() {
		resp := HealthResponse{
			Status:    "not_ready",
			Timestamp: time.Now(),
			Reason:    "inventory not built yet",
		}
		serializer.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp := HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}
