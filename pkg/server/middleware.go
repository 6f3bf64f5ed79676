package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "requestID"

	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"
)

// RequestID returns the ID assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// withMiddleware wraps an API handler with request ID propagation, rate
// limiting, panic recovery, and access logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, requestID))
		w.Header().Set(HeaderRequestID, requestID)

		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			WriteError(w, r, http.StatusTooManyRequests, cmderrors.ErrCodeRateLimitExceeded,
				"rate limit exceeded", true, nil)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				slog.Error("handler panic", "path", r.URL.Path, "requestId", requestID, "panic", fmt.Sprint(p))
				WriteError(rec, r, http.StatusInternalServerError, cmderrors.ErrCodeInternal,
					"internal server error", true, nil)
			}
			slog.Debug("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"requestId", requestID,
			)
		}()

		next(rec, r)
	}
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
