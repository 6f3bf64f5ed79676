package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/NVIDIA/patch-inventory/pkg/server"
)

const name = "patchinv-server"

// writeTimeoutMargin is the time left to encode and send an inventory after
// the slowest allowed build.
const writeTimeoutMargin = 30 * time.Second

// Serve builds the first inventory in the background, marks the server
// ready once it succeeds, and serves until ctx is done.
//
// Routes:
//
//	GET /v1/inventory               full inventory (json or yaml)
//	GET /v1/inventory/hosts/{name}  host variables, always {}
//	GET /v1/inventory/stats         counters of the last build
func Serve(ctx context.Context, version string, gen Generator, cfg *server.Config, opts ...HandlerOption) error {
	s, h := NewServer(version, gen, cfg, opts...)

	go func() {
		if _, err := h.Refresh(ctx); err != nil {
			slog.Warn("initial inventory build failed, will retry on request", "error", err)
		}
	}()

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// NewServer wires an InventoryHandler into a server. The write timeout is
// raised above the build timeout when needed, so a request waiting on a
// cold build gets the inventory or a TIMEOUT error rather than a dropped
// connection. cfg is not modified.
func NewServer(version string, gen Generator, cfg *server.Config, opts ...HandlerOption) (*server.Server, *InventoryHandler) {
	var s *server.Server
	opts = append(opts, WithOnBuilt(func() { s.SetReady(true) }))
	h := NewInventoryHandler(gen, opts...)

	c := *cfg
	if minWrite := h.buildTimeout + writeTimeoutMargin; c.WriteTimeout < minWrite {
		slog.Debug("raising write timeout above build timeout",
			"write_timeout", c.WriteTimeout,
			"build_timeout", h.buildTimeout,
			"new_write_timeout", minWrite,
		)
		c.WriteTimeout = minWrite
	}

	s = server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithConfig(&c),
		server.WithHandler(Routes(h)),
	)
	return s, h
}

// Routes returns the API routes served by h.
func Routes(h *InventoryHandler) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/inventory":              h.HandleInventory,
		"/v1/inventory/hosts/{name}": h.HandleHost,
		"/v1/inventory/stats":        h.HandleStats,
	}
}
