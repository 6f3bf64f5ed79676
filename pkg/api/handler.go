package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NVIDIA/patch-inventory/pkg/defaults"
	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
	"github.com/NVIDIA/patch-inventory/pkg/inventory"
	"github.com/NVIDIA/patch-inventory/pkg/serializer"
	"github.com/NVIDIA/patch-inventory/pkg/server"
)

// Generator produces one inventory per call.
type Generator interface {
	Run(ctx context.Context) (*inventory.Inventory, inventory.Stats, error)
}

// InventoryHandler serves the inventory over HTTP. A built inventory is
// reused for the cache TTL; concurrent requests for an expired inventory
// share a single build.
type InventoryHandler struct {
	gen          Generator
	ttl          time.Duration
	buildTimeout time.Duration
	now          func() time.Time
	onBuilt      func()

	group singleflight.Group

	mu      sync.RWMutex
	cached  *inventory.Inventory
	stats   inventory.Stats
	builtAt time.Time
}

// HandlerOption configures an InventoryHandler.
type HandlerOption func(*InventoryHandler)

// WithCacheTTL sets how long a build is reused. Zero rebuilds on every
// request.
func WithCacheTTL(ttl time.Duration) HandlerOption {
	return func(h *InventoryHandler) {
		h.ttl = ttl
	}
}

// WithBuildTimeout bounds a single build.
func WithBuildTimeout(d time.Duration) HandlerOption {
	return func(h *InventoryHandler) {
		if d > 0 {
			h.buildTimeout = d
		}
	}
}

// WithOnBuilt registers a callback run after every successful build.
func WithOnBuilt(fn func()) HandlerOption {
	return func(h *InventoryHandler) {
		h.onBuilt = fn
	}
}

// NewInventoryHandler returns a handler serving inventories from gen.
func NewInventoryHandler(gen Generator, opts ...HandlerOption) *InventoryHandler {
	h := &InventoryHandler{
		gen:          gen,
		ttl:          defaults.InventoryCacheTTL,
		buildTimeout: defaults.InventoryBuildTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Refresh builds a new inventory and caches it.
func (h *InventoryHandler) Refresh(ctx context.Context) (*inventory.Inventory, error) {
	ch := h.group.DoChan("inventory", func() (any, error) {
		// The build outlives any single caller; it is bounded by buildTimeout.
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.buildTimeout)
		defer cancel()

		inv, stats, err := h.gen.Run(bctx)
		if err != nil {
			if bctx.Err() != nil && cmderrors.CodeOf(err) == cmderrors.ErrCodeInternal {
				err = cmderrors.Wrap(cmderrors.ErrCodeTimeout, "inventory build timed out", err)
			}
			return nil, err
		}

		h.mu.Lock()
		h.cached, h.stats, h.builtAt = inv, stats, h.now()
		h.mu.Unlock()

		if h.onBuilt != nil {
			h.onBuilt()
		}
		return inv, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*inventory.Inventory), nil
	case <-ctx.Done():
		return nil, cmderrors.Wrap(cmderrors.ErrCodeTimeout, "request canceled while building inventory", ctx.Err())
	}
}

// current returns the cached inventory when it is still fresh.
func (h *InventoryHandler) current() (*inventory.Inventory, time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.cached == nil || h.now().Sub(h.builtAt) >= h.ttl {
		return nil, time.Time{}, false
	}
	return h.cached, h.builtAt, true
}

func (h *InventoryHandler) get(ctx context.Context, refresh bool) (*inventory.Inventory, time.Time, error) {
	if !refresh {
		if inv, builtAt, ok := h.current(); ok {
			return inv, builtAt, nil
		}
	}
	inv, err := h.Refresh(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	h.mu.RLock()
	builtAt := h.builtAt
	h.mu.RUnlock()
	return inv, builtAt, nil
}

// HandleInventory handles GET /v1/inventory.
//
// Query parameters:
//
//	format   json (default) or yaml; an Accept of application/yaml also selects yaml
//	refresh  true to bypass the cache
func (h *InventoryHandler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		server.WriteError(w, r, http.StatusMethodNotAllowed, cmderrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, map[string]any{"method": r.Method})
		return
	}

	format, err := negotiateFormat(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid format", nil)
		return
	}

	inv, builtAt, err := h.get(r.Context(), r.URL.Query().Get("refresh") == "true")
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to build inventory", nil)
		return
	}

	w.Header().Set("Last-Modified", builtAt.UTC().Format(http.TimeFormat))
	serializer.Respond(w, http.StatusOK, format, inv)
}

// HandleHost handles GET /v1/inventory/hosts/{name}. Host variables are not
// provided, so the answer is always an empty object.
func (h *InventoryHandler) HandleHost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		server.WriteError(w, r, http.StatusMethodNotAllowed, cmderrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, map[string]any{"method": r.Method})
		return
	}
	if r.PathValue("name") == "" {
		server.WriteError(w, r, http.StatusBadRequest, cmderrors.ErrCodeInvalidRequest,
			"host name is required", false, nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, map[string]any{})
}

// HandleStats handles GET /v1/inventory/stats, reporting the counters of
// the last successful build.
func (h *InventoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	built := h.cached != nil
	resp := struct {
		inventory.Stats `json:",inline" yaml:",inline"`
		BuiltAt         *time.Time `json:"builtAt,omitempty" yaml:"builtAt,omitempty"`
	}{Stats: h.stats}
	if built {
		t := h.builtAt.UTC()
		resp.BuiltAt = &t
	}
	h.mu.RUnlock()

	if !built {
		server.WriteError(w, r, http.StatusNotFound, cmderrors.ErrCodeNotFound,
			"no inventory built yet", true, nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, resp)
}

func negotiateFormat(r *http.Request) (serializer.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		format := serializer.Format(strings.ToLower(f))
		if format.IsUnknown() {
			return "", cmderrors.WrapWithContext(cmderrors.ErrCodeInvalidRequest, "unknown output format", nil,
				map[string]any{"format": f, "supported": serializer.SupportedFormats()})
		}
		return format, nil
	}
	if strings.Contains(r.Header.Get("Accept"), "yaml") {
		return serializer.FormatYAML, nil
	}
	return serializer.FormatJSON, nil
}
