package inventory

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/NVIDIA/patch-inventory/pkg/defaults"
)

// ResolutionResult is the verdict of a single hostname lookup.
type ResolutionResult struct {
	// Hostname is the name that was looked up, qualified with the
	// default domain when the input had none.
	Hostname string `json:"hostname" yaml:"hostname"`

	// Address is the first resolved address, IPv4 preferred.
	// It is empty when Valid is false.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// Valid reports whether the lookup succeeded.
	Valid bool `json:"valid" yaml:"valid"`
}

// LookupFunc performs a forward lookup of host.
type LookupFunc func(ctx context.Context, host string) ([]net.IPAddr, error)

// HostResolver validates hostnames.
type HostResolver interface {
	Resolve(ctx context.Context, hostname string) ResolutionResult
}

// Resolver validates hostnames by forward name resolution.
type Resolver struct {
	domain  string
	timeout time.Duration
	lookup  LookupFunc
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookupFunc replaces the lookup implementation.
func WithLookupFunc(fn LookupFunc) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.lookup = fn
		}
	}
}

// WithNetResolver performs lookups through nr, for example one pinned to a
// specific DNS server.
func WithNetResolver(nr *net.Resolver) ResolverOption {
	return func(r *Resolver) {
		if nr != nil {
			r.lookup = nr.LookupIPAddr
		}
	}
}

// NewResolver returns a Resolver that appends domain to unqualified names
// and bounds every lookup by timeout. A non-positive timeout selects
// defaults.LookupTimeout.
func NewResolver(domain string, timeout time.Duration, opts ...ResolverOption) *Resolver {
	if timeout <= 0 {
		timeout = defaults.LookupTimeout
	}
	r := &Resolver{
		domain:  strings.Trim(domain, "."),
		timeout: timeout,
		lookup:  net.DefaultResolver.LookupIPAddr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Qualify appends the default domain to a name without a dot.
func (r *Resolver) Qualify(hostname string) string {
	if hostname == "" || r.domain == "" || strings.Contains(hostname, ".") {
		return hostname
	}
	return hostname + "." + r.domain
}

// Resolve looks up hostname. Failures of any kind, including timeouts,
// yield Valid=false; they are never returned as errors.
func (r *Resolver) Resolve(ctx context.Context, hostname string) ResolutionResult {
	qualified := r.Qualify(strings.TrimSpace(hostname))
	res := ResolutionResult{Hostname: qualified}
	if qualified == "" {
		return res
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := r.lookup(ctx, qualified)
	lookupDuration.Observe(time.Since(start).Seconds())
	if err != nil || len(addrs) == 0 {
		lookupTotal.WithLabelValues("failure").Inc()
		return res
	}

	lookupTotal.WithLabelValues("success").Inc()
	res.Address = pickAddress(addrs)
	res.Valid = true
	return res
}

// pickAddress prefers the first IPv4 address.
func pickAddress(addrs []net.IPAddr) string {
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP.String()
		}
	}
	return addrs[0].IP.String()
}
