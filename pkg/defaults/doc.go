// Package defaults provides centralized configuration constants for patchinv.
//
// This package defines timeout values, concurrency limits, and the default
// CMDB query and denylist values used across the codebase. Centralizing these
// values ensures consistency and makes tuning easier.
//
// # Timeout Categories
//
//   - CMDB timeouts: For the single table API request that retrieves hosts
//   - Lookup timeouts: For each forward name resolution
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/patch-inventory/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.LookupTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - CMDB request: 30s, matching the upstream table API's typical page latency
//   - Name lookups: 5s each; a timed-out lookup drops only that host
package defaults
