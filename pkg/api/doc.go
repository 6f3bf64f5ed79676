// Package api serves the patch inventory over HTTP.
//
// Builds are expensive (one CMDB query plus a DNS lookup per host), so the
// last successful inventory is reused until its TTL expires and concurrent
// requests for a stale inventory wait on one shared build.
package api
