package defaults

import "time"

// CMDB retrieval defaults.
const (
	// CMDBRequestTimeout bounds the table API request.
	CMDBRequestTimeout = 30 * time.Second

	// MaxHosts is the default sysparm_limit.
	MaxHosts = 15000

	// OSFilter is the default value of the os query term.
	OSFilter = "Linux Red Hat"

	// Table is the CMDB table holding server records.
	Table = "cmdb_ci_server"

	// GroupField is the record attribute used for grouping.
	GroupField = "u_patching_group"
)

// Name resolution defaults.
const (
	// Domain is appended to short hostnames before resolution.
	Domain = "example.com"

	// LookupTimeout bounds a single forward lookup.
	LookupTimeout = 5 * time.Second

	// LookupConcurrency is the number of lookups in flight at once.
	LookupConcurrency = 32

	// LookupRateLimit is the sustained lookups per second; zero disables pacing.
	LookupRateLimit = 200

	// LookupRateBurst is the lookup limiter burst size.
	LookupRateBurst = 50
)

// Inventory service defaults.
const (
	// InventoryCacheTTL is how long a built inventory is served before the
	// next request triggers a rebuild.
	InventoryCacheTTL = 5 * time.Minute

	// InventoryBuildTimeout bounds one fetch and build in server mode.
	InventoryBuildTimeout = 3 * time.Minute

	// ServerPort is the default listen port of the inventory service.
	ServerPort = 8080
)

// AllGroup is the reserved inventory key holding every host.
const AllGroup = "all"

// IgnoreHosts returns the default hostname denylist.
func IgnoreHosts() []string {
	return []string{"drhost01", "backup01"}
}

// IgnoreGroups returns the default group denylist.
func IgnoreGroups() []string {
	return []string{"unix_team", "do_not_patch"}
}
