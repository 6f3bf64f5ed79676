package inventory

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
)

// Reason explains why a record was ignored.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonIgnoredHost  Reason = "ignored-host"
	ReasonIgnoredGroup Reason = "ignored-group"
	ReasonMissingGroup Reason = "missing-group"
)

// FilterConfig holds the denylists applied by a Filter.
type FilterConfig struct {
	IgnoreHosts  []string `yaml:"ignoreHosts" json:"ignoreHosts"`
	IgnoreGroups []string `yaml:"ignoreGroups" json:"ignoreGroups"`
}

// Filter decides whether a record is eligible for the inventory.
// It is safe for concurrent use.
type Filter struct {
	hosts  map[string]struct{}
	groups map[string]struct{}
	// groupList keeps configuration order for NearMiss.
	groupList []string
}

// NewFilter returns a Filter for the given denylists. Entries are
// lower-cased once here; blank entries are skipped.
func NewFilter(cfg FilterConfig) *Filter {
	f := &Filter{
		hosts:  make(map[string]struct{}, len(cfg.IgnoreHosts)),
		groups: make(map[string]struct{}, len(cfg.IgnoreGroups)),
	}
	for _, h := range cfg.IgnoreHosts {
		if h = strings.TrimSpace(h); h != "" {
			f.hosts[lower(h)] = struct{}{}
		}
	}
	for _, g := range cfg.IgnoreGroups {
		if g = strings.TrimSpace(g); g == "" {
			continue
		}
		key := lower(g)
		if _, dup := f.groups[key]; !dup {
			f.groups[key] = struct{}{}
			f.groupList = append(f.groupList, key)
		}
	}
	return f
}

// Ignore reports whether rec must be left out of the inventory and why.
// A denylisted hostname takes precedence over a denylisted group, which
// takes precedence over a missing group.
func (f *Filter) Ignore(rec cmdb.HostRecord) (bool, Reason) {
	if _, ok := f.hosts[lower(rec.Name)]; ok {
		return true, ReasonIgnoredHost
	}
	group := lower(rec.Group)
	if _, ok := f.groups[group]; ok {
		return true, ReasonIgnoredGroup
	}
	if group == "" {
		return true, ReasonMissingGroup
	}
	return false, ReasonNone
}

// NearMiss returns a denylisted group one edit away from group, such as
// "unix-team" for "unix_team". It is a diagnostic hint only and never
// affects the Ignore verdict.
func (f *Filter) NearMiss(group string) (string, bool) {
	g := lower(group)
	if g == "" {
		return "", false
	}
	for _, candidate := range f.groupList {
		if levenshtein.ComputeDistance(g, candidate) == 1 {
			return candidate, true
		}
	}
	return "", false
}

// lower applies Unicode lower-casing. A Caser holds state, so one is
// created per call.
func lower(s string) string {
	if s == "" {
		return s
	}
	return cases.Lower(language.Und).String(s)
}
