package inventory

import "github.com/NVIDIA/patch-inventory/pkg/cmdb"

// Grouped maps group names to ordered host lists. Groups are kept in order
// of first appearance.
type Grouped struct {
	order []string
	hosts map[string][]string
}

// NewGrouped returns an empty Grouped.
func NewGrouped() *Grouped {
	return &Grouped{hosts: make(map[string][]string)}
}

// Group partitions records by Group, preserving input order within each
// group. Group names are used verbatim and duplicate hosts are kept.
func Group(records []cmdb.HostRecord) *Grouped {
	g := NewGrouped()
	for _, rec := range records {
		g.Add(rec.Group, rec.Name)
	}
	return g
}

// Add appends host to group, creating the group on first use.
func (g *Grouped) Add(group, host string) {
	if _, ok := g.hosts[group]; !ok {
		g.order = append(g.order, group)
	}
	g.hosts[group] = append(g.hosts[group], host)
}

// Names returns group names in order of first appearance.
func (g *Grouped) Names() []string {
	return append([]string(nil), g.order...)
}

// Hosts returns the hosts of group, or nil if it does not exist.
func (g *Grouped) Hosts(group string) []string {
	return append([]string(nil), g.hosts[group]...)
}

// Len returns the number of groups.
func (g *Grouped) Len() int {
	return len(g.order)
}
