package inventory

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/patch-inventory/pkg/defaults"
)

// hostList is the per-group document body.
type hostList struct {
	Hosts []string `json:"hosts" yaml:"hosts"`
}

type groupEntry struct {
	name  string
	hosts []string
}

// Inventory is the final inventory document.
type Inventory struct {
	all    []string
	groups []groupEntry
}

// Assemble builds the inventory document from grouped hosts. The synthetic
// "all" group is the concatenation of every group's hosts in group order,
// duplicates included. A real group named "all" is merged into it.
func Assemble(g *Grouped) *Inventory {
	inv := &Inventory{all: []string{}}
	for _, name := range g.order {
		hosts := g.hosts[name]
		inv.all = append(inv.all, hosts...)
		if name == defaults.AllGroup {
			slog.Debug("cmdb group collides with reserved inventory group, merging hosts",
				slog.String("group", name),
				slog.Int("hosts", len(hosts)),
			)
			continue
		}
		inv.groups = append(inv.groups, groupEntry{
			name:  name,
			hosts: append([]string(nil), hosts...),
		})
	}
	return inv
}

// All returns every host in the inventory.
func (inv *Inventory) All() []string {
	return append([]string{}, inv.all...)
}

// Groups returns the names of the real groups in document order,
// excluding "all".
func (inv *Inventory) Groups() []string {
	names := make([]string, 0, len(inv.groups))
	for _, e := range inv.groups {
		names = append(names, e.name)
	}
	return names
}

// Hosts returns the hosts of the named group. "all" returns All.
func (inv *Inventory) Hosts(group string) []string {
	if group == defaults.AllGroup {
		return inv.All()
	}
	for _, e := range inv.groups {
		if e.name == group {
			return append([]string{}, e.hosts...)
		}
	}
	return nil
}

// entries returns the document in output order with non-nil host lists.
func (inv *Inventory) entries() []groupEntry {
	out := make([]groupEntry, 0, len(inv.groups)+1)
	out = append(out, groupEntry{name: defaults.AllGroup, hosts: inv.all})
	out = append(out, inv.groups...)
	for i := range out {
		if out[i].hosts == nil {
			out[i].hosts = []string{}
		}
	}
	return out
}

// MarshalJSON writes groups in document order; encoding/json would sort
// map keys.
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range inv.entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(hostList{Hosts: e.hosts})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML returns an ordered mapping node.
func (inv *Inventory) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range inv.entries() {
		var body yaml.Node
		if err := body.Encode(hostList{Hosts: e.hosts}); err != nil {
			return nil, err
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.name},
			&body,
		)
	}
	return root, nil
}
