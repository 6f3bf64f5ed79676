package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
)

func TestGroup(t *testing.T) {
	records := []cmdb.HostRecord{
		{Name: "web01", Group: "webservers"},
		{Name: "db01", Group: "dbteam"},
		{Name: "web02", Group: "webservers"},
		{Name: "web01", Group: "webservers"},
		{Name: "web03", Group: "WebServers"},
	}

	g := Group(records)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"webservers", "dbteam", "WebServers"}, g.Names())
	assert.Equal(t, []string{"web01", "web02", "web01"}, g.Hosts("webservers"), "order kept, duplicates passed through")
	assert.Equal(t, []string{"db01"}, g.Hosts("dbteam"))
	assert.Equal(t, []string{"web03"}, g.Hosts("WebServers"), "group key is case sensitive")
	assert.Nil(t, g.Hosts("missing"))
}

func TestGroup_Empty(t *testing.T) {
	g := Group(nil)
	assert.Zero(t, g.Len())
	assert.Empty(t, g.Names())
}

func TestGrouped_ReturnsCopies(t *testing.T) {
	g := NewGrouped()
	g.Add("webservers", "web01")

	hosts := g.Hosts("webservers")
	hosts[0] = "mutated"
	names := g.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"web01"}, g.Hosts("webservers"))
	assert.Equal(t, []string{"webservers"}, g.Names())
}
