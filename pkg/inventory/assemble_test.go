package inventory

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func groupedOf(pairs ...string) *Grouped {
	g := NewGrouped()
	for i := 0; i+1 < len(pairs); i += 2 {
		g.Add(pairs[i], pairs[i+1])
	}
	return g
}

func TestAssemble(t *testing.T) {
	inv := Assemble(groupedOf(
		"webservers", "web01",
		"dbteam", "db01",
		"webservers", "web02",
	))

	assert.Equal(t, []string{"webservers", "dbteam"}, inv.Groups())
	assert.Equal(t, []string{"web01", "web02", "db01"}, inv.All(), "all follows group iteration order")
	assert.Equal(t, []string{"web01", "web02"}, inv.Hosts("webservers"))
	assert.Equal(t, inv.All(), inv.Hosts("all"))
	assert.Nil(t, inv.Hosts("missing"))
}

func TestAssemble_AllCountsEveryOccurrence(t *testing.T) {
	inv := Assemble(groupedOf(
		"a", "h1",
		"a", "h1",
		"b", "h2",
		"c", "h3",
	))

	total := 0
	for _, name := range inv.Groups() {
		total += len(inv.Hosts(name))
	}
	assert.Equal(t, total, len(inv.All()))
}

func TestAssemble_ReservedGroupMerged(t *testing.T) {
	inv := Assemble(groupedOf(
		"webservers", "web01",
		"all", "misc01",
	))

	assert.Equal(t, []string{"webservers"}, inv.Groups())
	assert.Equal(t, []string{"web01", "misc01"}, inv.All())
}

func TestAssemble_ReservedGroupLoggedOnlyAtDebug(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name    string
		level   slog.Level
		wantLog bool
	}{
		{"default level is quiet", slog.LevelWarn, false},
		{"debug level reports collision", slog.LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.level})))

			Assemble(groupedOf("all", "web01", "dbteam", "db01"))

			if tt.wantLog {
				assert.Contains(t, buf.String(), "reserved inventory group")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestInventory_MarshalJSON(t *testing.T) {
	inv := Assemble(groupedOf(
		"webservers", "web01",
		"dbteam", "db01",
	))

	out, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.Equal(t,
		`{"all":{"hosts":["web01","db01"]},"webservers":{"hosts":["web01"]},"dbteam":{"hosts":["db01"]}}`,
		string(out))
}

func TestInventory_MarshalJSONEmpty(t *testing.T) {
	out, err := json.Marshal(Assemble(NewGrouped()))
	require.NoError(t, err)
	assert.Equal(t, `{"all":{"hosts":[]}}`, string(out))
}

func TestInventory_MarshalJSONEscapesNames(t *testing.T) {
	out, err := json.Marshal(Assemble(groupedOf(`team "a"`, "h1")))
	require.NoError(t, err)

	var doc map[string]map[string][]string
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, []string{"h1"}, doc[`team "a"`]["hosts"])
}

func TestInventory_MarshalYAML(t *testing.T) {
	inv := Assemble(groupedOf(
		"webservers", "web01",
		"dbteam", "db01",
	))

	out, err := yaml.Marshal(inv)
	require.NoError(t, err)

	want := `all:
    hosts:
        - web01
        - db01
webservers:
    hosts:
        - web01
dbteam:
    hosts:
        - db01
`
	assert.Equal(t, want, string(out))
}
