package cmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHostRecord(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		wantName  string
		wantGroup string
	}{
		{
			name:      "plain strings",
			raw:       map[string]any{"name": "web01", "u_patching_group": "webservers", "os": "Linux Red Hat"},
			wantName:  "web01",
			wantGroup: "webservers",
		},
		{
			name:      "missing group",
			raw:       map[string]any{"name": "web02"},
			wantName:  "web02",
			wantGroup: "",
		},
		{
			name:      "null group",
			raw:       map[string]any{"name": "web03", "u_patching_group": nil},
			wantName:  "web03",
			wantGroup: "",
		},
		{
			name: "reference field prefers display value",
			raw: map[string]any{
				"name":             "db01",
				"u_patching_group": map[string]any{"value": "8f2c", "display_value": "dbteam"},
			},
			wantName:  "db01",
			wantGroup: "dbteam",
		},
		{
			name: "reference field falls back to value",
			raw: map[string]any{
				"name":             "db02",
				"u_patching_group": map[string]any{"value": "dbteam", "link": "https://x/api"},
			},
			wantName:  "db02",
			wantGroup: "dbteam",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewHostRecord(tt.raw, "u_patching_group")
			assert.Equal(t, tt.wantName, rec.Name)
			assert.Equal(t, tt.wantGroup, rec.Group)
		})
	}
}

func TestNewHostRecord_AttributesAreCopied(t *testing.T) {
	raw := map[string]any{"name": "web01", "u_patching_group": "webservers", "serial_number": 42}
	rec := NewHostRecord(raw, "u_patching_group")

	raw["name"] = "changed"

	assert.Equal(t, "web01", rec.Attr("name"))
	assert.Equal(t, "42", rec.Attr("serial_number"))
	assert.Empty(t, rec.Attr("absent"))
}

func TestNewHostRecord_CustomGroupField(t *testing.T) {
	raw := map[string]any{"name": "app01", "support_group": "apps", "u_patching_group": "ignored"}
	rec := NewHostRecord(raw, "support_group")
	assert.Equal(t, "apps", rec.Group)
}
