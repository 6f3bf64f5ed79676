package cmdb

import (
	"fmt"
	"maps"
)

// HostRecord is a server record as returned by the CMDB.
// Name and Group are the only attributes the pipeline interprets;
// everything else is carried untouched in Attributes.
type HostRecord struct {
	// Name is the short or fully qualified hostname.
	Name string

	// Group is the value of the configured group attribute, or empty
	// when the record has none.
	Group string

	// Attributes holds every field of the raw record.
	Attributes map[string]any
}

// NewHostRecord builds a HostRecord from a decoded CMDB row.
// A missing group attribute yields an empty Group.
func NewHostRecord(raw map[string]any, groupField string) HostRecord {
	return HostRecord{
		Name:       stringValue(raw["name"]),
		Group:      stringValue(raw[groupField]),
		Attributes: maps.Clone(raw),
	}
}

// Attr returns a passthrough attribute rendered as a string.
func (r HostRecord) Attr(key string) string {
	return stringValue(r.Attributes[key])
}

// stringValue flattens a table API field. Reference fields arrive as
// {"value": ..., "display_value": ...} objects when display values are
// requested; the display value is preferred.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any:
		if dv := stringValue(val["display_value"]); dv != "" {
			return dv
		}
		return stringValue(val["value"])
	default:
		return fmt.Sprint(val)
	}
}
