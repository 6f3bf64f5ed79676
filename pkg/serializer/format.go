package serializer

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// SupportedFormats returns the formats a Writer can produce.
func SupportedFormats() []Format {
	return []Format{FormatJSON, FormatYAML}
}

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return false
	default:
		return true
	}
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return string(f)
}
