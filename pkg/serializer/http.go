package serializer

import (
	"log/slog"
	"net/http"
)

// ContentType returns the MIME type of format.
func ContentType(format Format) string {
	if format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Respond writes data encoded in format with the given status code.
// It encodes before writing headers to prevent partial responses.
func Respond(w http.ResponseWriter, statusCode int, format Format, data any) {
	body, err := Encode(format, data)
	if err != nil {
		slog.Error("response encoding failed", "format", format, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType(format))
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		// Connection is broken, log but can't recover
		slog.Warn("response write failed", "error", err)
	}
}

// RespondJSON writes a JSON response with the given status code and data.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	Respond(w, statusCode, FormatJSON, data)
}
