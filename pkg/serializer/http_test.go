package serializer

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	if got, want := w.Body.String(), "{\n  \"status\": \"ok\"\n}\n"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestRespond_YAML(t *testing.T) {
	w := httptest.NewRecorder()
	Respond(w, http.StatusOK, FormatYAML, map[string]string{"status": "ok"})

	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("expected application/yaml, got %q", ct)
	}
	if got, want := w.Body.String(), "status: ok\n"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestRespond_EncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}
