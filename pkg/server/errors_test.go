package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestWriteErrorFromErr_InventoryFailures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    cmderrors.ErrorCode
		wantRetry   bool
		wantMessage string
		wantDetails map[string]any
	}{
		{
			name: "cmdb returned bad gateway",
			err: cmderrors.WrapWithContext(cmderrors.CodeFromHTTPStatus(http.StatusBadGateway),
				"cmdb query failed with status 502", nil,
				map[string]any{"request_id": "3f1c", "status": http.StatusBadGateway}),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    cmderrors.ErrCodeUnavailable,
			wantRetry:   true,
			wantMessage: "cmdb query failed with status 502",
			wantDetails: map[string]any{"request_id": "3f1c", "status": float64(http.StatusBadGateway)},
		},
		{
			name: "cmdb rejected credentials",
			err: cmderrors.WrapWithContext(cmderrors.CodeFromHTTPStatus(http.StatusUnauthorized),
				"cmdb query failed with status 401", nil,
				map[string]any{"request_id": "9a2e", "status": http.StatusUnauthorized}),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    cmderrors.ErrCodeUnauthorized,
			wantMessage: "cmdb query failed with status 401",
			wantDetails: map[string]any{"request_id": "9a2e", "status": float64(http.StatusUnauthorized)},
		},
		{
			name: "undecodable cmdb payload",
			err: cmderrors.WrapWithContext(cmderrors.ErrCodeRetrievalFailed, "failed to decode cmdb response",
				errors.New("unexpected EOF"), map[string]any{"request_id": "77b0"}),
			wantStatus:  http.StatusBadGateway,
			wantCode:    cmderrors.ErrCodeRetrievalFailed,
			wantMessage: "failed to decode cmdb response",
			wantDetails: map[string]any{"request_id": "77b0", "error": "unexpected EOF"},
		},
		{
			name:        "hostname resolution interrupted",
			err:         cmderrors.Wrap(cmderrors.ErrCodeTimeout, "hostname resolution interrupted", context.DeadlineExceeded),
			wantStatus:  http.StatusGatewayTimeout,
			wantCode:    cmderrors.ErrCodeTimeout,
			wantRetry:   true,
			wantMessage: "hostname resolution interrupted",
			wantDetails: map[string]any{"error": context.DeadlineExceeded.Error()},
		},
		{
			name:        "wrapped structured error keeps its code",
			err:         fmt.Errorf("refresh: %w", cmderrors.New(cmderrors.ErrCodeRateLimitExceeded, "cmdb rate limited")),
			wantStatus:  http.StatusTooManyRequests,
			wantCode:    cmderrors.ErrCodeRateLimitExceeded,
			wantRetry:   true,
			wantMessage: "cmdb rate limited",
		},
		{
			name:        "plain error becomes internal",
			err:         errors.New("nil inventory"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    cmderrors.ErrCodeInternal,
			wantRetry:   true,
			wantMessage: "failed to build inventory",
			wantDetails: map[string]any{"error": "nil inventory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
			req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-7"))
			w := httptest.NewRecorder()

			WriteErrorFromErr(w, req, tt.err, "failed to build inventory", nil)

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			resp := decodeError(t, w)
			assert.Equal(t, string(tt.wantCode), resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantRetry, resp.Retryable)
			assert.Equal(t, "req-7", resp.RequestID)
			assert.False(t, resp.Timestamp.IsZero())
			if tt.wantDetails == nil {
				assert.Empty(t, resp.Details)
			} else {
				assert.Equal(t, tt.wantDetails, resp.Details)
			}
		})
	}
}

func TestWriteErrorFromErr_CallerDetailsWin(t *testing.T) {
	err := cmderrors.WrapWithContext(cmderrors.ErrCodeUnavailable, "cmdb unreachable", nil,
		map[string]any{"request_id": "upstream-1", "status": 503})

	w := httptest.NewRecorder()
	WriteErrorFromErr(w, httptest.NewRequest(http.MethodGet, "/v1/inventory", nil), err,
		"failed to build inventory", map[string]any{"status": "stale", "route": "/v1/inventory"})

	resp := decodeError(t, w)
	assert.Equal(t, map[string]any{"request_id": "upstream-1", "status": "stale", "route": "/v1/inventory"}, resp.Details)
	assert.NotEmpty(t, resp.RequestID, "a request ID is generated outside the middleware")
}

func TestWriteError_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, httptest.NewRequest(http.MethodDelete, "/v1/inventory", nil), http.StatusMethodNotAllowed,
		cmderrors.ErrCodeMethodNotAllowed, "method not allowed", false, map[string]any{"method": http.MethodDelete})

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "METHOD_NOT_ALLOWED", resp.Code)
	assert.False(t, resp.Retryable)
	assert.Equal(t, http.MethodDelete, resp.Details["method"])
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code cmderrors.ErrorCode
		want int
	}{
		{cmderrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{cmderrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{cmderrors.ErrCodeNotFound, http.StatusNotFound},
		{cmderrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{cmderrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{cmderrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{cmderrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{cmderrors.ErrCodeRetrievalFailed, http.StatusBadGateway},
		{cmderrors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestMergeDetails(t *testing.T) {
	assert.Nil(t, mergeDetails(nil, map[string]any{}))

	a := map[string]any{"request_id": "a"}
	got := mergeDetails(a, map[string]any{"error": "boom"})
	assert.Equal(t, map[string]any{"request_id": "a", "error": "boom"}, got)
	assert.Len(t, a, 1, "inputs are not modified")
}
