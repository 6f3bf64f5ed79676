package server

import (
	stderrors "errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
	"github.com/NVIDIA/patch-inventory/pkg/serializer"
)

// HTTPStatusFromCode maps an error code to the response status.
func HTTPStatusFromCode(code cmderrors.ErrorCode) int {
	switch code {
	case cmderrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case cmderrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case cmderrors.ErrCodeNotFound:
		return http.StatusNotFound
	case cmderrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case cmderrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case cmderrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case cmderrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case cmderrors.ErrCodeRetrievalFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes an ErrorResponse. The request ID is taken from the
// request context when the middleware set one.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code cmderrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr writes err as an ErrorResponse. Structured errors keep
// their code, message and context; anything else becomes INTERNAL with
// fallbackMessage. The cause, if any, is reported under details["error"].
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, details map[string]any) {
	code := cmderrors.ErrCodeInternal
	message := fallbackMessage
	var cause error = err

	var se *cmderrors.StructuredError
	if stderrors.As(err, &se) {
		code = se.Code
		message = se.Message
		details = mergeDetails(se.Context, details)
		cause = se.Cause
	}

	if cause != nil {
		details = mergeDetails(details, map[string]any{"error": cause.Error()})
	}

	WriteError(w, r, HTTPStatusFromCode(code), code, message, cmderrors.Retryable(code), details)
}

// mergeDetails returns a new map with the entries of a then b, or nil when
// both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
