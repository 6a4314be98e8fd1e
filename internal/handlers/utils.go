package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-stage/internal/feed"
	"media-stage/internal/layout"
	"media-stage/internal/logging"
	"media-stage/internal/presentation"
	"media-stage/internal/snapshots"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatusCode writes v as JSON with the given status code.
func writeJSONStatusCode(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatusCode(w, statusCode, map[string]string{"error": message})
}

// decodeJSON decodes the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, feed.ErrUnknownOwner),
		errors.Is(err, feed.ErrUnknownAttachment),
		errors.Is(err, snapshots.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, presentation.ErrMediaNotInSet),
		errors.Is(err, snapshots.ErrInvalidRatio):
		return http.StatusBadRequest
	case errors.Is(err, presentation.ErrAlreadyPresenting),
		errors.Is(err, presentation.ErrNotPresented),
		errors.Is(err, presentation.ErrStaleTransition),
		errors.Is(err, layout.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with the status code it maps to. Internal errors
// are logged and hidden from the client.
func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logging.Error("request failed: %v", err)
		writeJSONError(w, "Internal server error", code)
		return
	}
	writeJSONError(w, err.Error(), code)
}
