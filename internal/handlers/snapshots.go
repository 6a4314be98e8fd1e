package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"media-stage/internal/aspect"
	"media-stage/internal/snapshots"
)

// SnapshotRequest sets a snapshot either from dimensions or from a ratio.
type SnapshotRequest struct {
	Width  int          `json:"width,omitempty"`
	Height int          `json:"height,omitempty"`
	Ratio  aspect.Ratio `json:"ratio,omitempty"`
}

// GetSnapshot returns the stored snapshot for an attachment.
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeJSONError(w, "Snapshot store unavailable", http.StatusServiceUnavailable)
		return
	}

	entry, err := h.snapshots.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatusCode(w, http.StatusOK, entry)
}

// PutSnapshot records a snapshot supplied by the client. Width and height
// take precedence over an explicit ratio.
func (h *Handlers) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeJSONError(w, "Snapshot store unavailable", http.StatusServiceUnavailable)
		return
	}

	var req SnapshotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry := snapshots.Entry{
		AttachmentID: mux.Vars(r)["id"],
		Ratio:        req.Ratio,
		Width:        req.Width,
		Height:       req.Height,
		Source:       "client",
	}
	if req.Width > 0 && req.Height > 0 {
		entry.Ratio = aspect.FromSize(float64(req.Width), float64(req.Height))
	}

	if err := h.snapshots.Record(r.Context(), entry); err != nil {
		writeError(w, err)
		return
	}

	stored, err := h.snapshots.Get(r.Context(), entry.AttachmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatusCode(w, http.StatusOK, stored)
}

// DeleteSnapshot drops a stored snapshot from memory and the database.
// Committed layouts keep their ratios; only later layout passes see the change.
func (h *Handlers) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeJSONError(w, "Snapshot store unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := h.snapshots.Forget(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
