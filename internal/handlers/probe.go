package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"media-stage/internal/probe"
)

// ProbeResponse reports the outcome of probing uploaded bytes.
type ProbeResponse struct {
	probe.Result
	Error string `json:"error,omitempty"`
}

// Probe measures the uploaded media bytes for an attachment, records the
// measured snapshot and marks the attachment's cells as loaded or failed.
// With ?async=true the bytes are queued on the worker pool and the result
// is applied to the session when a worker finishes. Content that cannot be
// sniffed is named by the extension of the attachment's URL.
func (h *Handlers) Probe(w http.ResponseWriter, r *http.Request) {
	if h.prober == nil {
		writeJSONError(w, "Probing unavailable", http.StatusServiceUnavailable)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProbeBytes))
	if err != nil {
		writeJSONError(w, "Request body too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}

	id := mux.Vars(r)["id"]
	job := probe.Job{AttachmentID: id, Data: data}
	if att, ok := h.session.Attachment(id); ok {
		job.URL = att.URL
	}

	if h.pool != nil && r.URL.Query().Get("async") == "true" {
		if err := h.pool.Submit(r.Context(), job); err != nil {
			writeJSONError(w, "Probe queue unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSONStatusCode(w, http.StatusAccepted, map[string]string{"attachmentId": id, "status": "queued"})
		return
	}

	res := h.prober.Probe(r.Context(), job)
	h.session.DecodeCompleted(res)

	resp := ProbeResponse{Result: res}
	status := http.StatusOK
	if res.Err != nil {
		resp.Error = res.Err.Error()
		status = http.StatusUnprocessableEntity
	}
	writeJSONStatusCode(w, status, resp)
}
