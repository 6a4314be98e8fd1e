package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"media-stage/internal/layout"
	"media-stage/internal/mediatypes"
)

// PlanRequest asks for the layout of one post.
type PlanRequest struct {
	Owner          string                  `json:"owner"`
	Attachments    []mediatypes.Attachment `json:"attachments"`
	ContainerWidth float64                 `json:"containerWidth"`
}

// PlanLayout renders a post and returns its render-ready view. A render
// overtaken by a newer one for the same post answers 409 with the
// committed view.
func (h *Handlers) PlanLayout(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Owner == "" {
		writeJSONError(w, "Owner is required", http.StatusBadRequest)
		return
	}
	for _, att := range req.Attachments {
		if att.ID == "" {
			writeJSONError(w, "Every attachment needs an id", http.StatusBadRequest)
			return
		}
	}

	_, err := h.session.Render(req.Owner, req.Attachments, req.ContainerWidth)
	if err != nil && !errors.Is(err, layout.ErrSuperseded) {
		writeError(w, err)
		return
	}

	view, viewErr := h.session.View(req.Owner)
	if viewErr != nil {
		writeError(w, viewErr)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusConflict
	}
	writeJSONStatusCode(w, status, view)
}

// GetLayout returns the current view of a rendered post.
func (h *Handlers) GetLayout(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.View(mux.Vars(r)["owner"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatusCode(w, http.StatusOK, view)
}

// RemoveLayout forgets a post that left the feed.
func (h *Handlers) RemoveLayout(w http.ResponseWriter, r *http.Request) {
	h.session.Remove(mux.Vars(r)["owner"])
	w.WriteHeader(http.StatusNoContent)
}
