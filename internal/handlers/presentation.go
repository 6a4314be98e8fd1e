package handlers

import (
	"net/http"

	"media-stage/internal/geometry"
	"media-stage/internal/presentation"
)

// PresentRequest taps a thumbnail.
type PresentRequest struct {
	Owner        string         `json:"owner"`
	AttachmentID string         `json:"attachmentId"`
	Viewer       *geometry.Rect `json:"viewer,omitempty"`
}

// TransitionRequest names an in-flight transition.
type TransitionRequest struct {
	TransitionID string `json:"transitionId"`
}

// AdvanceRequest pages the presented set.
type AdvanceRequest struct {
	AttachmentID string `json:"attachmentId"`
}

// TransitionResponse is returned by present and dismiss.
type TransitionResponse struct {
	Transition *presentation.Transition `json:"transition,omitempty"`
	State      presentation.State       `json:"state"`
}

// GetPresentation returns the coordinator state.
func (h *Handlers) GetPresentation(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatusCode(w, http.StatusOK, h.session.Coordinator().State())
}

// Present starts a hero transition from a feed thumbnail.
func (h *Handlers) Present(w http.ResponseWriter, r *http.Request) {
	var req PresentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Owner == "" || req.AttachmentID == "" {
		writeJSONError(w, "Owner and attachmentId are required", http.StatusBadRequest)
		return
	}

	var opts []presentation.PresentOption
	if req.Viewer != nil {
		opts = append(opts, presentation.WithViewerBounds(*req.Viewer))
	}

	tr, err := h.session.Tap(req.Owner, req.AttachmentID, opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatusCode(w, http.StatusOK, TransitionResponse{Transition: &tr, State: h.session.Coordinator().State()})
}

// CompleteTransition reports that the renderer finished an animation.
func (h *Handlers) CompleteTransition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coordinator := h.session.Coordinator()
	if err := coordinator.Complete(req.TransitionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatusCode(w, http.StatusOK, coordinator.State())
}

// Dismiss starts returning the presented media to its thumbnail. Dismissing
// while nothing is presented is a no-op and answers with the current state.
func (h *Handlers) Dismiss(w http.ResponseWriter, _ *http.Request) {
	coordinator := h.session.Coordinator()
	tr, ok := coordinator.Dismiss()

	resp := TransitionResponse{State: coordinator.State()}
	if ok && tr.ID != "" {
		resp.Transition = &tr
	}
	writeJSONStatusCode(w, http.StatusOK, resp)
}

// Advance pages to another attachment of the presented set.
func (h *Handlers) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coordinator := h.session.Coordinator()
	if err := coordinator.Advance(req.AttachmentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatusCode(w, http.StatusOK, coordinator.State())
}
