package handlers

import (
	"net/http"

	"media-stage/internal/geometry"
	"media-stage/internal/visibility"
)

// VisibilityRequest reports where a post's container sits on screen.
type VisibilityRequest struct {
	Owner     string        `json:"owner"`
	Container geometry.Rect `json:"container"`
	Viewport  geometry.Rect `json:"viewport"`
	// Settle evaluates autoplay immediately instead of after the debounce.
	Settle bool `json:"settle,omitempty"`
}

// VisibilityResponse carries the post's cell records and which of its
// attachments should play.
type VisibilityResponse struct {
	Records []visibility.Record `json:"records"`
	Playing []string            `json:"playing"`
}

// ReportVisibility updates visibility for every cell of a post.
func (h *Handlers) ReportVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	records, err := h.session.ReportFrame(req.Owner, req.Container, req.Viewport)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Settle {
		h.session.SettleNow()
	}

	resp := VisibilityResponse{Records: records, Playing: []string{}}
	if plan, ok := h.session.Plan(req.Owner); ok {
		for _, c := range plan.Cells {
			if h.session.Playing(req.Owner, c.AttachmentID) {
				resp.Playing = append(resp.Playing, c.AttachmentID)
			}
		}
	}
	writeJSONStatusCode(w, http.StatusOK, resp)
}
