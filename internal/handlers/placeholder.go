package handlers

import (
	"net/http"
	"strconv"

	"media-stage/internal/placeholder"
)

// RenderPlaceholder renders a blurhash as a PNG for pending cells.
// Query parameters: hash (required), width, height, punch.
func (h *Handlers) RenderPlaceholder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hash := q.Get("hash")
	if hash == "" {
		writeJSONError(w, "hash is required", http.StatusBadRequest)
		return
	}

	width, height, punch := 32, 32, 1
	for name, dst := range map[string]*int{"width": &width, "height": &height, "punch": &punch} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, name+" must be an integer", http.StatusBadRequest)
			return
		}
		*dst = n
	}

	data, err := placeholder.Render(hash, width, height, punch)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
