package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register adds every API, health and version route to r.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Layout
	api.HandleFunc("/layout/plan", h.PlanLayout).Methods(http.MethodPost)
	api.HandleFunc("/layout/{owner}", h.GetLayout).Methods(http.MethodGet)
	api.HandleFunc("/layout/{owner}", h.RemoveLayout).Methods(http.MethodDelete)

	// Visibility
	api.HandleFunc("/visibility", h.ReportVisibility).Methods(http.MethodPost)

	// Presentation
	api.HandleFunc("/presentation", h.GetPresentation).Methods(http.MethodGet)
	api.HandleFunc("/presentation/present", h.Present).Methods(http.MethodPost)
	api.HandleFunc("/presentation/complete", h.CompleteTransition).Methods(http.MethodPost)
	api.HandleFunc("/presentation/dismiss", h.Dismiss).Methods(http.MethodPost)
	api.HandleFunc("/presentation/advance", h.Advance).Methods(http.MethodPost)

	// Snapshots and probing
	api.HandleFunc("/snapshots/{id}", h.GetSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/snapshots/{id}", h.PutSnapshot).Methods(http.MethodPut)
	api.HandleFunc("/snapshots/{id}", h.DeleteSnapshot).Methods(http.MethodDelete)
	api.HandleFunc("/probe/{id}", h.Probe).Methods(http.MethodPost)
	api.HandleFunc("/placeholder", h.RenderPlaceholder).Methods(http.MethodGet)
}
