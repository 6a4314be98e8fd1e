package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-stage/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Component state
	SnapshotsEnabled bool   `json:"snapshotsEnabled"`
	ProbeEnabled     bool   `json:"probeEnabled"`
	CommittedPlans   int    `json:"committedPlans"`
	TrackedViews     int    `json:"trackedViews"`
	Presentation     string `json:"presentation"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The service is
// degraded, not down, when the snapshot store is unavailable: layout still
// works from declared dimensions and URL hints.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	plans, views := h.session.Stats()

	response := HealthResponse{
		Status:           statusHealthy,
		Version:          startup.Version,
		Uptime:           time.Since(h.started).Round(time.Second).String(),
		SnapshotsEnabled: h.snapshots != nil,
		ProbeEnabled:     h.prober != nil,
		CommittedPlans:   plans,
		TrackedViews:     views,
		Presentation:     string(h.session.Coordinator().State().Phase),
		GoVersion:        runtime.Version(),
		NumCPU:           runtime.NumCPU(),
		NumGoroutine:     runtime.NumGoroutine(),
	}
	if h.snapshots == nil {
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSON(w, response)
	}
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}
