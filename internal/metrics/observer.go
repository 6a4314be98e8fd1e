package metrics

import (
	"errors"

	"media-stage/internal/aspect"
	"media-stage/internal/filesystem"
	"media-stage/internal/layout"
	"media-stage/internal/mediatypes"
	"media-stage/internal/memory"
	"media-stage/internal/presentation"
	"media-stage/internal/probe"
	"media-stage/internal/snapshots"
	"media-stage/internal/visibility"
)

// Observers bundles the Prometheus-backed observer for every component.
// A single value satisfies all of the component Observer interfaces.
type Observers struct{}

// NewObservers returns the observer set that records into the metrics
// declared in metrics.go.
func NewObservers() *Observers {
	return &Observers{}
}

var (
	_ aspect.Observer       = (*Observers)(nil)
	_ layout.Observer       = (*Observers)(nil)
	_ layout.StoreObserver  = (*Observers)(nil)
	_ visibility.Observer   = (*Observers)(nil)
	_ presentation.Observer = (*Observers)(nil)
	_ snapshots.Observer    = (*Observers)(nil)
	_ probe.Observer        = (*Observers)(nil)
	_ probe.QueueObserver   = (*Observers)(nil)
	_ memory.Observer       = (*Observers)(nil)
	_ filesystem.Observer   = (*Observers)(nil)
)

func (o *Observers) ObserveResolution(source aspect.Source) {
	RatioResolutionsTotal.WithLabelValues(string(source)).Inc()
}

func (o *Observers) ObservePlan(variant layout.Variant, _, placeholders int) {
	LayoutPlansTotal.WithLabelValues(string(variant)).Inc()
	if placeholders > 0 {
		LayoutPlaceholderCellsTotal.Add(float64(placeholders))
	}
}

func (o *Observers) ObserveCommit(outcome layout.CommitOutcome) {
	LayoutCommitsTotal.WithLabelValues(string(outcome)).Inc()
}

func (o *Observers) ObserveTransition(visible bool) {
	direction := "hidden"
	if visible {
		direction = "visible"
	}
	VisibilityTransitionsTotal.WithLabelValues(direction).Inc()
}

func (o *Observers) ObservePhase(phase presentation.Phase) {
	PresentationTransitionsTotal.WithLabelValues(string(phase)).Inc()
	if phase == presentation.PhaseClosed {
		PresentationActive.Set(0)
	} else {
		PresentationActive.Set(1)
	}
}

func (o *Observers) ObserveRejectedPresent() {
	PresentationRejectedTotal.Inc()
}

func (o *Observers) ObserveLookup(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	SnapshotLookupsTotal.WithLabelValues(tier, result).Inc()
}

func (o *Observers) ObserveWrite(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SnapshotWritesTotal.WithLabelValues(status).Inc()
}

func (o *Observers) ObserveProbe(kind mediatypes.Kind, durationSeconds float64, err error) {
	status := "success"
	switch {
	case errors.Is(err, probe.ErrUnsupported):
		status = "unsupported"
	case err != nil:
		status = "error"
	}
	ProbesTotal.WithLabelValues(string(kind), status).Inc()
	ProbeDuration.WithLabelValues(string(kind)).Observe(durationSeconds)
}

func (o *Observers) ObserveQueueDepth(depth int) {
	ProbeQueueDepth.Set(float64(depth))
}

func (o *Observers) ObserveMemory(usage float64, paused bool) {
	MemoryUsageRatio.Set(usage)
	if paused {
		MemoryPaused.Set(1)
	} else {
		MemoryPaused.Set(0)
	}
}

func (o *Observers) ObserveRetry(operation, outcome string) {
	FilesystemRetriesTotal.WithLabelValues(operation, outcome).Inc()
}
