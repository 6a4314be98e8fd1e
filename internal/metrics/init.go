package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, source := range []string{"snapshot", "declared", "url", "default"} {
		RatioResolutionsTotal.WithLabelValues(source)
	}

	for _, variant := range []string{"empty", "single", "grid", "grid-overflow"} {
		LayoutPlansTotal.WithLabelValues(variant)
	}

	for _, outcome := range []string{"new", "reused", "superseded", "discarded"} {
		LayoutCommitsTotal.WithLabelValues(outcome)
	}

	for _, direction := range []string{"visible", "hidden"} {
		VisibilityTransitionsTotal.WithLabelValues(direction)
	}

	for _, phase := range []string{"closed", "presenting", "presented", "dismissing"} {
		PresentationTransitionsTotal.WithLabelValues(phase)
	}

	for _, tier := range []string{"memory", "database"} {
		SnapshotLookupsTotal.WithLabelValues(tier, "hit")
		SnapshotLookupsTotal.WithLabelValues(tier, "miss")
	}
	SnapshotWritesTotal.WithLabelValues("success")
	SnapshotWritesTotal.WithLabelValues("error")

	for _, kind := range []string{"image", "video", "animated-image", "unknown"} {
		ProbeDuration.WithLabelValues(kind)
		for _, status := range []string{"success", "error", "unsupported"} {
			ProbesTotal.WithLabelValues(kind, status)
		}
	}

	for _, operation := range []string{"stat", "write"} {
		for _, outcome := range []string{"retry", "success", "failure"} {
			FilesystemRetriesTotal.WithLabelValues(operation, outcome)
		}
	}
}
