// Package metrics provides Prometheus instrumentation for media-stage.
//
// All metrics are prefixed with "media_stage_" to avoid naming collisions
// with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Resolution and Layout Metrics
//
//   - RatioResolutionsTotal: Counter by the precedence tier that produced the ratio
//   - LayoutPlansTotal: Counter of computed plans by variant
//   - LayoutPlaceholderCellsTotal: Counter of cells planned without a ratio
//   - LayoutCommitsTotal: Counter of committed-plan outcomes
//   - LayoutCommittedPlans: Gauge of owners with a live plan
//
// ## Visibility and Presentation Metrics
//
//   - VisibilityTransitionsTotal: Counter of edge-triggered transitions by direction
//   - VisibilityTrackedViews: Gauge of tracked views
//   - PresentationTransitionsTotal: Counter of phases entered
//   - PresentationRejectedTotal: Counter of presents rejected while active
//   - PresentationActive: 1 while a presentation is not closed
//
// ## Snapshot and Probe Metrics
//
//   - SnapshotLookupsTotal: Counter by tier (memory, database) and result
//   - SnapshotWritesTotal: Counter of writes by status
//   - SnapshotCacheItems: Gauge of in-memory snapshots
//   - ProbesTotal: Counter by media kind and status
//   - ProbeDuration: Histogram of probe time by kind
//   - ProbeQueueDepth: Gauge of queued probe jobs
//   - MemoryUsageRatio, MemoryPaused: Heap pressure seen by the probe gate
//   - FilesystemRetriesTotal: Stale NFS handle retries by operation and outcome
//
// # Observers
//
// Components never import this package. Each declares a small Observer
// interface and Observers implements all of them:
//
//	obs := metrics.NewObservers()
//	planner := layout.NewPlanner(cfg, obs)
//	tracker := visibility.NewTracker(threshold, obs)
//
// Gauges that reflect component sizes are refreshed by a Collector from a
// StatsProvider.
//
// # Usage
//
//	router.Handle("/metrics", promhttp.Handler())
//
//	metrics.InitializeMetrics()
//	metrics.AppInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
package metrics
