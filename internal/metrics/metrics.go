package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_stage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Aspect ratio resolution metrics
var (
	RatioResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_ratio_resolutions_total",
			Help: "Aspect ratio resolutions by the precedence tier that produced them",
		},
		[]string{"source"}, // "snapshot", "declared", "url", "default"
	)
)

// Layout metrics
var (
	LayoutPlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_layout_plans_total",
			Help: "Total number of layout plans computed, by variant",
		},
		[]string{"variant"},
	)

	LayoutPlaceholderCellsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_stage_layout_placeholder_cells_total",
			Help: "Total number of cells planned without a resolvable ratio",
		},
	)

	LayoutCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_layout_commits_total",
			Help: "Plan commits by outcome (new, reused, superseded, discarded)",
		},
		[]string{"outcome"},
	)

	LayoutCommittedPlans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_layout_committed_plans",
			Help: "Number of owners with a live committed plan",
		},
	)
)

// Visibility metrics
var (
	VisibilityTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_visibility_transitions_total",
			Help: "Edge-triggered visibility transitions by direction",
		},
		[]string{"direction"}, // "visible", "hidden"
	)

	VisibilityTrackedViews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_visibility_tracked_views",
			Help: "Number of views with a live visibility record",
		},
	)
)

// Presentation metrics
var (
	PresentationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_presentation_transitions_total",
			Help: "Presentation state changes by the phase entered",
		},
		[]string{"phase"},
	)

	PresentationRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_stage_presentation_rejected_total",
			Help: "Present requests rejected because a presentation was already active",
		},
	)

	PresentationActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_presentation_active",
			Help: "Whether a fullscreen presentation is active (1 = active, 0 = closed)",
		},
	)
)

// Snapshot cache metrics
var (
	SnapshotLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_snapshot_lookups_total",
			Help: "Aspect ratio snapshot lookups by tier and result",
		},
		[]string{"tier", "result"}, // tier: "memory", "database"; result: "hit", "miss"
	)

	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_snapshot_writes_total",
			Help: "Snapshot writes by status",
		},
		[]string{"status"},
	)

	SnapshotCacheItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_snapshot_cache_items",
			Help: "Number of snapshots held in the in-memory cache",
		},
	)
)

// Probe metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_probes_total",
			Help: "Decoded media probes by kind and status",
		},
		[]string{"kind", "status"},
	)

	ProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_stage_probe_duration_seconds",
			Help:    "Time spent sniffing and measuring fetched media",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"},
	)

	ProbeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_probe_queue_depth",
			Help: "Number of probe jobs waiting for a worker",
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stage_filesystem_retries_total",
			Help: "Filesystem operations that hit a stale NFS handle, by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "retry", "success", "failure"
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_memory_usage_ratio",
			Help: "Sampled heap size as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_stage_memory_paused",
			Help: "Whether probe workers are held back by memory pressure (1 = paused)",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_stage_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
