// Package main provides the entry point for the media stage server.
//
// The server plans feed layouts for posts with media attachments, tracks
// which cells are on screen to pick a single autoplaying video, and drives
// the hero transition between a feed thumbnail and the fullscreen viewer.
// Measured aspect ratios are persisted in SQLite so a post never shifts
// once its media has been seen.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Reads .env and environment variables
//  2. Snapshot Database: Opens SQLite (the server runs degraded without it)
//  3. Feed Session: Resolver, planner, committed plan store, visibility
//     tracker, autoplay and presentation coordinator
//  4. Probe Pool: Workers that measure uploaded media bytes
//  5. Metrics Collector: Exports component sizes as Prometheus gauges
//  6. HTTP Server Setup: Routes, metrics and logging middleware
//  7. Graceful Shutdown: Handles SIGINT/SIGTERM and stops components in order
//
// # Environment Variables
//
//   - DATABASE_DIR: Directory for the snapshot database (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - SNAPSHOT_CACHE_TTL: In-memory snapshot cache lifetime (default: 30m)
//   - LAYOUT_TTL: How long an untouched post keeps its committed layout (default: 30m)
//   - MAX_SINGLE_HEIGHT, GRID_CELL_SIZE, GRID_SPACING, CORNER_RADIUS: Layout geometry
//   - VISIBILITY_THRESHOLD: Visible fraction for autoplay (default: 0.3)
//   - AUTOPLAY_SETTLE: Scroll settle delay before autoplay (default: 250ms)
//   - TRANSITION_DURATION: Hero transition duration
//   - VIEWER_SIZE: Fullscreen viewer bounds as WIDTHxHEIGHT (default: 390x844)
//   - PROBE_WORKERS: Probe worker count override
//   - METRICS_ENABLED: Serve /metrics (default: true)
//   - LOG_LEVEL, LOG_FORMAT: Logging level and output format
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//
// # Related Packages
//
//   - [media-stage/internal/feed]: Per-post session state
//   - [media-stage/internal/layout]: Planner and committed plan store
//   - [media-stage/internal/presentation]: Presentation state machine
//   - [media-stage/internal/handlers]: HTTP request handlers
//   - [media-stage/internal/snapshots]: Snapshot persistence
//   - [media-stage/cmd/snapshotctl]: Snapshot database CLI
package main
