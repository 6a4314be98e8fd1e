// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] loads an optional .env file from the working directory and
// then reads these environment variables:
//
//   - DATABASE_DIR: Directory holding snapshots.db (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - SNAPSHOT_CACHE_TTL: In-memory snapshot lifetime (default: 30m)
//   - LAYOUT_TTL: Inactivity before a post's committed plan is dropped (default: 30m)
//   - MAX_SINGLE_HEIGHT: Height cap of a single attachment (default: 400)
//   - GRID_CELL_SIZE: Edge of a square grid cell (default: 160)
//   - GRID_SPACING: Gap between grid cells (default: 4)
//   - CORNER_RADIUS: Cell corner radius (default: 8)
//   - VISIBILITY_THRESHOLD: Visible fraction for autoplay, in (0, 1] (default: 0.3)
//   - AUTOPLAY_SETTLE: Scroll quiet time before autoplay re-selects (default: 250ms)
//   - TRANSITION_DURATION: Hero transition length (default: 350ms)
//   - VIEWER_SIZE: Fullscreen viewer size as WIDTHxHEIGHT (default: 390x844)
//   - PROBE_WORKERS: Probe worker override (default: derived from GOMAXPROCS)
//   - METRICS_ENABLED: Serve /metrics (default: true)
//   - LOG_LEVEL, LOG_FORMAT: See the logging package
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//
// Invalid values are logged at WARN and replaced by the default.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
package startup
