package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"media-stage/internal/filesystem"
	"media-stage/internal/geometry"
	"media-stage/internal/layout"
	"media-stage/internal/logging"
	"media-stage/internal/presentation"
	"media-stage/internal/visibility"
	"media-stage/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	DatabaseDir      string
	Port             string
	SnapshotCacheTTL time.Duration
	LayoutTTL        time.Duration
	LogHealthChecks  bool
	MetricsEnabled   bool

	Layout              layout.Config
	VisibilityThreshold float64
	AutoplaySettle      time.Duration
	TransitionDuration  time.Duration
	ViewerBounds        geometry.Rect
	ProbeWorkers        int

	// Derived paths
	DatabasePath string
}

// LoadConfig loads an optional .env file, then reads and validates
// configuration from environment variables. Invalid values fall back to
// their defaults with a warning.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	def := layout.DefaultConfig()
	config := &Config{
		DatabaseDir:      getEnv("DATABASE_DIR", "/database"),
		Port:             getEnv("PORT", "8080"),
		SnapshotCacheTTL: getEnvDuration("SNAPSHOT_CACHE_TTL", 30*time.Minute),
		LayoutTTL:        getEnvDuration("LAYOUT_TTL", 30*time.Minute),
		LogHealthChecks:  getEnvBool("LOG_HEALTH_CHECKS", false),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		Layout: layout.Config{
			MaxSingleHeight: getEnvFloat("MAX_SINGLE_HEIGHT", def.MaxSingleHeight, false),
			GridCellSize:    getEnvFloat("GRID_CELL_SIZE", def.GridCellSize, false),
			GridSpacing:     getEnvFloat("GRID_SPACING", def.GridSpacing, true),
			CornerRadius:    getEnvFloat("CORNER_RADIUS", def.CornerRadius, true),
		},
		VisibilityThreshold: getEnvThreshold("VISIBILITY_THRESHOLD", visibility.DefaultThreshold),
		AutoplaySettle:      getEnvDuration("AUTOPLAY_SETTLE", visibility.DefaultSettleDelay),
		TransitionDuration:  getEnvDuration("TRANSITION_DURATION", presentation.DefaultDuration),
		ViewerBounds:        getEnvSize("VIEWER_SIZE", geometry.Rect{Width: 390, Height: 844}),
		ProbeWorkers:        workers.ForProbes(0),
	}

	logging.Info("  DATABASE_DIR:         %s", config.DatabaseDir)
	logging.Info("  PORT:                 %s", config.Port)
	logging.Info("  SNAPSHOT_CACHE_TTL:   %s", config.SnapshotCacheTTL)
	logging.Info("  LAYOUT_TTL:           %s", config.LayoutTTL)
	logging.Info("  MAX_SINGLE_HEIGHT:    %g", config.Layout.MaxSingleHeight)
	logging.Info("  GRID_CELL_SIZE:       %g", config.Layout.GridCellSize)
	logging.Info("  GRID_SPACING:         %g", config.Layout.GridSpacing)
	logging.Info("  CORNER_RADIUS:        %g", config.Layout.CornerRadius)
	logging.Info("  VISIBILITY_THRESHOLD: %g", config.VisibilityThreshold)
	logging.Info("  AUTOPLAY_SETTLE:      %s", config.AutoplaySettle)
	logging.Info("  TRANSITION_DURATION:  %s", config.TransitionDuration)
	logging.Info("  VIEWER_SIZE:          %gx%g", config.ViewerBounds.Width, config.ViewerBounds.Height)
	logging.Info("  %s:        %d", workers.EnvOverride, config.ProbeWorkers)
	logging.Info("  METRICS_ENABLED:      %v", config.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:    %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	databaseDir, err := filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	config.DatabaseDir = databaseDir
	config.DatabasePath = filepath.Join(databaseDir, "snapshots.db")
	logging.Info("  Database directory (absolute): %s", databaseDir)

	if err := ensureDirectory(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for snapshots): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	return config, nil
}

// LogDatabaseInit logs snapshot database initialization
func LogDatabaseInit(path string, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SNAPSHOT DATABASE")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] %s opened in %v", path, duration)
}

// LogProbeInit logs probe pool initialization
func LogProbeInit(workerCount int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PROBE WORKERS")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Workers: %d (GOMAXPROCS=%d)", workerCount, runtime.GOMAXPROCS(0))
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes, grouped by API prefix, at
// debug level.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
                   ___                __
  __ _  ___ ___/ (_)__ _  ____/ /____ ____ ____
 /  ' \/ -_) _  / / _ '/ (_-< __/ _ '/ _ '/ -_)
/_/_/_/\__/\_,_/_/\_,_/ /___|__/\_,_/\_, /\__/
                                    /___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path string) error {
	logging.Debug("  Checking database directory: %s", path)

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := filesystem.WriteFileWithRetry(testFile, []byte("test"), 0o644, filesystem.DefaultRetryConfig()); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid duration for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvFloat reads a finite number; zero is accepted only when allowZero.
func getEnvFloat(key string, defaultValue float64, allowZero bool) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	valid := err == nil && parsed >= 0 && parsed < 1e6 && (allowZero || parsed > 0)
	if !valid {
		logging.Warn("Invalid number for %s: %q, using default: %g", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvThreshold(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || !(parsed > 0 && parsed <= 1) {
		logging.Warn("Invalid threshold for %s: %q, must be in (0, 1], using default: %g", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvSize parses WIDTHxHEIGHT.
func getEnvSize(key string, defaultValue geometry.Rect) geometry.Rect {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if ok {
		width, errW := strconv.ParseFloat(w, 64)
		height, errH := strconv.ParseFloat(h, 64)
		if errW == nil && errH == nil && width > 0 && height > 0 {
			return geometry.Rect{Width: width, Height: height}
		}
	}
	logging.Warn("Invalid size for %s: %q, using default: %gx%g", key, value, defaultValue.Width, defaultValue.Height)
	return defaultValue
}
