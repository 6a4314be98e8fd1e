package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-stage/internal/aspect"
	"media-stage/internal/feed"
	"media-stage/internal/filesystem"
	"media-stage/internal/handlers"
	"media-stage/internal/layout"
	"media-stage/internal/logging"
	"media-stage/internal/memory"
	"media-stage/internal/metrics"
	"media-stage/internal/middleware"
	"media-stage/internal/presentation"
	"media-stage/internal/probe"
	"media-stage/internal/snapshots"
	"media-stage/internal/startup"
	"media-stage/internal/visibility"

	"github.com/gorilla/mux"
)

// statsInterval is how often component sizes are exported as gauges.
const statsInterval = 15 * time.Second

type statsProvider struct {
	session *feed.Session
	cache   *snapshots.Cache
}

func (p statsProvider) GetStats() metrics.Stats {
	plans, views := p.session.Stats()
	stats := metrics.Stats{CommittedPlans: plans, TrackedViews: views}
	if p.cache != nil {
		stats.SnapshotCacheItems = p.cache.Len()
	}
	return stats
}

func main() {
	startTime := time.Now()

	// Derive GOMEMLIMIT before any significant allocation
	memory.ConfigureFromEnv()

	observers := metrics.NewObservers()
	filesystem.SetDefaultObserver(observers)

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Open the snapshot database. Without it the service keeps running in a
	// degraded mode that resolves ratios from declared sizes and URLs only.
	var (
		store *snapshots.SQLiteStore
		cache *snapshots.Cache
	)
	dbStart := time.Now()
	store, err = snapshots.OpenSQLite(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Error("Failed to open snapshot database, continuing without snapshots: %v", err)
	} else {
		startup.LogDatabaseInit(store.Path(), time.Since(dbStart))
		cache = snapshots.NewCache(store, config.SnapshotCacheTTL, observers)
	}

	var (
		snapshotSource aspect.SnapshotSource
		recorder       probe.Recorder
	)
	if cache != nil {
		snapshotSource = cache
		recorder = cache
	}

	// Feed session: layout, visibility and presentation
	planner := layout.NewPlanner(config.Layout, observers)
	session := feed.NewSession(feed.Options{
		Resolver: aspect.NewResolver(snapshotSource, observers),
		Store:    layout.NewStore(planner, config.LayoutTTL, observers),
		Tracker:  visibility.NewTracker(config.VisibilityThreshold, observers),
		Settle:   config.AutoplaySettle,
		Presentation: presentation.Options{
			ViewerBounds: config.ViewerBounds,
			Duration:     config.TransitionDuration,
			Observer:     observers,
		},
	})

	// Probing
	prober := probe.NewProber(recorder, observers)
	gate := memory.NewGate(memory.DefaultConfig(), observers)
	gate.Start()
	pool := probe.NewPool(prober, config.ProbeWorkers, config.ProbeWorkers*4, session.DecodeCompleted, observers)
	pool.SetGate(gate)
	pool.Start()
	startup.LogProbeInit(config.ProbeWorkers)

	// Metrics
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
		collector = metrics.NewCollector(statsProvider{session: session, cache: cache}, statsInterval)
		collector.Start()
	}

	// Setup router
	h := handlers.New(session, cache, prober, pool)
	router := setupRouter(h, config.MetricsEnabled)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	// Create server
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start graceful shutdown handler
	done := make(chan struct{})
	go func() {
		handleShutdown(srv, gate, pool, collector, session, store)
		close(done)
	}()

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet)
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}
	return r
}

func handleShutdown(srv *http.Server, gate *memory.Gate, pool *probe.Pool, collector *metrics.Collector, session *feed.Session, store *snapshots.SQLiteStore) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping probe workers")
	gate.Stop()
	pool.Stop()
	startup.LogShutdownStepComplete("Probe workers stopped")

	if collector != nil {
		collector.Stop()
	}
	session.Close()

	if store != nil {
		startup.LogShutdownStep("Closing snapshot database")
		if err := store.Close(); err != nil {
			logging.Warn("Snapshot database close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Snapshot database closed")
		}
	}

	startup.LogShutdownComplete()
}
