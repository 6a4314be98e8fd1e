package metrics

import (
	"time"

	"media-stage/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds point-in-time component sizes.
type Stats struct {
	CommittedPlans     int
	TrackedViews       int
	SnapshotCacheItems int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	LayoutCommittedPlans.Set(float64(stats.CommittedPlans))
	VisibilityTrackedViews.Set(float64(stats.TrackedViews))
	SnapshotCacheItems.Set(float64(stats.SnapshotCacheItems))

	logging.Debug("Metrics collected: plans=%d, views=%d, snapshots=%d",
		stats.CommittedPlans, stats.TrackedViews, stats.SnapshotCacheItems)
}
