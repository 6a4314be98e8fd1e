package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"media-stage/internal/logging"
)

// Config holds the gate's thresholds as fractions of the heap limit.
type Config struct {
	// LimitBytes overrides GOMEMLIMIT. Zero uses GOMEMLIMIT; with neither
	// the gate never closes.
	LimitBytes int64

	// PauseAt closes the gate; ResumeAt reopens it.
	PauseAt  float64
	ResumeAt float64

	CheckInterval time.Duration
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		PauseAt:       0.85,
		ResumeAt:      0.7,
		CheckInterval: 5 * time.Second,
	}
}

// Observer records heap usage and whether the gate is closed.
type Observer interface {
	ObserveMemory(usage float64, paused bool)
}

// Gate holds back memory-heavy work while the heap is near its limit.
type Gate struct {
	config   Config
	limit    int64
	observer Observer
	readHeap func() uint64

	mu      sync.Mutex
	usage   float64
	paused  bool
	open    chan struct{}
	stopped bool
	stop    chan struct{}
	once    sync.Once
}

// NewGate creates a Gate. observer may be nil.
func NewGate(config Config, observer Observer) *Gate {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < 1<<62 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Warn("Memory gate: no memory limit configured, backpressure disabled")
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultConfig().CheckInterval
	}

	open := make(chan struct{})
	close(open)
	return &Gate{
		config:   config,
		limit:    limit,
		observer: observer,
		readHeap: func() uint64 {
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)
			return stats.HeapAlloc
		},
		open: open,
		stop: make(chan struct{}),
	}
}

// Start samples the heap every CheckInterval until Stop.
func (g *Gate) Start() {
	if g.limit == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(g.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.Check()
			case <-g.stop:
				return
			}
		}
	}()
}

// Stop ends sampling and releases every waiter for good.
func (g *Gate) Stop() {
	g.once.Do(func() {
		close(g.stop)
		g.mu.Lock()
		g.stopped = true
		g.setPausedLocked(false)
		g.mu.Unlock()
	})
}

// Check samples the heap once and opens or closes the gate.
func (g *Gate) Check() {
	if g.limit == 0 {
		return
	}
	heap := g.readHeap()

	g.mu.Lock()
	g.usage = float64(heap) / float64(g.limit)
	switch {
	case g.stopped:
	case !g.paused && g.usage >= g.config.PauseAt:
		logging.Warn("Memory critical (%.1f%% of limit), pausing probes", g.usage*100)
		g.setPausedLocked(true)
		go runtime.GC()
	case g.paused && g.usage < g.config.ResumeAt:
		logging.Info("Memory recovered (%.1f%% of limit), resuming probes", g.usage*100)
		g.setPausedLocked(false)
	}
	usage, paused := g.usage, g.paused
	g.mu.Unlock()

	if g.observer != nil {
		g.observer.ObserveMemory(usage, paused)
	}
}

func (g *Gate) setPausedLocked(paused bool) {
	if paused == g.paused {
		return
	}
	g.paused = paused
	if paused {
		g.open = make(chan struct{})
	} else {
		close(g.open)
	}
}

// Wait blocks while the gate is closed. It returns ctx's error if ctx ends
// first.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Paused reports whether the gate is closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Usage returns the last sampled heap usage as a fraction of the limit.
func (g *Gate) Usage() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.usage
}
