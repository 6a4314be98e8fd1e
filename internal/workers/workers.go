package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that pins the probe worker count.
const EnvOverride = "PROBE_WORKERS"

// DefaultProbeLimit caps the probe pool when no limit is configured.
const DefaultProbeLimit = 8

// Count returns the worker count for a task type. It follows GOMAXPROCS,
// which tracks container CPU limits, scaled by multiplier:
//   - 1.0 for CPU-bound work
//   - 2.0 for I/O-bound work
//   - 1.5 for mixed work
//
// limit caps the result; 0 means no cap. A positive PROBE_WORKERS value
// replaces the computed count but is still capped by limit.
func Count(multiplier float64, limit int) int {
	if n, ok := override(); ok {
		if limit > 0 && n > limit {
			return limit
		}
		return n
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns a worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns a worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns a worker count for mixed tasks (1.5 per CPU).
func ForMixed(limit int) int {
	return Count(1.5, limit)
}

// ForProbes sizes the probe pool. Probing sniffs bytes and decodes image
// headers, occasionally a full JPEG, so it is treated as mixed work.
func ForProbes(limit int) int {
	if limit <= 0 {
		limit = DefaultProbeLimit
	}
	return ForMixed(limit)
}

func override() (int, bool) {
	v := os.Getenv(EnvOverride)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
