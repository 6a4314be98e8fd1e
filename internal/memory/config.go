package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"media-stage/internal/logging"
)

// DefaultMemoryRatio is the share of the container limit given to the Go
// heap. The rest covers decode buffers outside the heap, stacks and SQLite.
const DefaultMemoryRatio = 0.85

// ConfigResult describes how GOMEMLIMIT was derived.
type ConfigResult struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT" or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets GOMEMLIMIT from the container limit passed in
// MEMORY_LIMIT (bytes), scaled by MEMORY_RATIO. An explicit GOMEMLIMIT wins.
// Call it before significant allocations.
func ConfigureFromEnv() ConfigResult {
	result := resolve(os.Getenv)
	switch result.Source {
	case "GOMEMLIMIT":
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", os.Getenv("GOMEMLIMIT"))
	case "MEMORY_LIMIT":
		debug.SetMemoryLimit(result.GoMemLimit)
		logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
			formatBytes(result.GoMemLimit), result.Ratio*100, formatBytes(result.ContainerLimit))
	default:
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
	}
	return result
}

// resolve computes the limit from env without touching the runtime.
func resolve(env func(string) string) ConfigResult {
	if env("GOMEMLIMIT") != "" {
		return ConfigResult{Source: "GOMEMLIMIT"}
	}

	raw := env("MEMORY_LIMIT")
	if raw == "" {
		return ConfigResult{Source: "none"}
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Ignoring MEMORY_LIMIT %q: not a positive byte count", raw)
		return ConfigResult{Source: "none"}
	}

	ratio := parseRatio(env("MEMORY_RATIO"))
	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: limit,
		GoMemLimit:     int64(float64(limit) * ratio),
		Ratio:          ratio,
	}
}

func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultMemoryRatio
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(r > 0 && r <= 1) {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using default %.2f", raw, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return r
}

// formatBytes formats bytes into a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
