package filesystem

// Observer records retry outcomes. The metrics package implements it.
type Observer interface {
	// ObserveRetry is called with outcome "retry" before each backoff, then
	// once with "success" or "failure" for operations that hit ESTALE.
	ObserveRetry(operation, outcome string)
}

var defaultObserver Observer

// SetDefaultObserver sets the observer used when a RetryConfig has none.
// Call it once at startup.
func SetDefaultObserver(o Observer) {
	defaultObserver = o
}
