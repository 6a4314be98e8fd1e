package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"media-stage/internal/logging"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Observer overrides the package-level observer for this operation.
	Observer Observer
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

func (c RetryConfig) observe(operation, outcome string) {
	o := c.Observer
	if o == nil {
		o = defaultObserver
	}
	if o != nil {
		o.ObserveRetry(operation, outcome)
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// Retry runs fn until it succeeds, fails with anything but ESTALE, or has
// been retried MaxRetries times. Backoff doubles up to MaxBackoff.
func Retry(operation, path string, config RetryConfig, fn func() error) error {
	backoff := config.InitialBackoff
	stale := false

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			if stale {
				logging.Info("NFS %s succeeded on retry %d for %s", operation, attempt, path)
				config.observe(operation, "success")
			}
			return nil
		}
		if !isNFSStaleError(err) {
			return err
		}
		stale = true

		if attempt >= config.MaxRetries {
			logging.Warn("NFS %s failed after %d retries for %s: %v", operation, config.MaxRetries, path, err)
			config.observe(operation, "failure")
			return err
		}

		config.observe(operation, "retry")
		logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
			operation, path, backoff, attempt+1, config.MaxRetries)
		time.Sleep(backoff)

		backoff *= 2
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := Retry("stat", path, config, func() error {
		var err error
		info, err = os.Stat(path)
		return err
	})
	return info, err
}

// WriteFileWithRetry performs os.WriteFile with retry logic for NFS stale
// file handle errors.
func WriteFileWithRetry(path string, data []byte, perm os.FileMode, config RetryConfig) error {
	return Retry("write", path, config, func() error {
		return os.WriteFile(path, data, perm)
	})
}
