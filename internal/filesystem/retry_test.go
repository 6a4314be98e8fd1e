package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

type observerStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *observerStub) ObserveRetry(operation, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, operation+":"+outcome)
}

func fastConfig(o Observer) RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Observer: o}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"ESTALE", syscall.ESTALE, true},
		{"wrapped ESTALE", &os.PathError{Op: "stat", Path: "/x", Err: syscall.ESTALE}, true},
		{"ENOENT", syscall.ENOENT, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	t.Run("recovers after stale handles", func(t *testing.T) {
		obs := &observerStub{}
		calls := 0
		err := Retry("stat", "/db", fastConfig(obs), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("stat: %w", syscall.ESTALE)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
		want := []string{"stat:retry", "stat:retry", "stat:success"}
		if fmt.Sprint(obs.outcomes) != fmt.Sprint(want) {
			t.Errorf("outcomes = %v, want %v", obs.outcomes, want)
		}
	})

	t.Run("gives up after MaxRetries", func(t *testing.T) {
		obs := &observerStub{}
		calls := 0
		err := Retry("write", "/db", fastConfig(obs), func() error {
			calls++
			return syscall.ESTALE
		})
		if !errors.Is(err, syscall.ESTALE) {
			t.Fatalf("err = %v, want ESTALE", err)
		}
		if calls != 4 {
			t.Errorf("calls = %d, want 4", calls)
		}
		if last := obs.outcomes[len(obs.outcomes)-1]; last != "write:failure" {
			t.Errorf("last outcome = %s", last)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		obs := &observerStub{}
		calls := 0
		err := Retry("stat", "/db", fastConfig(obs), func() error {
			calls++
			return os.ErrPermission
		})
		if !errors.Is(err, os.ErrPermission) || calls != 1 {
			t.Errorf("err = %v after %d calls", err, calls)
		}
		if len(obs.outcomes) != 0 {
			t.Errorf("unexpected outcomes %v", obs.outcomes)
		}
	})
}

func TestDefaultObserver(t *testing.T) {
	obs := &observerStub{}
	SetDefaultObserver(obs)
	t.Cleanup(func() { SetDefaultObserver(nil) })

	cfg := fastConfig(nil)
	cfg.MaxRetries = 0
	_ = Retry("stat", "/db", cfg, func() error { return syscall.ESTALE })

	if len(obs.outcomes) != 1 || obs.outcomes[0] != "stat:failure" {
		t.Errorf("outcomes = %v", obs.outcomes)
	}
}

func TestStatAndWriteWithRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe")

	if err := WriteFileWithRetry(path, []byte("ok"), 0o644, DefaultRetryConfig()); err != nil {
		t.Fatalf("WriteFileWithRetry: %v", err)
	}
	info, err := StatWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("StatWithRetry: %v", err)
	}
	if info.Size() != 2 {
		t.Errorf("size = %d, want 2", info.Size())
	}

	if _, err := StatWithRetry(filepath.Join(dir, "missing"), DefaultRetryConfig()); !os.IsNotExist(err) {
		t.Errorf("missing file err = %v, want not-exist", err)
	}
}
