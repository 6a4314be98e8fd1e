package visibility

import (
	"sync"
	"testing"
	"time"

	"media-stage/internal/geometry"
)

func TestAutoplaySelectMostVisible(t *testing.T) {
	tracker := NewTracker(DefaultThreshold, nil)
	tracker.Update("half", geometry.Rect{X: 0, Y: 50, Width: 100, Height: 100}, viewport)
	tracker.Update("full", geometry.Rect{X: 0, Y: 10, Width: 40, Height: 40}, viewport)
	tracker.Update("gone", geometry.Rect{X: 0, Y: 900, Width: 40, Height: 40}, viewport)

	a := NewAutoplay(tracker, time.Millisecond, nil, nil)
	if got := a.Select(); got != "full" {
		t.Errorf("Select() = %q, want full", got)
	}
}

func TestAutoplayTieBreaksTopmost(t *testing.T) {
	tracker := NewTracker(DefaultThreshold, nil)
	tracker.Update("lower", geometry.Rect{X: 0, Y: 60, Width: 20, Height: 20}, viewport)
	tracker.Update("upper", geometry.Rect{X: 0, Y: 10, Width: 20, Height: 20}, viewport)

	a := NewAutoplay(tracker, time.Millisecond, nil, nil)
	if got := a.Select(); got != "upper" {
		t.Errorf("Select() = %q, want upper", got)
	}
}

func TestAutoplayEligibility(t *testing.T) {
	tracker := NewTracker(DefaultThreshold, nil)
	tracker.Update("paused", geometry.Rect{X: 0, Y: 0, Width: 50, Height: 50}, viewport)
	tracker.Update("other", geometry.Rect{X: 0, Y: 60, Width: 50, Height: 50}, viewport)

	a := NewAutoplay(tracker, time.Millisecond, func(id string) bool { return id != "paused" }, nil)
	if got := a.Select(); got != "other" {
		t.Errorf("Select() = %q, want other", got)
	}
}

func TestAutoplayEvaluateNotifiesOnChange(t *testing.T) {
	tracker := NewTracker(DefaultThreshold, nil)
	var got []string
	a := NewAutoplay(tracker, time.Millisecond, nil, func(id string) { got = append(got, id) })

	tracker.Update("v1", geometry.Rect{Width: 10, Height: 10}, viewport)
	a.Evaluate()
	a.Evaluate()
	tracker.Remove("v1")
	a.Evaluate()

	if len(got) != 2 || got[0] != "v1" || got[1] != "" {
		t.Errorf("notifications = %q, want [v1 \"\"]", got)
	}
	if a.Current() != "" {
		t.Errorf("Current() = %q, want empty", a.Current())
	}
}

func TestAutoplayNudgeSettles(t *testing.T) {
	tracker := NewTracker(DefaultThreshold, nil)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 1)
	a := NewAutoplay(tracker, 20*time.Millisecond, nil, func(id string) {
		mu.Lock()
		got = append(got, id)
		mu.Unlock()
		done <- struct{}{}
	})

	for y := 500.0; y >= 0; y -= 50 {
		tracker.Update("v1", geometry.Rect{X: 0, Y: y, Width: 50, Height: 50}, viewport)
		a.Nudge()
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("autoplay never settled")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "v1" {
		t.Errorf("notifications = %q, want exactly [v1]", got)
	}
}
