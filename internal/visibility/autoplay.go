package visibility

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// DefaultSettleDelay is how long scrolling must be quiet before the autoplay
// selection is re-evaluated.
const DefaultSettleDelay = 250 * time.Millisecond

// Autoplay selects, after scrolling settles, the single most-visible view that
// is eligible to play. Ties go to the view nearest the top, then to the
// smallest id.
type Autoplay struct {
	tracker  *Tracker
	eligible func(viewID string) bool
	onChange func(viewID string)
	schedule func(func())

	mu      sync.Mutex
	current string
}

// NewAutoplay creates an Autoplay over tracker. eligible filters views that
// may play (nil allows all); onChange receives the new selection, "" meaning
// nothing should play.
func NewAutoplay(tracker *Tracker, settle time.Duration, eligible func(string) bool, onChange func(string)) *Autoplay {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	a := &Autoplay{
		tracker:  tracker,
		eligible: eligible,
		onChange: onChange,
		schedule: debounce.New(settle),
	}
	return a
}

// Nudge records scroll activity. The selection is re-evaluated once no
// further nudges arrive within the settle delay.
func (a *Autoplay) Nudge() {
	a.schedule(a.Evaluate)
}

// Evaluate re-computes the selection immediately and notifies onChange if it
// differs from the previous one.
func (a *Autoplay) Evaluate() {
	next := a.Select()

	a.mu.Lock()
	changed := next != a.current
	a.current = next
	a.mu.Unlock()

	if changed && a.onChange != nil {
		a.onChange(next)
	}
}

// Current returns the last selection reported to onChange.
func (a *Autoplay) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Select returns the view that should play now without changing state.
func (a *Autoplay) Select() string {
	var best *Record
	for _, rec := range a.tracker.Records() {
		if !rec.Visible {
			continue
		}
		if a.eligible != nil && !a.eligible(rec.ViewID) {
			continue
		}
		if best == nil || better(rec, *best) {
			r := rec
			best = &r
		}
	}
	if best == nil {
		return ""
	}
	return best.ViewID
}

func better(a, b Record) bool {
	if a.Ratio != b.Ratio {
		return a.Ratio > b.Ratio
	}
	if a.Frame.Y != b.Frame.Y {
		return a.Frame.Y < b.Frame.Y
	}
	return a.ViewID < b.ViewID
}
