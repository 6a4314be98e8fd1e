package visibility

import (
	"sort"
	"sync"

	"media-stage/internal/geometry"
)

// DefaultThreshold is the on-screen fraction at which a view becomes eligible
// for autoplay.
const DefaultThreshold = 0.3

// Ratio returns the fraction of view that lies inside viewport, in [0, 1].
// An empty view has ratio 0.
func Ratio(view, viewport geometry.Rect) float64 {
	area := view.Area()
	if area <= 0 {
		return 0
	}
	ratio := view.Intersect(viewport).Area() / area
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// Record is the current visibility state of one view.
type Record struct {
	ViewID  string        `json:"viewId"`
	Ratio   float64       `json:"ratio"`
	Visible bool          `json:"visible"`
	Frame   geometry.Rect `json:"frame"`
}

// Transition is emitted when a view's visible flag flips.
type Transition struct {
	ViewID  string  `json:"viewId"`
	Visible bool    `json:"visible"`
	Ratio   float64 `json:"ratio"`
}

// Observer records visibility transitions.
type Observer interface {
	ObserveTransition(visible bool)
}

// Tracker holds one Record per view id.
type Tracker struct {
	threshold float64
	observer  Observer

	// emitMu keeps notifications in the order updates were applied.
	// Subscribers must not call Update or Remove synchronously.
	emitMu sync.Mutex

	mu      sync.Mutex
	records map[string]*Record
	subs    map[int]func(Transition)
	nextSub int
}

// NewTracker creates a Tracker. A threshold outside (0, 1] uses DefaultThreshold.
func NewTracker(threshold float64, observer Observer) *Tracker {
	if !(threshold > 0 && threshold <= 1) {
		threshold = DefaultThreshold
	}
	return &Tracker{
		threshold: threshold,
		observer:  observer,
		records:   make(map[string]*Record),
		subs:      make(map[int]func(Transition)),
	}
}

// Threshold returns the visibility threshold in use.
func (t *Tracker) Threshold() float64 {
	return t.threshold
}

// Update recomputes the record for viewID and returns whether the view is
// visible. Subscribers are notified only if the flag flipped.
func (t *Tracker) Update(viewID string, viewFrame, viewportFrame geometry.Rect) bool {
	ratio := Ratio(viewFrame, viewportFrame)
	visible := ratio >= t.threshold

	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	rec, ok := t.records[viewID]
	if !ok {
		rec = &Record{ViewID: viewID}
		t.records[viewID] = rec
	}
	changed := rec.Visible != visible
	rec.Ratio = ratio
	rec.Visible = visible
	rec.Frame = viewFrame
	subs := t.subscribersLocked(changed)
	t.mu.Unlock()

	if changed {
		t.emit(subs, Transition{ViewID: viewID, Visible: visible, Ratio: ratio})
	}
	return visible
}

// Remove destroys the record for viewID. A view that was visible reports a
// final not-visible transition.
func (t *Tracker) Remove(viewID string) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	rec, ok := t.records[viewID]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.records, viewID)
	subs := t.subscribersLocked(rec.Visible)
	t.mu.Unlock()

	if rec.Visible {
		t.emit(subs, Transition{ViewID: viewID, Visible: false, Ratio: 0})
	}
}

// Record returns a copy of the record for viewID.
func (t *Tracker) Record(viewID string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[viewID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of tracked views.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Records returns copies of all records ordered by view id.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	out := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ViewID < out[j].ViewID })
	return out
}

// Subscribe registers fn for transitions and returns a function that
// removes the subscription.
func (t *Tracker) Subscribe(fn func(Transition)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

func (t *Tracker) subscribersLocked(changed bool) []func(Transition) {
	if !changed || len(t.subs) == 0 {
		return nil
	}
	ids := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	subs := make([]func(Transition), len(ids))
	for i, id := range ids {
		subs[i] = t.subs[id]
	}
	return subs
}

func (t *Tracker) emit(subs []func(Transition), tr Transition) {
	if t.observer != nil {
		t.observer.ObserveTransition(tr.Visible)
	}
	for _, fn := range subs {
		fn(tr)
	}
}
