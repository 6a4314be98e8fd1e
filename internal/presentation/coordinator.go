package presentation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-stage/internal/aspect"
	"media-stage/internal/geometry"
	"media-stage/internal/logging"
	"media-stage/internal/mediatypes"
)

// DefaultDuration is the length of a hero transition.
const DefaultDuration = 350 * time.Millisecond

// FrameSource reports where the thumbnail of an attachment currently sits on
// screen, so a dismissal animates back to it even after the feed scrolled.
// source is the value given to WithSource when the presentation started.
type FrameSource interface {
	ReturnFrame(source, attachmentID string) (geometry.Rect, bool)
}

// RatioSource supplies the aspect ratio used to fit media into the viewer.
type RatioSource interface {
	Ratio(source string, att mediatypes.Attachment) aspect.Ratio
}

type presentConfig struct {
	source string
	bounds *geometry.Rect
}

// PresentOption customises a single Present call.
type PresentOption func(*presentConfig)

// WithSource names the feed item the presentation starts from. It is handed
// back to the FrameSource and RatioSource for the rest of the presentation.
func WithSource(source string) PresentOption {
	return func(c *presentConfig) {
		c.source = source
	}
}

// WithViewerBounds replaces the fullscreen area for this and later
// presentations. It is only applied when the present is accepted.
func WithViewerBounds(bounds geometry.Rect) PresentOption {
	return func(c *presentConfig) {
		if !bounds.IsEmpty() {
			c.bounds = &bounds
		}
	}
}

// Observer records coordinator activity.
type Observer interface {
	ObservePhase(phase Phase)
	ObserveRejectedPresent()
}

// Reader is the read-only view of a Coordinator handed to the feed and the
// fullscreen viewer.
type Reader interface {
	State() State
	Subscribe(fn func(State)) (unsubscribe func())
	ShouldPause(attachmentID string) bool
	IsHidden(attachmentID string) bool
}

// Options configures a Coordinator.
type Options struct {
	ViewerBounds geometry.Rect
	Duration     time.Duration
	Frames       FrameSource
	Ratios       RatioSource
	Observer     Observer
}

// Coordinator owns the single live presentation state.
type Coordinator struct {
	duration time.Duration
	frames   FrameSource
	ratios   RatioSource
	observer Observer

	emitMu sync.Mutex

	mu      sync.Mutex
	bounds  geometry.Rect
	state   State
	origin  geometry.Rect
	subs    map[int]func(State)
	nextSub int
}

var _ Reader = (*Coordinator)(nil)

// New creates a Coordinator in the Closed phase.
func New(opts Options) *Coordinator {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	return &Coordinator{
		duration: opts.Duration,
		frames:   opts.Frames,
		ratios:   opts.Ratios,
		observer: opts.Observer,
		bounds:   opts.ViewerBounds,
		state:    State{Phase: PhaseClosed},
		subs:     make(map[int]func(State)),
	}
}

// State returns a snapshot of the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// ShouldPause reports whether feed playback of attachmentID must pause.
func (c *Coordinator) ShouldPause(attachmentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Shows(attachmentID)
}

// IsHidden reports whether the feed thumbnail of attachmentID must be hidden
// (not unmounted) so the hero transition reads as continuous.
func (c *Coordinator) IsHidden(attachmentID string) bool {
	return c.ShouldPause(attachmentID)
}

// Present starts presenting media from the thumbnail at originFrame. An
// empty allMedia presents media alone. It fails with ErrAlreadyPresenting
// unless the coordinator is Closed, and with ErrMediaNotInSet when media is
// not part of allMedia. A rejected present leaves the coordinator untouched.
func (c *Coordinator) Present(media mediatypes.Attachment, allMedia []mediatypes.Attachment, originFrame geometry.Rect, opts ...PresentOption) (Transition, error) {
	var cfg presentConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(allMedia) == 0 {
		allMedia = []mediatypes.Attachment{media}
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.state.Active() {
		phase := c.state.Phase
		c.mu.Unlock()
		logging.Warn("Rejected present of %s: coordinator is %s", media.ID, phase)
		if c.observer != nil {
			c.observer.ObserveRejectedPresent()
		}
		return Transition{}, fmt.Errorf("present %s while %s: %w", media.ID, phase, ErrAlreadyPresenting)
	}
	if mediatypes.Index(allMedia, media.ID) < 0 {
		c.mu.Unlock()
		return Transition{}, fmt.Errorf("present %s: %w", media.ID, ErrMediaNotInSet)
	}
	if cfg.bounds != nil {
		c.bounds = *cfg.bounds
	}

	all := make([]mediatypes.Attachment, len(allMedia))
	copy(all, allMedia)
	m := media
	origin := originFrame

	tr := Transition{
		ID:           uuid.NewString(),
		Direction:    DirectionPresent,
		AttachmentID: media.ID,
		Origin:       originFrame,
		Destination:  c.fullscreenFrameLocked(cfg.source, media),
		Duration:     c.duration,
	}

	c.origin = originFrame
	c.state = State{
		Phase:       PhasePresenting,
		Source:      cfg.source,
		Media:       &m,
		AllMedia:    all,
		OriginFrame: &origin,
		Transition:  &tr,
	}
	snapshot, subs := c.snapshotLocked()
	c.mu.Unlock()

	logging.Debug("Presenting %s (%d in set) from %+v", media.ID, len(all), originFrame)
	c.emit(snapshot, subs)
	return tr, nil
}

// Complete finishes the in-flight transition with the given id: Presenting
// becomes Presented and Dismissing becomes Closed.
func (c *Coordinator) Complete(transitionID string) error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	tr := c.state.Transition
	if tr == nil || tr.ID != transitionID {
		phase := c.state.Phase
		c.mu.Unlock()
		return fmt.Errorf("complete %s while %s: %w", transitionID, phase, ErrStaleTransition)
	}

	switch c.state.Phase {
	case PhasePresenting:
		c.state.Phase = PhasePresented
		c.state.OriginFrame = nil
		c.state.Transition = nil
	case PhaseDismissing:
		c.closeLocked()
	}
	snapshot, subs := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snapshot, subs)
	return nil
}

// Dismiss starts returning the presented media to its thumbnail. It is a
// no-op while Closed or already Dismissing. A presentation still in its
// Presenting phase is cancelled and resolves directly to Closed; in that case
// the returned bool is true but no transition is produced.
func (c *Coordinator) Dismiss() (Transition, bool) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	switch c.state.Phase {
	case PhasePresenting:
		id := c.state.Media.ID
		c.closeLocked()
		snapshot, subs := c.snapshotLocked()
		c.mu.Unlock()

		logging.Debug("Cancelled in-flight presentation of %s", id)
		c.emit(snapshot, subs)
		return Transition{}, true

	case PhasePresented:
		media := *c.state.Media
		target := c.origin
		if c.frames != nil {
			if frame, ok := c.frames.ReturnFrame(c.state.Source, media.ID); ok {
				target = frame
			}
		}

		tr := Transition{
			ID:           uuid.NewString(),
			Direction:    DirectionDismiss,
			AttachmentID: media.ID,
			Origin:       c.fullscreenFrameLocked(c.state.Source, media),
			Destination:  target,
			Duration:     c.duration,
		}
		c.state.Phase = PhaseDismissing
		c.state.TargetFrame = &target
		c.state.Transition = &tr
		snapshot, subs := c.snapshotLocked()
		c.mu.Unlock()

		c.emit(snapshot, subs)
		return tr, true

	default:
		c.mu.Unlock()
		return Transition{}, false
	}
}

// Advance pages to another attachment of the presented set. Only valid while
// Presented; the phase does not change.
func (c *Coordinator) Advance(toMediaID string) error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.state.Phase != PhasePresented {
		phase := c.state.Phase
		c.mu.Unlock()
		return fmt.Errorf("advance to %s while %s: %w", toMediaID, phase, ErrNotPresented)
	}

	idx := mediatypes.Index(c.state.AllMedia, toMediaID)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("advance to %s: %w", toMediaID, ErrMediaNotInSet)
	}
	if c.state.Media.ID == toMediaID {
		c.mu.Unlock()
		return nil
	}

	m := c.state.AllMedia[idx]
	c.state.Media = &m
	snapshot, subs := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snapshot, subs)
	return nil
}

// Subscribe registers fn for state changes and returns a function that
// removes the subscription. fn must not call mutating methods synchronously.
func (c *Coordinator) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Coordinator) closeLocked() {
	c.state = State{Phase: PhaseClosed}
	c.origin = geometry.Rect{}
}

// fullscreenFrameLocked aspect-fits media into the viewer bounds.
func (c *Coordinator) fullscreenFrameLocked(source string, media mediatypes.Attachment) geometry.Rect {
	var ratio aspect.Ratio
	if c.ratios != nil {
		ratio = c.ratios.Ratio(source, media)
	}
	if !ratio.Valid() {
		ratio = aspect.Resolve(media, nil)
	}
	return AspectFit(ratio, c.bounds)
}

func (c *Coordinator) snapshotLocked() (State, []func(State)) {
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	subs := make([]func(State), len(ids))
	for i, id := range ids {
		subs[i] = c.subs[id]
	}
	return c.state.clone(), subs
}

func (c *Coordinator) emit(state State, subs []func(State)) {
	if c.observer != nil {
		c.observer.ObservePhase(state.Phase)
	}
	for _, fn := range subs {
		fn(state.clone())
	}
}

// AspectFit returns the largest rectangle of the given ratio centred inside
// bounds. An empty bounds yields an empty rectangle at its origin.
func AspectFit(ratio aspect.Ratio, bounds geometry.Rect) geometry.Rect {
	if bounds.IsEmpty() || !ratio.Valid() {
		return geometry.Rect{X: bounds.X, Y: bounds.Y}
	}

	width := bounds.Width
	height := width / float64(ratio)
	if height > bounds.Height {
		height = bounds.Height
		width = height * float64(ratio)
	}
	return geometry.Rect{
		X:      bounds.X + (bounds.Width-width)/2,
		Y:      bounds.Y + (bounds.Height-height)/2,
		Width:  width,
		Height: height,
	}
}
