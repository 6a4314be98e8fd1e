package feed

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"media-stage/internal/aspect"
	"media-stage/internal/geometry"
	"media-stage/internal/layout"
	"media-stage/internal/logging"
	"media-stage/internal/mediatypes"
	"media-stage/internal/placeholder"
	"media-stage/internal/presentation"
	"media-stage/internal/probe"
	"media-stage/internal/visibility"
)

// ErrUnknownOwner is returned for a post that has not been rendered.
var ErrUnknownOwner = errors.New("post has not been rendered")

// ErrUnknownAttachment is returned for an attachment outside the post.
var ErrUnknownAttachment = errors.New("attachment is not part of the post")

// LoadState is the content state of a cell. Geometry never depends on it.
type LoadState string

const (
	LoadPending LoadState = "pending"
	LoadLoaded  LoadState = "loaded"
	LoadFailed  LoadState = "failed"
)

// Options configures a Session.
type Options struct {
	Resolver *aspect.Resolver
	Store    *layout.Store
	Tracker  *visibility.Tracker

	// Settle is the autoplay debounce delay.
	Settle time.Duration

	// Presentation configures the coordinator. Frames and Ratios are
	// provided by the Session and overwritten.
	Presentation presentation.Options
}

type post struct {
	owner       string
	generation  uint64
	attachments []mediatypes.Attachment
	ratios      map[string]aspect.Ratio
	width       float64
	plan        layout.Plan
	states      map[string]LoadState
	origin      geometry.Point
	placed      bool
}

type viewRef struct {
	owner        string
	attachmentID string
	kind         mediatypes.Kind
}

// Session is the feed-side owner of layout, visibility and presentation
// state for a set of posts.
type Session struct {
	resolver    *aspect.Resolver
	store       *layout.Store
	tracker     *visibility.Tracker
	autoplay    *visibility.Autoplay
	coordinator *presentation.Coordinator

	mu      sync.Mutex
	posts   map[string]*post
	views   map[string]viewRef
	playing string

	unsubscribe []func()
}

var (
	_ presentation.FrameSource = (*Session)(nil)
	_ presentation.RatioSource = (*Session)(nil)
)

// NewSession creates a Session and its presentation coordinator.
func NewSession(opts Options) *Session {
	s := &Session{
		resolver: opts.Resolver,
		store:    opts.Store,
		tracker:  opts.Tracker,
		posts:    make(map[string]*post),
		views:    make(map[string]viewRef),
	}
	if s.resolver == nil {
		s.resolver = aspect.NewResolver(nil, nil)
	}
	if s.store == nil {
		s.store = layout.NewStore(layout.NewPlanner(layout.DefaultConfig(), nil), 0, nil)
	}
	if s.tracker == nil {
		s.tracker = visibility.NewTracker(visibility.DefaultThreshold, nil)
	}

	popts := opts.Presentation
	popts.Frames = s
	popts.Ratios = s
	s.coordinator = presentation.New(popts)

	s.autoplay = visibility.NewAutoplay(s.tracker, opts.Settle, s.eligible, s.setPlaying)
	s.store.OnEvicted(s.evicted)

	s.unsubscribe = append(s.unsubscribe,
		s.tracker.Subscribe(func(tr visibility.Transition) {
			logging.Debug("View %s visible=%t (%.2f)", tr.ViewID, tr.Visible, tr.Ratio)
		}),
		s.coordinator.Subscribe(func(state presentation.State) {
			// Re-check autoplay so a video being presented stops in the feed.
			if state.Phase == presentation.PhasePresenting || state.Phase == presentation.PhaseClosed {
				s.autoplay.Nudge()
			}
		}),
	)
	return s
}

// Close detaches the Session from its tracker and coordinator.
func (s *Session) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
}

// Coordinator returns the session's presentation coordinator.
func (s *Session) Coordinator() *presentation.Coordinator {
	return s.coordinator
}

// Tracker returns the visibility tracker.
func (s *Session) Tracker() *visibility.Tracker {
	return s.tracker
}

// Store returns the committed plan store.
func (s *Session) Store() *layout.Store {
	return s.store
}

// Render lays out a post. Ratios are resolved once per layout pass; a later
// render of the same attachments at the same width re-uses the ratios of the
// committed pass, so the committed plan comes back unchanged even if a
// snapshot was recorded in between. A render overtaken by a newer render of
// the same post returns the committed plan with layout.ErrSuperseded.
func (s *Session) Render(owner string, attachments []mediatypes.Attachment, containerWidth float64) (layout.Plan, error) {
	ticket := s.store.Begin(owner)

	s.mu.Lock()
	var ratios map[string]aspect.Ratio
	if p, ok := s.posts[owner]; ok && p.width == containerWidth && sameIDs(p.attachments, attachments) {
		ratios = p.ratios
	}
	s.mu.Unlock()

	if ratios == nil {
		ratios = s.resolver.ResolveAll(attachments)
	}

	plan, err := s.store.Finish(ticket, attachments, ratios, containerWidth)
	if err != nil {
		return plan, fmt.Errorf("render %s: %w", owner, err)
	}

	removed := s.apply(owner, ticket.Generation, attachments, ratios, containerWidth, plan)
	for _, id := range removed {
		s.tracker.Remove(id)
	}
	return plan, nil
}

func (s *Session) apply(owner string, generation uint64, attachments []mediatypes.Attachment, ratios map[string]aspect.Ratio, width float64, plan layout.Plan) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.posts[owner]
	if ok && prev.generation > generation {
		return nil
	}

	p := &post{
		owner:       owner,
		generation:  generation,
		attachments: append([]mediatypes.Attachment(nil), attachments...),
		ratios:      ratios,
		width:       width,
		plan:        plan,
		states:      make(map[string]LoadState, len(attachments)),
	}
	for _, att := range attachments {
		p.states[att.ID] = LoadPending
		if ok {
			if st, seen := prev.states[att.ID]; seen {
				p.states[att.ID] = st
			}
		}
	}
	if ok {
		p.origin = prev.origin
		p.placed = prev.placed
	}
	s.posts[owner] = p

	keep := make(map[string]bool, len(plan.Cells))
	for _, c := range plan.Cells {
		id := viewID(owner, c.AttachmentID)
		keep[id] = true
		s.views[id] = viewRef{owner: owner, attachmentID: c.AttachmentID, kind: c.Kind}
	}

	var removed []string
	if ok {
		for _, c := range prev.plan.Cells {
			if id := viewID(owner, c.AttachmentID); !keep[id] {
				delete(s.views, id)
				removed = append(removed, id)
			}
		}
	}
	if len(removed) > 0 {
		logging.Debug("Post %s re-laid out, dropped %d views", owner, len(removed))
	}
	return removed
}

// Plan returns the committed plan for owner.
func (s *Session) Plan(owner string) (layout.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[owner]
	if !ok {
		return layout.Plan{}, false
	}
	return p.plan, true
}

// ReportFrame records where the post's container sits on screen and updates
// the visibility of every cell against viewport. It returns the resulting
// records in cell order.
func (s *Session) ReportFrame(owner string, container geometry.Rect, viewport geometry.Rect) ([]visibility.Record, error) {
	s.mu.Lock()
	p, ok := s.posts[owner]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("report frame for %s: %w", owner, ErrUnknownOwner)
	}
	p.origin = container.Origin()
	p.placed = true

	type update struct {
		id    string
		frame geometry.Rect
	}
	updates := make([]update, len(p.plan.Cells))
	for i, c := range p.plan.Cells {
		updates[i] = update{id: viewID(owner, c.AttachmentID), frame: c.Frame.Offset(p.origin)}
	}
	s.mu.Unlock()
	s.store.Touch(owner)

	records := make([]visibility.Record, 0, len(updates))
	for _, u := range updates {
		s.tracker.Update(u.id, u.frame, viewport)
		if rec, ok := s.tracker.Record(u.id); ok {
			records = append(records, rec)
		}
	}
	s.autoplay.Nudge()
	return records, nil
}

// Remove forgets a post that scrolled out of the feed.
func (s *Session) Remove(owner string) {
	s.mu.Lock()
	ids, ok := s.dropLocked(owner)
	s.mu.Unlock()

	s.forgetViews(ids)
	s.store.Forget(owner)
	if ok {
		s.autoplay.Nudge()
	}
}

// evicted drops a post whose committed plan expired, unless a render pass
// newer than the evicted entry has already replaced it.
func (s *Session) evicted(owner string, generation uint64) {
	s.mu.Lock()
	p, ok := s.posts[owner]
	if !ok || p.generation > generation {
		s.mu.Unlock()
		return
	}
	ids, _ := s.dropLocked(owner)
	s.mu.Unlock()

	s.forgetViews(ids)
	s.autoplay.Nudge()
	logging.Debug("Post %s expired, dropped %d views", owner, len(ids))
}

func (s *Session) dropLocked(owner string) ([]string, bool) {
	p, ok := s.posts[owner]
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(p.plan.Cells))
	for _, c := range p.plan.Cells {
		id := viewID(owner, c.AttachmentID)
		ids = append(ids, id)
		delete(s.views, id)
	}
	delete(s.posts, owner)
	return ids, true
}

func (s *Session) forgetViews(ids []string) {
	for _, id := range ids {
		s.tracker.Remove(id)
	}
}

// Tap presents attachmentID of owner's post from its on-screen thumbnail.
// Attachments beyond the visible grid animate from the overflow cell. The
// fullscreen frame is fitted to the ratio committed for this post.
func (s *Session) Tap(owner, attachmentID string, opts ...presentation.PresentOption) (presentation.Transition, error) {
	s.mu.Lock()
	p, ok := s.posts[owner]
	if !ok {
		s.mu.Unlock()
		return presentation.Transition{}, fmt.Errorf("tap %s/%s: %w", owner, attachmentID, ErrUnknownOwner)
	}
	idx := mediatypes.Index(p.attachments, attachmentID)
	if idx < 0 {
		s.mu.Unlock()
		return presentation.Transition{}, fmt.Errorf("tap %s/%s: %w", owner, attachmentID, ErrUnknownAttachment)
	}
	media := p.attachments[idx]
	all := append([]mediatypes.Attachment(nil), p.attachments...)
	origin, _ := p.screenFrame(attachmentID)
	s.mu.Unlock()
	s.store.Touch(owner)

	opts = append([]presentation.PresentOption{presentation.WithSource(owner)}, opts...)
	return s.coordinator.Present(media, all, origin, opts...)
}

// ReturnFrame reports the current on-screen frame of the thumbnail for
// attachmentID in owner's post.
func (s *Session) ReturnFrame(owner, attachmentID string) (geometry.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[owner]
	if !ok || !p.placed {
		return geometry.Rect{}, false
	}
	return p.screenFrame(attachmentID)
}

// Ratio returns the ratio committed for att in owner's post, or resolves it
// without a snapshot when the post no longer holds it.
func (s *Session) Ratio(owner string, att mediatypes.Attachment) aspect.Ratio {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.posts[owner]; ok {
		if r, ok := p.ratios[att.ID]; ok {
			return r
		}
	}
	return aspect.Resolve(att, nil)
}

// DecodeCompleted applies a probe result to every cell showing the
// attachment. It is safe to use as a probe.Pool delivery callback.
func (s *Session) DecodeCompleted(res probe.Result) {
	state := LoadLoaded
	if res.Status == probe.StatusFailed {
		state = LoadFailed
	}

	s.mu.Lock()
	n := 0
	for _, p := range s.posts {
		if _, ok := p.states[res.AttachmentID]; ok {
			p.states[res.AttachmentID] = state
			n++
		}
	}
	s.mu.Unlock()

	if res.Err != nil {
		logging.Debug("Decode of %s failed: %v", res.AttachmentID, res.Err)
	}
	if n == 0 {
		logging.Debug("Decode of %s completed for no rendered post", res.AttachmentID)
	}
}

// Attachment returns the attachment with id from any rendered post.
func (s *Session) Attachment(id string) (mediatypes.Attachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if idx := mediatypes.Index(p.attachments, id); idx >= 0 {
			return p.attachments[idx], true
		}
	}
	return mediatypes.Attachment{}, false
}

// LoadState returns the content state of attachmentID in owner's post.
func (s *Session) LoadState(owner, attachmentID string) (LoadState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[owner]
	if !ok {
		return "", false
	}
	st, ok := p.states[attachmentID]
	return st, ok
}

// Playing reports whether the feed should play attachmentID of owner now:
// it is the settled autoplay selection and is not being presented.
func (s *Session) Playing(owner, attachmentID string) bool {
	s.mu.Lock()
	selected := s.playing == viewID(owner, attachmentID)
	s.mu.Unlock()
	return selected && !s.coordinator.ShouldPause(attachmentID)
}

// SettleNow evaluates the autoplay selection without waiting for the
// debounce.
func (s *Session) SettleNow() {
	s.autoplay.Evaluate()
}

// CellView is the render-ready state of one cell.
type CellView struct {
	layout.Cell
	State            LoadState `json:"state"`
	Hidden           bool      `json:"hidden"`
	Playing          bool      `json:"playing"`
	PlaceholderColor string    `json:"placeholderColor,omitempty"`
}

// PostView is the render-ready state of a post.
type PostView struct {
	Owner   string         `json:"owner"`
	Key     string         `json:"key"`
	Variant layout.Variant `json:"variant"`
	Size    geometry.Size  `json:"size"`
	Count   int            `json:"count"`
	Cells   []CellView     `json:"cells"`
}

// View returns what the renderer needs to draw owner's post.
func (s *Session) View(owner string) (PostView, error) {
	s.mu.Lock()
	p, ok := s.posts[owner]
	if !ok {
		s.mu.Unlock()
		return PostView{}, fmt.Errorf("view %s: %w", owner, ErrUnknownOwner)
	}
	view := PostView{
		Owner:   owner,
		Key:     p.plan.Key,
		Variant: p.plan.Variant,
		Size:    p.plan.Size,
		Count:   p.plan.Count,
		Cells:   make([]CellView, len(p.plan.Cells)),
	}
	byID := make(map[string]mediatypes.Attachment, len(p.attachments))
	for _, att := range p.attachments {
		byID[att.ID] = att
	}
	for i, c := range p.plan.Cells {
		cv := CellView{Cell: c, State: p.states[c.AttachmentID]}
		if cv.State == LoadPending {
			cv.PlaceholderColor = placeholder.Color(byID[c.AttachmentID])
		}
		view.Cells[i] = cv
	}
	playing := s.playing
	s.mu.Unlock()

	for i := range view.Cells {
		id := view.Cells[i].AttachmentID
		view.Cells[i].Hidden = s.coordinator.IsHidden(id)
		view.Cells[i].Playing = playing == viewID(owner, id) && !view.Cells[i].Hidden
	}
	return view, nil
}

// Stats reports component sizes for metrics collection.
func (s *Session) Stats() (committedPlans, trackedViews int) {
	return s.store.Len(), s.tracker.Len()
}

func (s *Session) eligible(id string) bool {
	s.mu.Lock()
	ref, ok := s.views[id]
	s.mu.Unlock()
	if !ok || !ref.kind.IsPlayable() {
		return false
	}
	return !s.coordinator.ShouldPause(ref.attachmentID)
}

func (s *Session) setPlaying(id string) {
	s.mu.Lock()
	s.playing = id
	s.mu.Unlock()
	if id == "" {
		logging.Debug("Autoplay stopped")
		return
	}
	logging.Debug("Autoplay selected %s", id)
}

// screenFrame returns the cell frame for attachmentID offset by the post's
// on-screen origin, falling back to the overflow cell for attachments beyond
// the grid.
func (p *post) screenFrame(attachmentID string) (geometry.Rect, bool) {
	cell, ok := p.plan.Cell(attachmentID)
	if !ok {
		cell, ok = p.plan.OverflowCell()
	}
	if !ok {
		return geometry.Rect{}, false
	}
	return cell.Frame.Offset(p.origin), true
}

func viewID(owner, attachmentID string) string {
	return owner + "#" + attachmentID
}

func sameIDs(a, b []mediatypes.Attachment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].URL != b[i].URL || a[i].Kind != b[i].Kind {
			return false
		}
	}
	return true
}
