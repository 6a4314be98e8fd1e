package presentation

import (
	"errors"
	"reflect"
	"testing"

	"media-stage/internal/aspect"
	"media-stage/internal/geometry"
	"media-stage/internal/mediatypes"
)

var (
	screen = geometry.Rect{X: 0, Y: 0, Width: 400, Height: 800}
	thumb  = geometry.Rect{X: 10, Y: 300, Width: 160, Height: 160}

	a1 = mediatypes.Attachment{ID: "a1", Kind: mediatypes.KindImage, Width: 1600, Height: 900}
	a2 = mediatypes.Attachment{ID: "a2", Kind: mediatypes.KindVideo, Width: 1080, Height: 1920}
	a3 = mediatypes.Attachment{ID: "a3", Kind: mediatypes.KindImage}
)

type stubFrames map[string]geometry.Rect

func (s stubFrames) ReturnFrame(_, id string) (geometry.Rect, bool) {
	r, ok := s[id]
	return r, ok
}

// stubRatios answers by source, ignoring the attachment.
type stubRatios map[string]aspect.Ratio

func (s stubRatios) Ratio(source string, _ mediatypes.Attachment) aspect.Ratio {
	return s[source]
}

type phaseRecorder struct {
	phases   []Phase
	rejected int
}

func (p *phaseRecorder) ObservePhase(phase Phase) { p.phases = append(p.phases, phase) }
func (p *phaseRecorder) ObserveRejectedPresent()  { p.rejected++ }

func TestPresentDismissRoundTrip(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	all := []mediatypes.Attachment{a1}

	tr, err := c.Present(a1, all, thumb)
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	st := c.State()
	if st.Phase != PhasePresenting {
		t.Fatalf("Phase = %v, want presenting", st.Phase)
	}
	if st.OriginFrame == nil || *st.OriginFrame != thumb {
		t.Errorf("OriginFrame = %v, want %v", st.OriginFrame, thumb)
	}
	if tr.Origin != thumb || tr.AttachmentID != "a1" || tr.Direction != DirectionPresent {
		t.Errorf("unexpected present transition: %+v", tr)
	}

	if err := c.Complete(tr.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	st = c.State()
	if st.Phase != PhasePresented {
		t.Fatalf("Phase = %v, want presented", st.Phase)
	}
	if st.OriginFrame != nil || st.Transition != nil {
		t.Errorf("presented state should not carry transition data: %+v", st)
	}

	back, ok := c.Dismiss()
	if !ok {
		t.Fatal("Dismiss() returned false while presented")
	}
	st = c.State()
	if st.Phase != PhaseDismissing {
		t.Fatalf("Phase = %v, want dismissing", st.Phase)
	}
	if st.TargetFrame == nil || *st.TargetFrame != thumb {
		t.Errorf("TargetFrame = %v, want origin %v", st.TargetFrame, thumb)
	}
	if back.Destination != thumb || back.Direction != DirectionDismiss {
		t.Errorf("unexpected dismiss transition: %+v", back)
	}
	if !reflect.DeepEqual(st.AllMedia, all) || st.Media.ID != "a1" {
		t.Errorf("media references changed: %+v", st)
	}

	if err := c.Complete(back.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if st := c.State(); st.Phase != PhaseClosed || st.Media != nil || st.AllMedia != nil {
		t.Errorf("state after close = %+v", st)
	}
}

func TestPresentIsMutuallyExclusive(t *testing.T) {
	rec := &phaseRecorder{}
	c := New(Options{ViewerBounds: screen, Observer: rec})

	tr, err := c.Present(a1, []mediatypes.Attachment{a1, a2}, thumb)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Present(a2, []mediatypes.Attachment{a1, a2}, thumb); !errors.Is(err, ErrAlreadyPresenting) {
		t.Errorf("second Present() error = %v, want ErrAlreadyPresenting", err)
	}
	if st := c.State(); st.Phase != PhasePresenting || st.Media.ID != "a1" {
		t.Errorf("state overwritten: %+v", st)
	}

	if err := c.Complete(tr.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Present(a2, nil, thumb); !errors.Is(err, ErrAlreadyPresenting) {
		t.Errorf("Present() while presented error = %v, want ErrAlreadyPresenting", err)
	}
	if st := c.State(); st.Phase != PhasePresented || st.Media.ID != "a1" {
		t.Errorf("state overwritten: %+v", st)
	}
	if rec.rejected != 2 {
		t.Errorf("rejected = %d, want 2", rec.rejected)
	}
}

func TestDismissWhileClosedIsNoop(t *testing.T) {
	rec := &phaseRecorder{}
	c := New(Options{Observer: rec})

	if _, ok := c.Dismiss(); ok {
		t.Error("Dismiss() while closed should report false")
	}
	if c.State().Phase != PhaseClosed {
		t.Error("state changed")
	}
	if len(rec.phases) != 0 {
		t.Errorf("no-op dismiss emitted %v", rec.phases)
	}
}

func TestDismissCancelsInFlightPresentation(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	tr, err := c.Present(a1, nil, thumb)
	if err != nil {
		t.Fatal(err)
	}

	back, ok := c.Dismiss()
	if !ok {
		t.Fatal("Dismiss() should act on a presenting coordinator")
	}
	if back.ID != "" {
		t.Errorf("cancellation should not produce a transition, got %+v", back)
	}

	st := c.State()
	if st.Phase != PhaseClosed || st.OriginFrame != nil || st.TargetFrame != nil || st.Transition != nil {
		t.Errorf("state after cancel = %+v, want clean Closed", st)
	}

	if err := c.Complete(tr.ID); !errors.Is(err, ErrStaleTransition) {
		t.Errorf("late Complete() error = %v, want ErrStaleTransition", err)
	}
	if c.State().Phase != PhaseClosed {
		t.Error("late completion resurrected the presentation")
	}

	if _, err := c.Present(a2, nil, thumb); err != nil {
		t.Errorf("Present() after cancel error = %v", err)
	}
}

func TestDismissUsesCurrentThumbnailFrame(t *testing.T) {
	scrolled := geometry.Rect{X: 10, Y: 120, Width: 160, Height: 160}
	c := New(Options{ViewerBounds: screen, Frames: stubFrames{"a2": scrolled}})

	tr, _ := c.Present(a1, []mediatypes.Attachment{a1, a2, a3}, thumb)
	_ = c.Complete(tr.ID)

	if err := c.Advance("a2"); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	back, _ := c.Dismiss()
	if back.Destination != scrolled || back.AttachmentID != "a2" {
		t.Errorf("dismiss transition = %+v, want return to a2 at %v", back, scrolled)
	}
}

func TestDismissFallsBackToOrigin(t *testing.T) {
	c := New(Options{ViewerBounds: screen, Frames: stubFrames{}})
	tr, _ := c.Present(a1, nil, thumb)
	_ = c.Complete(tr.ID)

	back, _ := c.Dismiss()
	if back.Destination != thumb {
		t.Errorf("Destination = %v, want origin %v", back.Destination, thumb)
	}

	if again, ok := c.Dismiss(); ok || again.ID != "" {
		t.Error("Dismiss() while dismissing should be a no-op")
	}
}

func TestAdvance(t *testing.T) {
	c := New(Options{ViewerBounds: screen})

	if err := c.Advance("a2"); !errors.Is(err, ErrNotPresented) {
		t.Errorf("Advance() while closed error = %v, want ErrNotPresented", err)
	}

	all := []mediatypes.Attachment{a1, a2, a3}
	tr, _ := c.Present(a1, all, thumb)
	if err := c.Advance("a2"); !errors.Is(err, ErrNotPresented) {
		t.Errorf("Advance() while presenting error = %v, want ErrNotPresented", err)
	}
	_ = c.Complete(tr.ID)

	if err := c.Advance("zz"); !errors.Is(err, ErrMediaNotInSet) {
		t.Errorf("Advance(zz) error = %v, want ErrMediaNotInSet", err)
	}
	if err := c.Advance("a3"); err != nil {
		t.Fatalf("Advance(a3) error = %v", err)
	}

	st := c.State()
	if st.Phase != PhasePresented || st.Media.ID != "a3" || st.Index() != 2 {
		t.Errorf("state = %+v", st)
	}
	if !reflect.DeepEqual(st.AllMedia, all) {
		t.Error("AllMedia changed on advance")
	}
}

func TestPresentRejectsMediaOutsideSet(t *testing.T) {
	c := New(Options{})
	if _, err := c.Present(a3, []mediatypes.Attachment{a1, a2}, thumb); !errors.Is(err, ErrMediaNotInSet) {
		t.Errorf("error = %v, want ErrMediaNotInSet", err)
	}
	if c.State().Phase != PhaseClosed {
		t.Error("rejected present changed state")
	}
}

func TestShouldPauseAndIsHidden(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	if c.ShouldPause("a2") || c.IsHidden("a2") {
		t.Error("nothing should pause while closed")
	}

	tr, _ := c.Present(a2, []mediatypes.Attachment{a1, a2}, thumb)
	if !c.ShouldPause("a2") || !c.IsHidden("a2") {
		t.Error("presented media should pause and hide")
	}
	if c.ShouldPause("a1") {
		t.Error("other media should keep playing")
	}

	_ = c.Complete(tr.ID)
	_ = c.Advance("a1")
	if !c.IsHidden("a1") || c.IsHidden("a2") {
		t.Error("hidden thumbnail should follow the current media")
	}

	back, _ := c.Dismiss()
	if !c.IsHidden("a1") {
		t.Error("thumbnail stays hidden while dismissing")
	}
	_ = c.Complete(back.ID)
	if c.IsHidden("a1") || c.ShouldPause("a1") {
		t.Error("nothing should be hidden once closed")
	}
}

func TestSubscribersSeeEveryPhase(t *testing.T) {
	c := New(Options{ViewerBounds: screen})

	var phases []Phase
	unsubscribe := c.Subscribe(func(s State) { phases = append(phases, s.Phase) })

	tr, _ := c.Present(a1, nil, thumb)
	_ = c.Complete(tr.ID)
	back, _ := c.Dismiss()
	_ = c.Complete(back.ID)
	unsubscribe()
	_, _ = c.Present(a1, nil, thumb)

	want := []Phase{PhasePresenting, PhasePresented, PhaseDismissing, PhaseClosed}
	if !reflect.DeepEqual(phases, want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	_, _ = c.Present(a1, []mediatypes.Attachment{a1, a2}, thumb)

	st := c.State()
	st.AllMedia[0].ID = "mutated"
	st.Media.ID = "mutated"

	if again := c.State(); again.AllMedia[0].ID != "a1" || again.Media.ID != "a1" {
		t.Error("caller mutation leaked into coordinator state")
	}
}

func TestPresentDestinationFitsViewer(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	tr, _ := c.Present(a1, nil, thumb)

	want := geometry.Rect{X: 0, Y: 287.5, Width: 400, Height: 225}
	if tr.Destination != want {
		t.Errorf("Destination = %+v, want %+v", tr.Destination, want)
	}
	if tr.Duration != DefaultDuration {
		t.Errorf("Duration = %v, want %v", tr.Duration, DefaultDuration)
	}
}

func TestAspectFit(t *testing.T) {
	tests := []struct {
		name   string
		ratio  aspect.Ratio
		bounds geometry.Rect
		want   geometry.Rect
	}{
		{"wide in tall", 2, geometry.Rect{Width: 400, Height: 800}, geometry.Rect{X: 0, Y: 300, Width: 400, Height: 200}},
		{"tall in wide", 0.5, geometry.Rect{Width: 800, Height: 400}, geometry.Rect{X: 300, Y: 0, Width: 200, Height: 400}},
		{"offset bounds", 1, geometry.Rect{X: 10, Y: 20, Width: 100, Height: 100}, geometry.Rect{X: 10, Y: 20, Width: 100, Height: 100}},
		{"empty bounds", 1, geometry.Rect{X: 5, Y: 5}, geometry.Rect{X: 5, Y: 5}},
		{"invalid ratio", 0, geometry.Rect{Width: 100, Height: 100}, geometry.Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AspectFit(tt.ratio, tt.bounds); got != tt.want {
				t.Errorf("AspectFit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPresentRejectedWhileActiveChecksPhaseFirst(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	if _, err := c.Present(a1, []mediatypes.Attachment{a1, a2}, thumb); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	_, err := c.Present(a3, []mediatypes.Attachment{a1, a2}, thumb)
	if !errors.Is(err, ErrAlreadyPresenting) {
		t.Errorf("error = %v, want ErrAlreadyPresenting", err)
	}
}

func TestRejectedPresentKeepsViewerBounds(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	tr, _ := c.Present(a1, nil, thumb)
	_ = c.Complete(tr.ID)

	small := geometry.Rect{Width: 100, Height: 100}
	if _, err := c.Present(a2, nil, thumb, WithViewerBounds(small)); !errors.Is(err, ErrAlreadyPresenting) {
		t.Fatalf("error = %v, want ErrAlreadyPresenting", err)
	}

	back, _ := c.Dismiss()
	if back.Origin != tr.Destination {
		t.Errorf("dismiss Origin = %+v, want presented frame %+v", back.Origin, tr.Destination)
	}
}

func TestPresentAppliesViewerBoundsOnSuccess(t *testing.T) {
	c := New(Options{ViewerBounds: screen})
	landscape := geometry.Rect{Width: 800, Height: 400}

	tr, err := c.Present(a2, nil, thumb, WithViewerBounds(landscape))
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	want := geometry.Rect{X: 287.5, Y: 0, Width: 225, Height: 400}
	if tr.Destination != want {
		t.Errorf("Destination = %+v, want %+v", tr.Destination, want)
	}

	_ = c.Complete(tr.ID)
	back, _ := c.Dismiss()
	if back.Origin != want {
		t.Errorf("dismiss Origin = %+v, want %+v", back.Origin, want)
	}
}

func TestPresentUsesSourceRatio(t *testing.T) {
	c := New(Options{
		ViewerBounds: screen,
		Ratios:       stubRatios{"p1": 2, "p2": 0.5},
	})

	tr, err := c.Present(a3, nil, thumb, WithSource("p2"))
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if want := (geometry.Rect{Width: 400, Height: 800}); tr.Destination != want {
		t.Errorf("Destination = %+v, want %+v", tr.Destination, want)
	}
	if got := c.State().Source; got != "p2" {
		t.Errorf("Source = %q, want p2", got)
	}
}
